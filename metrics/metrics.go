// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registrations counts submissions by outcome: accepted, duplicate,
	// closed, invalid or failed.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voting",
		Name:      "registrations_total",
		Help:      "Voter registration submissions by outcome.",
	}, []string{"outcome"})

	// Reviews counts administrative actions on voters.
	Reviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voting",
		Name:      "reviews_total",
		Help:      "Administrative voter actions by kind.",
	}, []string{"action"})

	OnChainMarked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voting",
		Name:      "onchain_marked_total",
		Help:      "Approved voters flagged as registered on-chain.",
	})

	StorageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voting",
		Name:      "storage_failures_total",
		Help:      "Photo blob store failures by operation.",
	}, []string{"op"})

	MailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voting",
		Name:      "mail_failures_total",
		Help:      "Voter password e-mails that could not be sent.",
	})
)

// Registration outcomes
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeClosed    = "closed"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Review actions
const (
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionAdd       = "add"
	ActionUnapprove = "unapprove"
	ActionDelete    = "delete"
)

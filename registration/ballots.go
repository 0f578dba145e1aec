// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/racoongodz/blockchain-voting-backend/db"
	"github.com/racoongodz/blockchain-voting-backend/models"
)

// Layouts accepted for ballot times. Zone-less values are UTC.
var ballotTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func parseBallotTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range ballotTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", ErrValidation, field)
}

// SaveBallot records ballot metadata after the on-chain ballot exists.
// Saving an existing ballot_id updates it.
func (s *Service) SaveBallot(ctx context.Context, req models.SaveBallotRequest) (models.Ballot, error) {
	req.Trim()
	if err := req.Validate(); err != nil {
		return models.Ballot{}, invalid(err)
	}

	b := models.Ballot{
		BallotID:     req.BallotID,
		Title:        req.Title,
		AdminAddress: req.AdminAddress,
		CreatedAt:    s.now(),
	}

	var err error
	if b.RegistrationStart, err = parseBallotTime("registration_start", req.RegistrationStart); err != nil {
		return models.Ballot{}, err
	}
	if b.RegistrationEnd, err = parseBallotTime("registration_end", req.RegistrationEnd); err != nil {
		return models.Ballot{}, err
	}
	if b.RegistrationStart.After(b.RegistrationEnd) {
		return models.Ballot{}, fmt.Errorf("%w: registration_start is after registration_end", ErrValidation)
	}
	if req.VotingEnd != "" {
		votingEnd, err := parseBallotTime("voting_end", req.VotingEnd)
		if err != nil {
			return models.Ballot{}, err
		}
		b.VotingEnd = &votingEnd
	}

	if err := s.repo.SaveBallot(ctx, b); err != nil {
		return models.Ballot{}, s.persistence("save ballot", err, "ballot_id", b.BallotID)
	}

	zap.S().Infow("Ballot saved", "ballot_id", b.BallotID,
		"registration_start", b.RegistrationStart, "registration_end", b.RegistrationEnd)
	return b, nil
}

func (s *Service) GetBallot(ctx context.Context, ballotID string) (models.Ballot, error) {
	ballotID = strings.TrimSpace(ballotID)
	if ballotID == "" {
		return models.Ballot{}, fmt.Errorf("%w: ballot id is required", ErrValidation)
	}

	b, err := s.repo.GetBallot(ctx, ballotID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Ballot{}, ErrBallotNotFound
	}
	if err != nil {
		return models.Ballot{}, s.persistence("get ballot", err, "ballot_id", ballotID)
	}
	return b, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to PostgreSQL or SQLite and verifies the connection.
// dbType is "postgres" or "sqlite".
func Open(dbType, url string) (*sql.DB, error) {
	driver := "postgres"
	if dbType == "sqlite" {
		driver = "sqlite"
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps
	// in-memory databases from splitting across the pool
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Portable between PostgreSQL and SQLite: no SERIAL, no NOW(), times are
// written by the application in UTC.
const schema = `
-- Ballot metadata (mirrors the on-chain ballot)
CREATE TABLE IF NOT EXISTS ballots (
    ballot_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    admin_address TEXT NOT NULL,
    registration_start TIMESTAMP NOT NULL,
    registration_end TIMESTAMP NOT NULL,
    voting_end TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ballots_admin_address ON ballots(admin_address);

-- Submitted, unreviewed registrations
CREATE TABLE IF NOT EXISTS pending_voters (
    id TEXT PRIMARY KEY,
    ballot_id TEXT NOT NULL,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    metamask_address TEXT NOT NULL,
    id_photo TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pending_voters_ballot_id ON pending_voters(ballot_id);

-- Reviewed registrations
CREATE TABLE IF NOT EXISTS approved_voters (
    id TEXT PRIMARY KEY,
    ballot_id TEXT NOT NULL,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    metamask_address TEXT NOT NULL,
    id_photo TEXT,
    voter_password TEXT NOT NULL,
    is_onchain BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_approved_voters_ballot_id ON approved_voters(ballot_id);

-- Uniqueness keys across pending and approved voters of a ballot
CREATE TABLE IF NOT EXISTS registration_claim (
    ballot_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('wallet', 'email', 'name')),
    value TEXT NOT NULL,
    voter_id TEXT NOT NULL,
    PRIMARY KEY (ballot_id, kind, value)
);

CREATE INDEX IF NOT EXISTS idx_registration_claim_voter_id ON registration_claim(voter_id);
`

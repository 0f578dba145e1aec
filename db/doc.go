// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the database connection, schema, and voter repository.

# Connecting

Open accepts "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes. The same schema text runs on both engines.

# Tables

  - ballots: registration window metadata per ballot
  - pending_voters: submitted registrations awaiting review
  - approved_voters: reviewed registrations with generated passwords
  - registration_claim: (ballot_id, kind, value) uniqueness keys

# Claims

Duplicate prevention lives in registration_claim. Its primary key is the
authoritative duplicate signal:

	pending insert   → claims inserted in the same transaction
	approval         → claims re-pointed to the approved row
	reject / delete  → claims owned by the row released

A violated key surfaces as *ClaimConflictError naming the claim kind.
Values are compared after NormalizeClaim (trimmed, lower-cased).

# Case folding

Name checks and SearchApproved compare LOWER(column) against Go-lowered
input. SQLite's built-in lower() folds ASCII only, so the package
registers a Unicode-aware lower() with modernc.org/sqlite at init; both
engines then fold "É" to "é".

# Store

Store wraps *sql.DB with the repository operations. Lookups and keyed
deletes that match nothing return ErrNotFound; all other failures are
wrapped driver errors.

	store := db.NewStore(conn)
	voters, err := store.ListPending(ctx, []string{"B-1"})
*/
package db

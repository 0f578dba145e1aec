// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the voter registration server.

Voters sign up for a blockchain ballot with their name, e-mail, MetaMask
address and an ID photo. Administrators review the queue, approve voters
(generating and mailing a password), and push approved voters to the
voting contract.

# Starting the Server

Settings come from flags, the environment, or a .env file:

	DATABASE_URL=postgres://... SUPABASE_URL=... SUPABASE_KEY=... go run .

Local development without Postgres or Supabase:

	go run . -t sqlite -d voters.db -storage local

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string, or SQLite path with -t sqlite
  - SUPABASE_URL, SUPABASE_KEY: photo storage (unless STORAGE_BACKEND=local)

Optional settings:

  - PORT (-p): Server port (default: 3000)
  - APP_ENV (-env): development or production logging
  - STORAGE_BUCKET, UPLOAD_DIR, PUBLIC_BASE_URL, MAX_UPLOAD_MB
  - DUPLICATE_POLICY: wallet-only, wallet-or-email (default), wallet-or-name
  - ADMIN_TOKEN: require X-Admin-Token on administrative routes
  - CORS_ORIGINS: comma-separated allowed origins
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM: password mail
  - LOG_LEVEL: debug, info, warn or error

# Architecture

  - registration: the voter workflow and duplicate rules
  - db: schema and SQL store (registration claims enforce uniqueness)
  - storage: Supabase or local-disk photo storage
  - notify: password mail
  - handlers, router, middleware: the HTTP surface on chi
  - logger, metrics: zap logging and Prometheus counters
  - auth, cliparse, models: ids and secrets, configuration, wire types

See package documentation for each component.
*/
package main

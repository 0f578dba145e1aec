// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

main loads a .env file (if present) before parsing, so every environment
variable below can also live there.

# CLI Flags and Environment Variables

	-p                 PORT              Server port (default: 3000)
	-env               APP_ENV           development or production
	-d                 DATABASE_URL      Database URL (required)
	-t                 DATABASE_TYPE     postgres (default) or sqlite
	-storage           STORAGE_BACKEND   supabase (default) or local
	-bucket            STORAGE_BUCKET    Supabase bucket (default: voter-photos)
	-upload-dir        UPLOAD_DIR        Directory for local storage
	-public-url        PUBLIC_BASE_URL   Base URL used for local photo links
	-max-upload-mb     MAX_UPLOAD_MB     ID photo size limit (default: 5)
	-duplicate-policy  DUPLICATE_POLICY  wallet-only, wallet-or-email, wallet-or-name
	-cors-origins      CORS_ORIGINS      Comma-separated origins (default: *)
	-supabase-key      SUPABASE_KEY      Supabase service key
	-admin-token       ADMIN_TOKEN       Enables X-Admin-Token on admin routes
	                   SUPABASE_URL      Supabase project URL
	                   SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing or DATABASE_TYPE is unknown
  - the supabase backend is selected without SUPABASE_URL and SUPABASE_KEY
  - STORAGE_BACKEND or DUPLICATE_POLICY is unknown
  - a numeric value does not parse
*/
package cliparse

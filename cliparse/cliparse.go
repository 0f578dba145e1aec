package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/racoongodz/blockchain-voting-backend/models"
)

// Storage backends
const (
	StorageSupabase = "supabase"
	StorageLocal    = "local"
)

type Config struct {
	Port         int
	Environment  string
	DatabaseURL  string
	DatabaseType string

	StorageBackend string
	SupabaseURL    string
	SupabaseKey    string
	StorageBucket  string
	UploadDir      string
	PublicBaseURL  string
	MaxUploadMB    int

	DuplicatePolicy string
	AdminToken      string
	CORSOrigins     []string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// ParseFlags reads flags, falls back to environment variables, applies
// defaults and validates the result
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var corsOrigins string

	fs := flag.NewFlagSet("blockchain-voting-backend", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.Environment, "env", "", "Environment (development or production)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Photo storage
	fs.StringVar(&cfg.StorageBackend, "storage", "", "Photo storage backend (supabase or local)")
	fs.StringVar(&cfg.StorageBucket, "bucket", "", "Supabase storage bucket")
	fs.StringVar(&cfg.UploadDir, "upload-dir", "", "Directory for the local storage backend")
	fs.StringVar(&cfg.PublicBaseURL, "public-url", "", "Public base URL of this server")
	fs.IntVar(&cfg.MaxUploadMB, "max-upload-mb", 0, "Maximum ID photo size in MB")

	// Workflow
	fs.StringVar(&cfg.DuplicatePolicy, "duplicate-policy", "", "wallet-only, wallet-or-email or wallet-or-name")
	fs.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SupabaseKey, "supabase-key", "", "Supabase service key (prefer env)")
	fs.StringVar(&cfg.AdminToken, "admin-token", "", "Admin token (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3000 // default
		}
	}

	envDefault(&cfg.Environment, "APP_ENV", "development")

	envDefault(&cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	envDefault(&cfg.DatabaseType, "DATABASE_TYPE", "postgres")
	if cfg.DatabaseType != "postgres" && cfg.DatabaseType != "sqlite" {
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}

	envDefault(&cfg.StorageBackend, "STORAGE_BACKEND", StorageSupabase)
	envDefault(&cfg.StorageBucket, "STORAGE_BUCKET", "voter-photos")
	envDefault(&cfg.UploadDir, "UPLOAD_DIR", "uploads")
	envDefault(&cfg.PublicBaseURL, "PUBLIC_BASE_URL", "http://localhost:"+strconv.Itoa(cfg.Port))
	envDefault(&cfg.SupabaseURL, "SUPABASE_URL", "")
	envDefault(&cfg.SupabaseKey, "SUPABASE_KEY", "")

	switch cfg.StorageBackend {
	case StorageSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return Config{}, errors.New("SUPABASE_URL and SUPABASE_KEY required for supabase storage")
		}
	case StorageLocal:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.MaxUploadMB == 0 {
		if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
			mb, err := strconv.Atoi(v)
			if err != nil || mb <= 0 {
				return Config{}, errors.New("invalid MAX_UPLOAD_MB env variable")
			}
			cfg.MaxUploadMB = mb
		} else {
			cfg.MaxUploadMB = 5
		}
	}

	envDefault(&cfg.DuplicatePolicy, "DUPLICATE_POLICY", models.PolicyWalletOrEmail)
	switch cfg.DuplicatePolicy {
	case models.PolicyWalletOnly, models.PolicyWalletOrEmail, models.PolicyWalletOrName:
	default:
		return Config{}, fmt.Errorf("unsupported DUPLICATE_POLICY %q", cfg.DuplicatePolicy)
	}

	envDefault(&cfg.AdminToken, "ADMIN_TOKEN", "")

	envDefault(&corsOrigins, "CORS_ORIGINS", "*")
	for _, origin := range strings.Split(corsOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	// Mail is optional; without a host approvals simply are not mailed
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}
	cfg.SMTPPort = 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.New("invalid SMTP_PORT env variable")
		}
		cfg.SMTPPort = port
	}

	return cfg, nil
}

// MaxUploadBytes returns the upload limit in bytes
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func envDefault(dst *string, key, def string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
		return
	}
	*dst = def
}

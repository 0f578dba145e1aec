package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/racoongodz/blockchain-voting-backend/cliparse"
	"github.com/racoongodz/blockchain-voting-backend/db"
	"github.com/racoongodz/blockchain-voting-backend/logger"
	"github.com/racoongodz/blockchain-voting-backend/notify"
	"github.com/racoongodz/blockchain-voting-backend/registration"
	"github.com/racoongodz/blockchain-voting-backend/router"
	"github.com/racoongodz/blockchain-voting-backend/storage"
)

func main() {
	// A missing .env is fine; real deployments set the environment
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString("Error parsing flags: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		os.Stderr.WriteString("Error creating logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	sugar := log.Sugar()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("database connection failed", "error", err)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		sugar.Fatalw("schema creation failed", "error", err)
	}
	sugar.Infow("Database schema ready", "type", cfg.DatabaseType)

	// Photo storage
	var blobs storage.BlobStore
	switch cfg.StorageBackend {
	case cliparse.StorageLocal:
		local, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			sugar.Fatalw("local storage unavailable", "error", err)
		}
		blobs = local
	default:
		blobs = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket)
	}
	sugar.Infow("Photo storage ready", "backend", cfg.StorageBackend)

	// Password mail
	var mailer notify.Mailer = notify.NopMailer{}
	if cfg.SMTPHost != "" {
		smtpMailer, err := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		if err != nil {
			sugar.Fatalw("SMTP mailer unavailable", "error", err)
		}
		mailer = smtpMailer
	} else {
		sugar.Warnw("SMTP_HOST not set; approved voters will not be mailed their password")
	}

	svc := registration.NewService(db.NewStore(dbConn), blobs, mailer, cfg.DuplicatePolicy)

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(svc, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			sugar.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	sugar.Infow("Listening", "port", cfg.Port, "policy", cfg.DuplicatePolicy)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		sugar.Errorw("Server closed", "error", err)
	} else {
		sugar.Infow("Server closed")
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/racoongodz/blockchain-voting-backend/cliparse"
	"github.com/racoongodz/blockchain-voting-backend/handlers"
	"github.com/racoongodz/blockchain-voting-backend/middleware"
	"github.com/racoongodz/blockchain-voting-backend/registration"
	"github.com/racoongodz/blockchain-voting-backend/storage"
)

func NewRouter(svc *registration.Service, cfg cliparse.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Initialize handlers
	regHandler := handlers.NewRegistrationHandler(svc, cfg)
	voterHandler := handlers.NewVoterHandler(svc, cfg)
	chainHandler := handlers.NewChainHandler(svc)
	ballotHandler := handlers.NewBallotHandler(svc)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/ping", handlers.Ping)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Voter-facing (public)
	r.Post("/register-voter", regHandler.RegisterVoter)
	r.Get("/get-ballot/{id}", ballotHandler.GetBallot)

	// Photos written by the local backend
	if cfg.StorageBackend == cliparse.StorageLocal && cfg.UploadDir != "" {
		files := http.StripPrefix(storage.UploadsPath, http.FileServer(http.Dir(cfg.UploadDir)))
		r.Method(http.MethodGet, storage.UploadsPath+"*", files)
	}

	// Administrative
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken))

		r.Post("/pending-voters", regHandler.ListPending)
		r.Post("/approve-voter", regHandler.ApproveVoter)
		r.Post("/reject-voter", regHandler.RejectVoter)

		r.Post("/approved-voters", voterHandler.ListApproved)
		r.Get("/search-approved-voters", voterHandler.SearchApproved)
		r.Delete("/delete-voter/{id}", voterHandler.DeleteVoter)
		r.Post("/addApprovedVoter", voterHandler.AddApprovedVoter)
		r.Post("/unapprove-voter", voterHandler.UnapproveVoter)

		r.Post("/mark-onchain", chainHandler.MarkOnChain)
		r.Get("/api/getApprovedVoters", chainHandler.ApprovedCredentials)
		r.Get("/api/onchain-batch/{ballot_id}", chainHandler.OnChainBatch)

		r.Post("/save-ballot", ballotHandler.SaveBallot)
	})

	return r
}

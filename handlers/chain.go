// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/racoongodz/blockchain-voting-backend/middleware"
	"github.com/racoongodz/blockchain-voting-backend/models"
	"github.com/racoongodz/blockchain-voting-backend/registration"
)

// ChainHandler serves the admin front end while it pushes approved voters
// to the voting contract.
type ChainHandler struct {
	svc *registration.Service
}

func NewChainHandler(svc *registration.Service) *ChainHandler {
	return &ChainHandler{svc: svc}
}

// MarkOnChain handles POST /mark-onchain
func (h *ChainHandler) MarkOnChain(w http.ResponseWriter, r *http.Request) {
	var req models.MarkOnChainRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.svc.MarkOnChain(r.Context(), req.VoterIDs); err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ApprovedCredentials handles GET /api/getApprovedVoters
func (h *ChainHandler) ApprovedCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.svc.ApprovedCredentials(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, creds)
}

// OnChainBatch handles GET /api/onchain-batch/{ballot_id}
func (h *ChainHandler) OnChainBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.svc.OnChainBatch(r.Context(), chi.URLParam(r, "ballot_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, batch)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/racoongodz/blockchain-voting-backend/cliparse"
	"github.com/racoongodz/blockchain-voting-backend/middleware"
	"github.com/racoongodz/blockchain-voting-backend/models"
	"github.com/racoongodz/blockchain-voting-backend/registration"
)

type VoterHandler struct {
	svc *registration.Service
	cfg cliparse.Config
}

func NewVoterHandler(svc *registration.Service, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{svc: svc, cfg: cfg}
}

// ListApproved handles POST /approved-voters
func (h *VoterHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	var req models.BallotIDsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	grouped, err := h.svc.ListApproved(r.Context(), req.BallotIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, grouped)
}

// SearchApproved handles GET /search-approved-voters?query=
func (h *VoterHandler) SearchApproved(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Search query required.")
		return
	}

	voters, err := h.svc.SearchApproved(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// DeleteVoter handles DELETE /delete-voter/{id}
func (h *VoterHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	voterID := chi.URLParam(r, "id")
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID required")
		return
	}

	if err := h.svc.DeleteApprovedVoter(r.Context(), voterID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Voter deleted successfully",
	})
}

// AddApprovedVoter handles POST /addApprovedVoter
func (h *VoterHandler) AddApprovedVoter(w http.ResponseWriter, r *http.Request) {
	var req models.AddApprovedVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.svc.AddApprovedVoter(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Voter manually added successfully!",
	})
}

// UnapproveVoter handles POST /unapprove-voter
func (h *VoterHandler) UnapproveVoter(w http.ResponseWriter, r *http.Request) {
	var req models.UnapproveVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.UnapproveVoter(r.Context(), req.VoterID, req.BallotID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Voter unapproved successfully",
	})
}

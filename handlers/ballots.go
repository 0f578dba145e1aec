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

type BallotHandler struct {
	svc *registration.Service
}

func NewBallotHandler(svc *registration.Service) *BallotHandler {
	return &BallotHandler{svc: svc}
}

// SaveBallot handles POST /save-ballot
func (h *BallotHandler) SaveBallot(w http.ResponseWriter, r *http.Request) {
	var req models.SaveBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.svc.SaveBallot(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Ballot saved successfully",
	})
}

// GetBallot handles GET /get-ballot/{id}
func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	ballot, err := h.svc.GetBallot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballot)
}

// Ping handles GET /ping
func Ping(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "pong",
	})
}

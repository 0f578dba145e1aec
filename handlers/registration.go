// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/racoongodz/blockchain-voting-backend/cliparse"
	"github.com/racoongodz/blockchain-voting-backend/middleware"
	"github.com/racoongodz/blockchain-voting-backend/models"
	"github.com/racoongodz/blockchain-voting-backend/registration"
)

// photoField is the multipart field holding the ID photo
const photoField = "id_photo"

// Room for the text fields and multipart framing around the photo
const formOverhead = 1 << 20

type RegistrationHandler struct {
	svc *registration.Service
	cfg cliparse.Config
}

func NewRegistrationHandler(svc *registration.Service, cfg cliparse.Config) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, cfg: cfg}
}

// RegisterVoter handles POST /register-voter (multipart/form-data)
func (h *RegistrationHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	maxPhoto := h.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxPhoto+formOverhead)

	if err := r.ParseMultipartForm(maxPhoto + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("ID photo must be at most %d MB", h.cfg.MaxUploadMB))
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ID photo is required.")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid ID photo")
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(io.LimitReader(file, maxPhoto+1))
	if err != nil {
		zap.S().Errorw("Failed to read uploaded photo", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid ID photo")
		return
	}
	if int64(len(photo)) > maxPhoto {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("ID photo must be at most %d MB", h.cfg.MaxUploadMB))
		return
	}
	if len(photo) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ID photo is required.")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(photo)
	}

	voter, err := h.svc.SubmitRegistration(r.Context(), registration.Submission{
		BallotID:         r.FormValue("ballot_id"),
		FullName:         r.FormValue("full_name"),
		Email:            r.FormValue("email"),
		MetamaskAddress:  r.FormValue("metamask_address"),
		PhotoName:        header.Filename,
		PhotoContentType: contentType,
		Photo:            photo,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RegisterVoterResponse{
		Success: true,
		Message: "Voter registered successfully!",
		Voter:   voter,
	})
}

// ListPending handles POST /pending-voters
func (h *RegistrationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	var req models.BallotIDsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voters, err := h.svc.ListPending(r.Context(), req.BallotIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// ApproveVoter handles POST /approve-voter
func (h *RegistrationHandler) ApproveVoter(w http.ResponseWriter, r *http.Request) {
	var req models.VoterIDRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.VoterID) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID required")
		return
	}

	result, err := h.svc.ApproveVoter(r.Context(), req.VoterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Voter approved successfully!",
		Warning: result.Warning,
	})
}

// RejectVoter handles POST /reject-voter
func (h *RegistrationHandler) RejectVoter(w http.ResponseWriter, r *http.Request) {
	var req models.VoterIDRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.VoterID) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID required")
		return
	}

	if err := h.svc.RejectVoter(r.Context(), req.VoterID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Voter rejected successfully",
	})
}

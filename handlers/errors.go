// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/racoongodz/blockchain-voting-backend/middleware"
	"github.com/racoongodz/blockchain-voting-backend/registration"
)

// writeServiceError maps a registration error to its HTTP status. Client
// errors carry the error text; server errors a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registration.ErrValidation),
		errors.Is(err, registration.ErrDuplicateWallet),
		errors.Is(err, registration.ErrDuplicateEmail),
		errors.Is(err, registration.ErrDuplicateName),
		errors.Is(err, registration.ErrAlreadyApproved),
		errors.Is(err, registration.ErrRegistrationClosed):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, registration.ErrNotFound),
		errors.Is(err, registration.ErrBallotNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registration.ErrStorage):
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, registration.ErrPersistence):
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		zap.S().Errorw("Unhandled error", "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

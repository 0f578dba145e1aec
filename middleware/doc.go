// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap a router with request logging:

	r.Use(middleware.WithLogging)

Logs request start at debug level and completion (status, bytes,
duration_ms, request_id) at info level through the global zap logger.

# Admin Token

Protect administrative routes when ADMIN_TOKEN is configured:

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken))
		r.Post("/approve-voter", h.ApproveVoter)
	})

Requests must carry the token in the X-Admin-Token header. An empty
configured token disables the check.

# CORS Middleware

Enable cross-origin requests for the admin and voter front ends:

	r.Use(middleware.CORS(cfg.CORSOrigins))

Built on go-chi/cors. Allows GET, POST, PUT, DELETE, OPTIONS and the
Content-Type, Authorization and X-Admin-Token headers.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID required")

Error bodies are always {"error": "<message>"}.

Parse JSON request bodies:

	var req models.VoterIDRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the voter registration API.

# Route Registration

NewRouter builds a chi router over a registration.Service:

	handler := router.NewRouter(svc, cfg)

Every request passes through RequestID, RealIP, Recoverer, request
logging and CORS.

# Endpoints

Public:

	GET  /health            - Liveness ("OK")
	GET  /ping              - {"success":true,"message":"pong"}
	GET  /metrics           - Prometheus exposition
	POST /register-voter    - Voter sign-up (multipart)
	GET  /get-ballot/{id}   - Ballot metadata
	GET  /uploads/*         - Photos, local storage backend only

Administrative (X-Admin-Token when ADMIN_TOKEN is set):

	POST   /pending-voters
	POST   /approve-voter
	POST   /reject-voter
	POST   /approved-voters
	GET    /search-approved-voters?query=
	DELETE /delete-voter/{id}
	POST   /addApprovedVoter
	POST   /unapprove-voter
	POST   /mark-onchain
	POST   /save-ballot
	GET    /api/getApprovedVoters
	GET    /api/onchain-batch/{ballot_id}
*/
package router

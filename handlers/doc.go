// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the voter registration API.

# Handler Types

Each handler is a thin struct over *registration.Service:

  - RegistrationHandler: public sign-up and the pending review queue
  - VoterHandler: approved voter management
  - ChainHandler: feeds for pushing approved voters to the voting contract
  - BallotHandler: ballot metadata

	reg := handlers.NewRegistrationHandler(svc, cfg)

Path parameters are read with chi.URLParam, so handlers expect to be
mounted on a chi router.

# Registration Flow

	POST /register-voter  → RegisterVoter (multipart, id_photo file field)
	POST /pending-voters  → ListPending
	POST /approve-voter   → ApproveVoter (password generated and mailed)
	POST /reject-voter    → RejectVoter (photo deleted)

# Approved Voters

	POST   /approved-voters          → ListApproved (grouped by ballot_id)
	GET    /search-approved-voters   → SearchApproved (?query=)
	POST   /addApprovedVoter         → AddApprovedVoter
	POST   /unapprove-voter          → UnapproveVoter
	DELETE /delete-voter/{id}        → DeleteVoter

# Blockchain Sync

	POST /mark-onchain                    → MarkOnChain
	GET  /api/getApprovedVoters           → ApprovedCredentials
	GET  /api/onchain-batch/{ballot_id}   → OnChainBatch (keccak256 password hashes)

# Error Mapping

Service errors map to status codes in one place (writeServiceError):
validation and duplicate errors are 400, missing rows are 404, and
everything else is 500 with a generic body.
*/
package handlers

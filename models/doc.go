// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - BallotIDsRequest: ballot_ids
  - VoterIDRequest: voter_id
  - UnapproveVoterRequest: voter_id, ballot_id
  - AddApprovedVoterRequest: full_name, email, metamask_address, ballot_id, id_photo_url
  - MarkOnChainRequest: voterIds
  - SaveBallotRequest: ballot_id, title, admin_address, registration window, voting_end

Registration itself arrives as multipart form data and has no JSON type.

# Response Types

  - RegisterVoterResponse: success, message, voter
  - MessageResponse: success, message, warning
  - SuccessResponse: success
  - VoterCredential: metamask_address, voter_password, ballot_id
  - OnChainBatch: voter_ids, addresses, hashed_passwords
  - ErrorResponse: error

# Domain Types

  - PendingVoter: a submitted, unreviewed registration
  - ApprovedVoter: a reviewed registration eligible for on-chain registration
  - Ballot: registration window metadata mirroring the on-chain ballot
  - Claim: one (kind, value) uniqueness key inside a ballot

# Constants

Duplicate-check policies:

	PolicyWalletOnly    = "wallet-only"
	PolicyWalletOrEmail = "wallet-or-email"
	PolicyWalletOrName  = "wallet-or-name"

Claim kinds:

	ClaimWallet = "wallet"
	ClaimEmail  = "email"
	ClaimName   = "name"
*/
package models

package models

import "time"

// Duplicate-check policies
const (
	PolicyWalletOnly    = "wallet-only"
	PolicyWalletOrEmail = "wallet-or-email"
	PolicyWalletOrName  = "wallet-or-name"
)

// Claim kinds
const (
	ClaimWallet = "wallet"
	ClaimEmail  = "email"
	ClaimName   = "name"
)

// Request types

type BallotIDsRequest struct {
	BallotIDs []string `json:"ballot_ids"`
}

type VoterIDRequest struct {
	VoterID string `json:"voter_id"`
}

type UnapproveVoterRequest struct {
	VoterID  string `json:"voter_id"`
	BallotID string `json:"ballot_id"`
}

type AddApprovedVoterRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	MetamaskAddress string `json:"metamask_address"`
	BallotID        string `json:"ballot_id"`
	IDPhotoURL      string `json:"id_photo_url,omitempty"`
}

type MarkOnChainRequest struct {
	VoterIDs []string `json:"voterIds"`
}

// Times accept RFC 3339 or the "2006-01-02T15:04" form sent by
// datetime-local inputs; zone-less values are read as UTC.
type SaveBallotRequest struct {
	BallotID          string `json:"ballot_id"`
	Title             string `json:"title"`
	AdminAddress      string `json:"admin_address"`
	RegistrationStart string `json:"registration_start"`
	RegistrationEnd   string `json:"registration_end"`
	VotingEnd         string `json:"voting_end,omitempty"`
}

// Response types

type RegisterVoterResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Voter   PendingVoter `json:"voter"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Only the fields the contract push needs.
type VoterCredential struct {
	MetamaskAddress string `json:"metamask_address"`
	VoterPassword   string `json:"voter_password"`
	BallotID        string `json:"ballot_id"`
}

// Parallel arrays, ready for registerMultipleVoters.
type OnChainBatch struct {
	BallotID        string   `json:"ballot_id"`
	VoterIDs        []string `json:"voter_ids"`
	Addresses       []string `json:"addresses"`
	HashedPasswords []string `json:"hashed_passwords"`
}

// Domain types

type PendingVoter struct {
	ID              string    `json:"id"`
	BallotID        string    `json:"ballot_id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	MetamaskAddress string    `json:"metamask_address"`
	IDPhoto         string    `json:"id_photo"`
	CreatedAt       time.Time `json:"created_at"`
}

type ApprovedVoter struct {
	ID              string    `json:"id"`
	BallotID        string    `json:"ballot_id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	MetamaskAddress string    `json:"metamask_address"`
	IDPhoto         *string   `json:"id_photo"`
	VoterPassword   string    `json:"voter_password"` // shown to the admin UI by contract
	IsOnChain       bool      `json:"is_onchain"`
	CreatedAt       time.Time `json:"created_at"`
}

type Ballot struct {
	BallotID          string     `json:"ballot_id"`
	Title             string     `json:"title"`
	AdminAddress      string     `json:"admin_address"`
	RegistrationStart time.Time  `json:"registration_start"`
	RegistrationEnd   time.Time  `json:"registration_end"`
	VotingEnd         *time.Time `json:"voting_end,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// RegistrationOpen reports whether t falls inside the registration
// window. Both ends are inclusive and compared in UTC.
func (b Ballot) RegistrationOpen(t time.Time) bool {
	t = t.UTC()
	return !t.Before(b.RegistrationStart.UTC()) && !t.After(b.RegistrationEnd.UTC())
}

// Claim is one uniqueness key held by a voter row within a ballot.
type Claim struct {
	Kind  string
	Value string
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}

package models

import (
	"strings"

	val "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Validate checks a manual add. Error keys are the json field names.
func (r AddApprovedVoterRequest) Validate() error {
	return val.ValidateStruct(&r,
		val.Field(&r.FullName, val.Required),
		val.Field(&r.Email, val.Required, is.Email),
		val.Field(&r.MetamaskAddress, val.Required),
		val.Field(&r.BallotID, val.Required),
		val.Field(&r.IDPhotoURL, is.URL),
	)
}

// Validate checks that every ballot field is present. Times are parsed by
// the caller, which accepts several layouts.
func (r SaveBallotRequest) Validate() error {
	return val.ValidateStruct(&r,
		val.Field(&r.BallotID, val.Required),
		val.Field(&r.Title, val.Required),
		val.Field(&r.AdminAddress, val.Required),
		val.Field(&r.RegistrationStart, val.Required),
		val.Field(&r.RegistrationEnd, val.Required),
	)
}

// Trim strips surrounding whitespace from every field
func (r *AddApprovedVoterRequest) Trim() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.MetamaskAddress = strings.TrimSpace(r.MetamaskAddress)
	r.BallotID = strings.TrimSpace(r.BallotID)
	r.IDPhotoURL = strings.TrimSpace(r.IDPhotoURL)
}

// Trim strips surrounding whitespace from every field
func (r *SaveBallotRequest) Trim() {
	r.BallotID = strings.TrimSpace(r.BallotID)
	r.Title = strings.TrimSpace(r.Title)
	r.AdminAddress = strings.TrimSpace(r.AdminAddress)
	r.RegistrationStart = strings.TrimSpace(r.RegistrationStart)
	r.RegistrationEnd = strings.TrimSpace(r.RegistrationEnd)
	r.VotingEnd = strings.TrimSpace(r.VotingEnd)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registration

import "errors"

// Errors returned by Service. Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("voter not found")
	ErrBallotNotFound     = errors.New("ballot not found")
	ErrRegistrationClosed = errors.New("registration is closed for this ballot")
	ErrDuplicateWallet    = errors.New("metamask address already registered for this ballot")
	ErrDuplicateEmail     = errors.New("email already registered for this ballot")
	ErrDuplicateName      = errors.New("full name already registered for this ballot")
	ErrAlreadyApproved    = errors.New("voter already approved")
	ErrStorage            = errors.New("photo storage failure")
	ErrPersistence        = errors.New("database failure")
)

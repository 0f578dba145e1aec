// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registration implements the voter registration and review workflow.

# Lifecycle

	submit ──► pending ──approve──► approved ──mark-onchain──► on-chain
	              │                    │
	            reject          unapprove / delete

A submission is validated, checked against the ballot's registration
window (UTC, both ends inclusive) and against the uniqueness keys of the
configured duplicate policy. Its photo is uploaded before the pending row
is written, so a row never points at a missing photo.

# Uniqueness

Each voter row owns claims (wallet, and e-mail or full name depending on
policy) in the registration_claim table. The claim primary key is the
authoritative duplicate check; the lookup before upload only produces the
error early. Approval hands the claims over to the approved row inside the
insert transaction.

# Errors

All operations return the sentinel errors of this package, wrapped with
detail. Database failures become ErrPersistence and blob failures
ErrStorage; both are logged here with context.
*/
package registration

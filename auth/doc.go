// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier, password, and token utilities.

# IDs

Voter rows are keyed by random UUIDs:

	id := auth.GenerateID()

# Voter Passwords

Approved voters receive an 8-character mixed-case alphanumeric password:

	password, err := auth.GeneratePassword()

The password is the shared secret the voting contract checks at vote time.
It is drawn from crypto/rand with rejection sampling so every character of
the 62-symbol alphabet is equally likely.

# On-chain Hashes

The contract stores keccak256(password), computed exactly as web3 does:

	hash := auth.Keccak256Hex(password) // "0x" + 64 hex chars

# Admin Token

When an admin token is configured, administrative requests must present it:

	err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), cfg.AdminToken)

The comparison is constant time.
*/
package auth

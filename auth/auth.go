// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

var (
	ErrInvalidAdminToken = errors.New("invalid admin token")
)

// PasswordLength is the length of generated voter passwords
const PasswordLength = 8

const passwordChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID creates a random UUID for a database record
func GenerateID() string {
	return uuid.NewString()
}

// GeneratePassword creates an 8-character mixed-case alphanumeric password.
// It is a shared secret for the voting contract, not a login credential.
func GeneratePassword() (string, error) {
	// 248 = 4*62; bytes at or above it are rejected to keep the draw uniform
	const limit = 4 * len(passwordChars)

	out := make([]byte, 0, PasswordLength)
	buf := make([]byte, PasswordLength*2)
	for len(out) < PasswordLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, passwordChars[int(b)%len(passwordChars)])
			if len(out) == PasswordLength {
				break
			}
		}
	}
	return string(out), nil
}

// Keccak256Hex hashes s the way web3.utils.keccak256 does for a plain
// string: legacy Keccak-256 over the UTF-8 bytes, 0x-prefixed hex.
func Keccak256Hex(s string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// ValidateAdminToken compares the provided token against the configured one
// in constant time
func ValidateAdminToken(provided, expected string) error {
	if provided == "" || !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidAdminToken
	}
	return nil
}

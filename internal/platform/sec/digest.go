// Copyright (c) 2026 Postify. All rights reserved.

package sec

import (
	"fmt"
	"strconv"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// # Password Hashing

// PasswordHasher abstracts the password digest strategy.
//
// The local engine keeps the legacy 32-bit rolling hash for parity with
// digests already persisted by the browser build; the remote engine uses
// bcrypt. Swapping strategies is a data migration, never a code change
// elsewhere.
type PasswordHasher interface {
	// Hash derives a storable digest from a plain-text password.
	Hash(plainTextPassword string) (string, error)

	// Compare reports whether the plain-text password matches the digest.
	Compare(plainTextPassword, existingDigest string) bool
}

// # Legacy Rolling Hash

// Hash32 computes the 32-bit rolling hash used by the browser build of
// Postify: h = (h << 5) - h + c over the UTF-16 code units of s, with int32
// wraparound at every step.
//
// NOT cryptographic. It detects accidental corruption only; anyone holding
// the input space can forge collisions. Kept verbatim so that signatures and
// password digests recorded by the browser build remain verifiable.
func Hash32(s string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(s)) {
		hash = hash<<5 - hash + int32(unit)
	}
	return hash
}

// LegacyHasher implements [PasswordHasher] with the non-cryptographic
// [Hash32] digest, rendered as signed lowercase hexadecimal.
//
// Acceptable only for the demo-grade local directory. Real deployments run
// remote mode, which uses [BcryptHasher].
type LegacyHasher struct{}

// Hash derives the legacy digest. It never fails.
func (LegacyHasher) Hash(plainTextPassword string) (string, error) {
	// toString(16) parity: negative hashes keep their sign.
	return strconv.FormatInt(int64(Hash32(plainTextPassword)), 16), nil
}

// Compare re-derives the digest and compares. Not constant-time; the digest
// itself is the weakness here, not the comparison.
func (h LegacyHasher) Compare(plainTextPassword, existingDigest string) bool {
	digest, _ := h.Hash(plainTextPassword)
	return digest == existingDigest
}

// # Bcrypt

// BcryptHasher implements [PasswordHasher] with bcrypt at the default cost.
type BcryptHasher struct{}

// Hash hashes a plain-text password using the bcrypt algorithm.
func (BcryptHasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Compare compares a plain-text password with its bcrypt hash in constant time.
func (BcryptHasher) Compare(plainTextPassword, existingDigest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingDigest), []byte(plainTextPassword))
	return err == nil
}

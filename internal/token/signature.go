// Copyright (c) 2026 Postify. All rights reserved.

package token

import (
	"strconv"

	"github.com/postify/identity/internal/platform/sec"
)

// # Signatures

// Signer produces a deterministic keyed tag over the first two token segments.
//
// # Why an interface?
//
// The legacy signature below is NOT cryptographic (see [LegacySigner]). Keeping
// the signature behind this seam lets a deployment swap in a real keyed digest
// without touching the [Service] issuance/verification flow — the open upgrade
// path recorded in DESIGN.md.
type Signer interface {
	// Sign returns the signature segment for "headerEncoded.payloadEncoded"
	// under the given secret. Same inputs must always yield the same output.
	Sign(headerEncoded, payloadEncoded, secret string) string
}

// LegacySigner reproduces the browser build's signature: the 32-bit rolling
// hash of "header.payload" + secret, absolute value, rendered base-36.
//
// # Security
//
// This detects accidental tampering and corruption only. It is NOT an HMAC and
// must never guard a real trust boundary: anyone who can read the client
// bundle holds the secret, and the 32-bit output invites collisions. It is
// kept verbatim so tokens recorded against the browser build still verify.
type LegacySigner struct{}

// Sign implements [Signer].
func (LegacySigner) Sign(headerEncoded, payloadEncoded, secret string) string {
	combined := headerEncoded + "." + payloadEncoded + secret

	// abs in 64-bit space: abs(MinInt32) overflows int32 but not int64.
	hash := int64(sec.Hash32(combined))
	if hash < 0 {
		hash = -hash
	}

	return strconv.FormatInt(hash, 36)
}

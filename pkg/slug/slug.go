// Copyright (c) 2026 Postify. All rights reserved.

// Package slug converts arbitrary strings into URL-safe identifiers.
//
// The primary consumer is avatar generation: the default avatar URL embeds
// the slugged username as a deterministic seed, so the same handle always
// renders the same avatar.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make converts a string to a lowercase ASCII slug.
//
// # Transformation Pipeline
//
//  1. Unicode NFD decomposition (é -> e + ́)
//  2. Removal of combining marks
//  3. Lowercasing
//  4. Non-alphanumeric runs collapsed to single hyphens
func Make(input string) string {

	// Strip diacritics via NFD normalization
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(stripper, input)
	if err != nil {
		normalized = input
	}

	var builder strings.Builder
	builder.Grow(len(normalized))

	previousHyphen := false
	for _, r := range strings.ToLower(normalized) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			previousHyphen = false
		default:
			if !previousHyphen && builder.Len() > 0 {
				builder.WriteRune('-')
				previousHyphen = true
			}
		}
	}

	return strings.TrimSuffix(builder.String(), "-")
}

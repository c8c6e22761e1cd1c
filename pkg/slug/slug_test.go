// Copyright (c) 2026 Postify. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postify/identity/pkg/slug"
)

func TestMake(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "avid_reader", expected: "avid-reader"},
		{input: "Hello World", expected: "hello-world"},
		{input: "Crème Brûlée", expected: "creme-brulee"},
		{input: "  trimmed  ", expected: "trimmed"},
		{input: "many---dashes", expected: "many-dashes"},
		{input: "Admin123", expected: "admin123"},
		{input: "", expected: ""},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, slug.Make(testCase.input), "input %q", testCase.input)
	}
}

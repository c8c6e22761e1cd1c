// Copyright (c) 2026 Postify. All rights reserved.

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postify/identity/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	testCases := []struct {
		name            string
		query           string
		expectedPage    int
		expectedPerPage int
	}{
		{name: "defaults", query: "", expectedPage: 1, expectedPerPage: 20},
		{name: "explicit values", query: "?page=3&per_page=50", expectedPage: 3, expectedPerPage: 50},
		{name: "clamped to max", query: "?per_page=9999", expectedPage: 1, expectedPerPage: 100},
		{name: "garbage ignored", query: "?page=abc&per_page=-5", expectedPage: 1, expectedPerPage: 20},
		{name: "zero page ignored", query: "?page=0", expectedPage: 1, expectedPerPage: 20},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/users"+testCase.query, nil)
			params := pagination.FromRequest(request)
			assert.Equal(t, testCase.expectedPage, params.Page)
			assert.Equal(t, testCase.expectedPerPage, params.PerPage)
		})
	}
}

func TestOffsetAndMeta(t *testing.T) {
	params := pagination.Params{Page: 3, PerPage: 10}
	assert.Equal(t, 20, params.Offset())
	assert.Equal(t, 10, params.Limit())

	meta := pagination.NewMeta(params, 25)
	assert.Equal(t, int64(25), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	empty := pagination.NewMeta(params, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

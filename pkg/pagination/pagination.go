// Copyright (c) 2026 Postify. All rights reserved.

// Package pagination provides offset-based pagination primitives shared by
// list endpoints.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPage is used when the client omits or mangles the page parameter.
	DefaultPage = 1

	// DefaultPerPage is used when the client omits or mangles the per_page parameter.
	DefaultPerPage = 20

	// MaxPerPage caps the page size to protect the backing store.
	MaxPerPage = 100
)

// Params describes a single requested page.
type Params struct {
	Page    int
	PerPage int
}

// Meta is the pagination metadata block returned alongside list data.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// FromRequest extracts pagination parameters from the query string,
// clamping out-of-range values to safe defaults.
func FromRequest(request *http.Request) Params {
	params := Params{Page: DefaultPage, PerPage: DefaultPerPage}

	if raw := request.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.Page = page
		}
	}

	if raw := request.URL.Query().Get("per_page"); raw != "" {
		if perPage, err := strconv.Atoi(raw); err == nil && perPage > 0 {
			if perPage > MaxPerPage {
				perPage = MaxPerPage
			}
			params.PerPage = perPage
		}
	}

	return params
}

// Offset returns the number of records to skip for this page.
func (params Params) Offset() int {
	return (params.Page - 1) * params.PerPage
}

// Limit returns the page size.
func (params Params) Limit() int {
	return params.PerPage
}

// NewMeta builds the metadata block for a response.
func NewMeta(params Params, total int64) Meta {
	totalPages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	return Meta{
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

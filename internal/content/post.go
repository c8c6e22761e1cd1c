// Copyright (c) 2026 Postify. All rights reserved.

/*
Package content implements the Postify post catalogue.

Posts live beside the identity engine so the admin dashboard can report
content totals, and so local-mode deployments carry the full Postify data
set in one durable store. The storage shape mirrors the postify_posts
document of the browser build.
*/
package content

import (
	"time"
)

// Post is a published blog entry.
type Post struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	CoverURL string   `json:"cover_url,omitempty"`

	// Author is a denormalized snapshot taken at publish time.
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

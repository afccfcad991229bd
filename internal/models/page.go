// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PageStatus represents the publishing state of a page.
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// Page is a node in the site's page tree. Pages form a hierarchy through
// ParentID; a page's position in the tree determines its URL path, derived
// from the chain of slugs up to the root.
type Page struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Body      string     `json:"body"`
	Status    PageStatus `json:"status"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods and handlers. Parent and
	// Children are eager-loaded relations; the path fields are derived from
	// the slug chain on demand and never persisted. BodyHTML is the rendered
	// Markdown body.
	Parent      *Page  `json:"parent,omitempty"`
	Children    []Page `json:"children,omitempty"`
	Depth       int    `json:"depth"`
	FullPath    string `json:"full_path,omitempty"`
	DisplayPath string `json:"display_path,omitempty"`
	RootSlug    string `json:"root_slug,omitempty"`
	BodyHTML    string `json:"body_html,omitempty"`
}

// IsPublished returns true if the page is in published status.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// IsRoot returns true if the page has no parent.
func (p *Page) IsRoot() bool {
	return p.ParentID == nil
}

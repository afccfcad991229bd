// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pagetree/internal/hierarchy"
	"pagetree/internal/models"
)

// PageStore manages the page tree in the database. It owns both the plain
// row operations and the slug-path derivations, which it delegates to the
// hierarchy package through small adapters (see page_node.go).
type PageStore struct {
	db       *sql.DB
	resolver *hierarchy.Resolver
}

// NewPageStore returns a new PageStore. The resolver carries the
// domain-mapped folder configuration used for display paths.
func NewPageStore(db *sql.DB, resolver *hierarchy.Resolver) *PageStore {
	if resolver == nil {
		resolver = hierarchy.NewResolver()
	}
	return &PageStore{db: db, resolver: resolver}
}

const pageColumns = `id, title, slug, body, status, parent_id, sort_order, created_at, updated_at`

// scanPage scans a row into a Page struct.
func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	var p models.Page
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body, &p.Status,
		&p.ParentID, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all pages ordered by sort_order, then title.
func (s *PageStore) List() ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT ` + pageColumns + `
		FROM pages
		ORDER BY sort_order, title
	`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var items []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Tree returns pages as a nested tree structure.
func (s *PageStore) Tree() ([]models.Page, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil, 0), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Page, parentID *uuid.UUID, depth int) []models.Page {
	var result []models.Page
	for _, p := range flat {
		if ptrEqual(p.ParentID, parentID) {
			p.Depth = depth
			p.Children = buildTree(flat, &p.ID, depth+1)
			result = append(result, p)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FlatTree returns pages as a flat list ordered for display, with Depth set
// for indentation. Useful for <select> dropdowns.
func (s *PageStore) FlatTree() ([]models.Page, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}
	var result []models.Page
	flattenTree(tree, &result)
	return result, nil
}

// flattenTree walks a page tree depth-first, appending to result.
func flattenTree(pages []models.Page, result *[]models.Page) {
	for _, p := range pages {
		*result = append(*result, p)
		if len(p.Children) > 0 {
			flattenTree(p.Children, result)
		}
	}
}

// FindByID retrieves a page by ID. Returns nil if not found.
func (s *PageStore) FindByID(id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves the first page with the given slug, oldest first.
// Slugs are only unique among siblings, so when the same slug exists in
// several branches this is a point query with an arbitrary-but-stable
// winner. Callers that need an exact node must match by full path instead
// (WhereFullPath).
func (s *PageStore) FindBySlug(slug string) (*models.Page, error) {
	row := s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages
		WHERE slug = $1
		ORDER BY created_at
		LIMIT 1
	`, slug)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// ListBySlug returns every page with the given slug, oldest first.
func (s *PageStore) ListBySlug(slug string) ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT `+pageColumns+` FROM pages
		WHERE slug = $1
		ORDER BY created_at
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("list pages by slug: %w", err)
	}
	defer rows.Close()

	var items []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// ChildrenOf returns the direct children of a page, ordered by sort_order.
func (s *PageStore) ChildrenOf(id uuid.UUID) ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT `+pageColumns+` FROM pages
		WHERE parent_id = $1
		ORDER BY sort_order, title
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list page children: %w", err)
	}
	defer rows.Close()

	var items []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// AttachRelations eager-loads the Parent and Children virtual fields for a
// slice of pages with a single extra query, instead of one parent lookup
// and one children lookup per page.
func (s *PageStore) AttachRelations(pages []models.Page) error {
	if len(pages) == 0 {
		return nil
	}

	all, err := s.List()
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*models.Page, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	childrenOf := make(map[uuid.UUID][]models.Page)
	for _, p := range all {
		if p.ParentID != nil {
			childrenOf[*p.ParentID] = append(childrenOf[*p.ParentID], p)
		}
	}

	for i := range pages {
		if pages[i].ParentID != nil {
			if parent, ok := byID[*pages[i].ParentID]; ok {
				cp := *parent
				pages[i].Parent = &cp
			}
		}
		pages[i].Children = childrenOf[pages[i].ID]
	}
	return nil
}

// Create inserts a new page and returns it.
func (s *PageStore) Create(p *models.Page) (*models.Page, error) {
	row := s.db.QueryRow(`
		INSERT INTO pages (title, slug, body, status, parent_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+pageColumns,
		p.Title, p.Slug, p.Body, p.Status, p.ParentID, p.SortOrder,
	)
	result, err := scanPage(row)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return result, nil
}

// Update modifies an existing page.
func (s *PageStore) Update(p *models.Page) error {
	_, err := s.db.Exec(`
		UPDATE pages SET
			title = $1, slug = $2, body = $3, status = $4, parent_id = $5,
			sort_order = $6, updated_at = NOW()
		WHERE id = $7
	`, p.Title, p.Slug, p.Body, p.Status, p.ParentID, p.SortOrder, p.ID)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// Delete removes a page by ID. Children are re-parented to the root level
// (ON DELETE SET NULL).
func (s *PageStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order"`
}

// Reorder updates sort_order and parent_id for multiple pages in a
// transaction. Moving a page under a new parent changes every descendant's
// derived path on the next read; nothing is recomputed here because paths
// are never stored.
func (s *PageStore) Reorder(items []ReorderItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE pages SET parent_id = $1, sort_order = $2, updated_at = $3
		WHERE id = $4`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		if _, err := stmt.Exec(item.ParentID, item.Order, now, item.ID); err != nil {
			return fmt.Errorf("reorder page %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *PageStore) NextSortOrder(parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM pages WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM pages WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

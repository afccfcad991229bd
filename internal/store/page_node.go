// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page_node.go adapts Page rows to the hierarchy package's Node and Finder
// contracts and exposes the derived path operations on PageStore.
package store

import (
	"fmt"

	"pagetree/internal/hierarchy"
	"pagetree/internal/models"
)

// pageNode wraps a Page so the hierarchy package can walk its parent chain.
// Parent lookups go through the store unless the relation was already
// eager-loaded onto the page.
type pageNode struct {
	page  *models.Page
	store *PageStore
}

func (n *pageNode) NodeID() string   { return n.page.ID.String() }
func (n *pageNode) NodeSlug() string { return n.page.Slug }

func (n *pageNode) ParentNode() (hierarchy.Node, error) {
	if n.page.ParentID == nil {
		return nil, nil
	}
	if n.page.Parent != nil {
		return &pageNode{page: n.page.Parent, store: n.store}, nil
	}
	parent, err := n.store.FindByID(*n.page.ParentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		// Dangling parent reference: treat the page as a root.
		return nil, nil
	}
	return &pageNode{page: parent, store: n.store}, nil
}

// pageFinder adapts PageStore slug queries to hierarchy.Finder.
type pageFinder struct {
	store *PageStore
}

func (f *pageFinder) FindBySlug(slug string) (hierarchy.Node, error) {
	p, err := f.store.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &pageNode{page: p, store: f.store}, nil
}

func (f *pageFinder) ListBySlug(slug string) ([]hierarchy.Node, error) {
	pages, err := f.store.ListBySlug(slug)
	if err != nil {
		return nil, err
	}
	nodes := make([]hierarchy.Node, len(pages))
	for i := range pages {
		nodes[i] = &pageNode{page: &pages[i], store: f.store}
	}
	return nodes, nil
}

// FullPath derives the raw "/"-joined slug path for a page by walking its
// parent chain to the root.
func (s *PageStore) FullPath(p *models.Page) (string, error) {
	return hierarchy.FullPath(&pageNode{page: p, store: s})
}

// DisplayPath derives the externally visible path: the full path with
// configured domain-mapped folder segments removed.
func (s *PageStore) DisplayPath(p *models.Page) (string, error) {
	return s.resolver.DisplayFullPath(&pageNode{page: p, store: s})
}

// RootSlug derives the slug of the topmost ancestor in a page's chain.
func (s *PageStore) RootSlug(p *models.Page) (string, error) {
	return hierarchy.RootSlug(&pageNode{page: p, store: s})
}

// RootParent returns the page whose slug equals p's root slug, or nil for a
// root page. The lookup inherits the slug-only ambiguity documented on
// hierarchy.RootParent.
func (s *PageStore) RootParent(p *models.Page) (*models.Page, error) {
	node, err := hierarchy.RootParent(&pageNode{page: p, store: s}, &pageFinder{store: s})
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	pn, ok := node.(*pageNode)
	if !ok {
		return nil, fmt.Errorf("root parent: unexpected node type %T", node)
	}
	return pn.page, nil
}

// WhereFullPath returns every page whose raw full path equals the given
// path. Candidates are narrowed by terminal slug in SQL, then verified by
// walking each candidate's chain in memory.
func (s *PageStore) WhereFullPath(path string) ([]models.Page, error) {
	nodes, err := hierarchy.WhereFullPath(&pageFinder{store: s}, path)
	if err != nil {
		return nil, err
	}
	pages := make([]models.Page, 0, len(nodes))
	for _, n := range nodes {
		pn, ok := n.(*pageNode)
		if !ok {
			return nil, fmt.Errorf("where full path: unexpected node type %T", n)
		}
		pages = append(pages, *pn.page)
	}
	return pages, nil
}

// Annotate populates the derived path fields (FullPath, DisplayPath,
// RootSlug) on a page. The values are computed on demand and never written
// back to the database.
func (s *PageStore) Annotate(p *models.Page) error {
	full, err := s.FullPath(p)
	if err != nil {
		return err
	}
	display, err := s.DisplayPath(p)
	if err != nil {
		return err
	}
	rootSlug, err := s.RootSlug(p)
	if err != nil {
		return err
	}
	p.FullPath = full
	p.DisplayPath = display
	p.RootSlug = rootSlug
	return nil
}

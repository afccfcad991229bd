// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package hierarchy derives filesystem-like paths from chains of slugs.
// Any type that can report its slug and look up its parent gets full-path,
// root-slug, and display-path derivation through the Node contract, without
// the package knowing anything about how nodes are stored.
package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicHierarchy is returned when a node's parent chain loops back on
// itself. Without this check a cyclic chain would walk forever.
var ErrCyclicHierarchy = errors.New("cyclic hierarchy detected")

// Node is the capability contract for path resolution. A node contributes
// one slug segment and may have a parent of the same kind.
//
// ParentNode returns (nil, nil) for a root node. Method names avoid the
// bare ID/Slug forms so struct types with ID and Slug fields can satisfy
// the interface through a thin adapter.
type Node interface {
	// NodeID returns a stable identity used for cycle detection.
	NodeID() string

	// NodeSlug returns the node's path segment. Unique among siblings,
	// never contains "/".
	NodeSlug() string

	// ParentNode resolves the parent, or (nil, nil) when the node is a root.
	ParentNode() (Node, error)
}

// Finder supplies slug point queries against the backing store. Used by
// RootParent and WhereFullPath to turn slugs back into nodes.
type Finder interface {
	// FindBySlug returns the first node with the given slug, or nil if
	// none exists. When slugs collide across branches the choice of
	// "first" is the store's — see the RootParent note.
	FindBySlug(slug string) (Node, error)

	// ListBySlug returns every node with the given slug.
	ListBySlug(slug string) ([]Node, error)
}

// FullPath walks the parent chain from n to its root and joins the slugs
// into a "/"-prefixed path, root first. An empty slug contributes an empty
// segment, which stays in the raw path; DisplayFullPath strips it.
func FullPath(n Node) (string, error) {
	slugs, err := ancestorSlugs(n)
	if err != nil {
		return "", err
	}
	return "/" + strings.Join(slugs, "/"), nil
}

// ancestorSlugs collects slugs from root to n. Visited node IDs are tracked
// so a cyclic parent chain fails with ErrCyclicHierarchy instead of
// recursing until the stack is exhausted.
func ancestorSlugs(n Node) ([]string, error) {
	var slugs []string
	seen := make(map[string]bool)

	for cur := n; cur != nil; {
		id := cur.NodeID()
		if seen[id] {
			return nil, fmt.Errorf("walk ancestors of %q: %w", n.NodeSlug(), ErrCyclicHierarchy)
		}
		seen[id] = true

		slugs = append(slugs, cur.NodeSlug())

		parent, err := cur.ParentNode()
		if err != nil {
			return nil, fmt.Errorf("resolve parent of %q: %w", cur.NodeSlug(), err)
		}
		cur = parent
	}

	// Reverse in place: collected leaf-first, paths read root-first.
	for i, j := 0, len(slugs)-1; i < j; i, j = i+1, j-1 {
		slugs[i], slugs[j] = slugs[j], slugs[i]
	}
	return slugs, nil
}

// Segments splits a path on "/" and discards empty segments.
func Segments(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// RootSlug returns the slug of the topmost ancestor in n's chain: the first
// non-empty segment of the full path. Empty when the chain produces no
// non-empty segments, which only happens for a lone root with an empty slug.
func RootSlug(n Node) (string, error) {
	path, err := FullPath(n)
	if err != nil {
		return "", err
	}
	segs := Segments(path)
	if len(segs) == 0 {
		return "", nil
	}
	return segs[0], nil
}

// RootParent returns the topmost ancestor of n, looked up by its slug via
// the Finder. A root node has no root parent and returns (nil, nil).
//
// The lookup is by slug alone, not by full path. If a node in another
// branch shares the root's slug, whichever the store returns first wins —
// this matches the historical behavior and is deliberately not corrected
// here. See TestRootParentSlugCollision.
func RootParent(n Node, f Finder) (Node, error) {
	parent, err := n.ParentNode()
	if err != nil {
		return nil, fmt.Errorf("resolve parent of %q: %w", n.NodeSlug(), err)
	}
	if parent == nil {
		return nil, nil
	}

	rootSlug, err := RootSlug(n)
	if err != nil {
		return nil, err
	}
	return f.FindBySlug(rootSlug)
}

// WhereFullPath finds every node whose raw full path equals the given path.
// Candidates are fetched by the terminal slug, then each candidate's chain
// is walked and compared by exact string equality. The comparison uses the
// raw full path, never the display path, so a path that only matches after
// domain-mapped folders are stripped does not match here.
//
// Cost is O(candidates × chain depth); there is no precomputed path index.
func WhereFullPath(f Finder, path string) ([]Node, error) {
	segs := Segments(path)
	if len(segs) == 0 {
		return nil, nil
	}

	candidates, err := f.ListBySlug(segs[len(segs)-1])
	if err != nil {
		return nil, fmt.Errorf("list nodes by slug %q: %w", segs[len(segs)-1], err)
	}

	want := "/" + strings.TrimLeft(path, "/")

	var matches []Node
	for _, c := range candidates {
		full, err := FullPath(c)
		if err != nil {
			return nil, err
		}
		if full == want {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// Resolver bundles the per-type display configuration. DomainMappedFolders
// names path segments hidden from the externally visible path, typically a
// folder that exists only to drive subdomain routing.
type Resolver struct {
	domainMappedFolders map[string]bool
}

// NewResolver creates a Resolver that strips the given folder slugs from
// display paths. With no folders configured, display paths only differ from
// raw paths by dropped empty segments.
func NewResolver(domainMappedFolders ...string) *Resolver {
	folders := make(map[string]bool, len(domainMappedFolders))
	for _, f := range domainMappedFolders {
		folders[f] = true
	}
	return &Resolver{domainMappedFolders: folders}
}

// Excludes reports whether a slug is configured as a domain-mapped folder.
func (r *Resolver) Excludes(slug string) bool {
	return r.domainMappedFolders[slug]
}

// DisplayFullPath computes n's full path with empty segments and
// domain-mapped folder segments removed. The node's own terminal slug is
// removed too when it is itself a configured folder.
func (r *Resolver) DisplayFullPath(n Node) (string, error) {
	path, err := FullPath(n)
	if err != nil {
		return "", err
	}
	return r.DisplayPath(path), nil
}

// DisplayPath filters an already-computed raw path down to its display form.
func (r *Resolver) DisplayPath(path string) string {
	var kept []string
	for _, seg := range Segments(path) {
		if r.domainMappedFolders[seg] {
			continue
		}
		kept = append(kept, seg)
	}
	return "/" + strings.Join(kept, "/")
}

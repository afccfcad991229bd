// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"errors"
	"fmt"
	"testing"
)

// memNode is an in-memory Node for tests, with parents held as direct
// pointers so chains (and cycles) are easy to build.
type memNode struct {
	id        string
	slug      string
	parent    *memNode
	parentErr error
}

func (n *memNode) NodeID() string   { return n.id }
func (n *memNode) NodeSlug() string { return n.slug }

func (n *memNode) ParentNode() (Node, error) {
	if n.parentErr != nil {
		return nil, n.parentErr
	}
	if n.parent == nil {
		return nil, nil
	}
	return n.parent, nil
}

// memFinder implements Finder over a slice, preserving insertion order so
// tests can control which node a point query returns first.
type memFinder struct {
	nodes []*memNode
}

func (f *memFinder) FindBySlug(slug string) (Node, error) {
	for _, n := range f.nodes {
		if n.slug == slug {
			return n, nil
		}
	}
	return nil, nil
}

func (f *memFinder) ListBySlug(slug string) ([]Node, error) {
	var out []Node
	for _, n := range f.nodes {
		if n.slug == slug {
			out = append(out, n)
		}
	}
	return out, nil
}

// chain builds root→...→leaf from the given slugs and returns the leaf.
func chain(slugs ...string) *memNode {
	var parent *memNode
	for i, s := range slugs {
		parent = &memNode{id: fmt.Sprintf("n%d-%s", i, s), slug: s, parent: parent}
	}
	return parent
}

func TestFullPath(t *testing.T) {
	tests := []struct {
		name string
		node *memNode
		want string
	}{
		{name: "root node", node: chain("shop"), want: "/shop"},
		{name: "two levels", node: chain("shop", "widgets"), want: "/shop/widgets"},
		{name: "four levels", node: chain("root", "a", "b", "c"), want: "/root/a/b/c"},
		{name: "empty slug keeps empty segment", node: chain("shop", "", "x"), want: "/shop//x"},
		{name: "empty root slug", node: chain(""), want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FullPath(tt.node)
			if err != nil {
				t.Fatalf("FullPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("FullPath = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFullPathIdempotent verifies that repeated derivation over a fixed
// chain always yields the same path.
func TestFullPathIdempotent(t *testing.T) {
	leaf := chain("root", "a", "b")
	first, err := FullPath(leaf)
	if err != nil {
		t.Fatalf("FullPath: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := FullPath(leaf)
		if err != nil {
			t.Fatalf("FullPath (pass %d): %v", i, err)
		}
		if again != first {
			t.Errorf("FullPath not idempotent: %q then %q", first, again)
		}
	}
}

// TestFullPathCycle verifies that a cyclic parent chain fails with
// ErrCyclicHierarchy instead of walking forever.
func TestFullPathCycle(t *testing.T) {
	t.Run("two-node cycle", func(t *testing.T) {
		a := &memNode{id: "a", slug: "a"}
		b := &memNode{id: "b", slug: "b", parent: a}
		a.parent = b

		_, err := FullPath(b)
		if !errors.Is(err, ErrCyclicHierarchy) {
			t.Errorf("FullPath on cycle: got %v, want ErrCyclicHierarchy", err)
		}
	})

	t.Run("self-parent", func(t *testing.T) {
		a := &memNode{id: "a", slug: "a"}
		a.parent = a

		_, err := FullPath(a)
		if !errors.Is(err, ErrCyclicHierarchy) {
			t.Errorf("FullPath on self-parent: got %v, want ErrCyclicHierarchy", err)
		}
	})
}

// TestFullPathParentError verifies that storage-layer failures propagate
// unchanged through the error chain.
func TestFullPathParentError(t *testing.T) {
	storeErr := errors.New("connection reset")
	leaf := &memNode{id: "leaf", slug: "leaf", parentErr: storeErr}

	_, err := FullPath(leaf)
	if !errors.Is(err, storeErr) {
		t.Errorf("FullPath: got %v, want wrapped %v", err, storeErr)
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "simple path", path: "/a/b/c", want: []string{"a", "b", "c"}},
		{name: "empty segments dropped", path: "/a//b/", want: []string{"a", "b"}},
		{name: "no leading slash", path: "a/b", want: []string{"a", "b"}},
		{name: "root only", path: "/", want: nil},
		{name: "empty string", path: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segments(tt.path)
			if len(got) != len(tt.want) {
				t.Fatalf("Segments(%q) = %v, want %v", tt.path, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Segments(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRootSlug(t *testing.T) {
	tests := []struct {
		name string
		node *memNode
		want string
	}{
		{name: "root node returns own slug", node: chain("shop"), want: "shop"},
		{name: "three levels returns topmost not immediate parent", node: chain("shop", "tools", "hammers"), want: "shop"},
		{name: "empty root slug skipped", node: chain("", "about"), want: "about"},
		{name: "lone empty root yields empty", node: chain(""), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RootSlug(tt.node)
			if err != nil {
				t.Fatalf("RootSlug: %v", err)
			}
			if got != tt.want {
				t.Errorf("RootSlug = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRootParent(t *testing.T) {
	root := &memNode{id: "root", slug: "shop"}
	mid := &memNode{id: "mid", slug: "tools", parent: root}
	leaf := &memNode{id: "leaf", slug: "hammers", parent: mid}
	finder := &memFinder{nodes: []*memNode{root, mid, leaf}}

	t.Run("root node has no root parent", func(t *testing.T) {
		got, err := RootParent(root, finder)
		if err != nil {
			t.Fatalf("RootParent: %v", err)
		}
		if got != nil {
			t.Errorf("RootParent on root = %v, want nil", got)
		}
	})

	t.Run("leaf resolves topmost ancestor", func(t *testing.T) {
		got, err := RootParent(leaf, finder)
		if err != nil {
			t.Fatalf("RootParent: %v", err)
		}
		if got == nil || got.NodeID() != "root" {
			t.Errorf("RootParent = %v, want node %q", got, "root")
		}
	})

	t.Run("missing root slug returns nil", func(t *testing.T) {
		orphanRoot := &memNode{id: "or", slug: "gone"}
		child := &memNode{id: "oc", slug: "child", parent: orphanRoot}
		empty := &memFinder{}

		got, err := RootParent(child, empty)
		if err != nil {
			t.Fatalf("RootParent: %v", err)
		}
		if got != nil {
			t.Errorf("RootParent with absent slug = %v, want nil", got)
		}
	})
}

// TestRootParentSlugCollision documents the point-query-by-slug ambiguity:
// the lookup matches slug alone, not full path, so a node in a different
// branch that shares the root's slug can shadow the true root when the
// store returns it first.
func TestRootParentSlugCollision(t *testing.T) {
	trueRoot := &memNode{id: "true-root", slug: "shop"}
	leaf := &memNode{id: "leaf", slug: "deals", parent: trueRoot}

	otherRoot := &memNode{id: "other-root", slug: "eu"}
	impostor := &memNode{id: "impostor", slug: "shop", parent: otherRoot}

	// Store order puts the other branch's "shop" first.
	finder := &memFinder{nodes: []*memNode{impostor, trueRoot, otherRoot, leaf}}

	got, err := RootParent(leaf, finder)
	if err != nil {
		t.Fatalf("RootParent: %v", err)
	}
	if got == nil {
		t.Fatal("RootParent = nil, want a node")
	}
	// The wrong-branch node wins. This is the preserved historical behavior,
	// not a desirable one.
	if got.NodeID() != "impostor" {
		t.Errorf("RootParent = %q, want first store match %q", got.NodeID(), "impostor")
	}
}

func TestDisplayFullPath(t *testing.T) {
	tests := []struct {
		name    string
		node    *memNode
		folders []string
		want    string
	}{
		{
			name: "no folders configured",
			node: chain("shop", "widgets"),
			want: "/shop/widgets",
		},
		{
			name:    "root folder stripped",
			node:    chain("shop", "widgets"),
			folders: []string{"shop"},
			want:    "/widgets",
		},
		{
			name:    "middle folder stripped",
			node:    chain("shop", "internal", "widgets"),
			folders: []string{"internal"},
			want:    "/shop/widgets",
		},
		{
			name:    "terminal slug stripped when configured",
			node:    chain("shop", "internal"),
			folders: []string{"internal"},
			want:    "/shop",
		},
		{
			name:    "every occurrence stripped",
			node:    chain("x", "a", "x", "b"),
			folders: []string{"x"},
			want:    "/a/b",
		},
		{
			name: "empty segments dropped",
			node: chain("shop", "", "widgets"),
			want: "/shop/widgets",
		},
		{
			name:    "all segments stripped leaves bare slash",
			node:    chain("internal"),
			folders: []string{"internal"},
			want:    "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.folders...)
			got, err := r.DisplayFullPath(tt.node)
			if err != nil {
				t.Fatalf("DisplayFullPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("DisplayFullPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolverExcludes(t *testing.T) {
	r := NewResolver("shop", "internal")
	if !r.Excludes("shop") {
		t.Error("Excludes(shop) = false, want true")
	}
	if r.Excludes("widgets") {
		t.Error("Excludes(widgets) = true, want false")
	}
}

func TestWhereFullPath(t *testing.T) {
	shop := &memNode{id: "shop", slug: "shop"}
	widgets := &memNode{id: "widgets", slug: "widgets", parent: shop}

	// Same terminal slug, different branch: must not match /shop/widgets.
	archive := &memNode{id: "archive", slug: "archive"}
	archivedWidgets := &memNode{id: "aw", slug: "widgets", parent: archive}

	finder := &memFinder{nodes: []*memNode{shop, widgets, archive, archivedWidgets}}

	t.Run("exact raw match", func(t *testing.T) {
		got, err := WhereFullPath(finder, "/shop/widgets")
		if err != nil {
			t.Fatalf("WhereFullPath: %v", err)
		}
		if len(got) != 1 || got[0].NodeID() != "widgets" {
			t.Errorf("WhereFullPath = %v, want [widgets]", got)
		}
	})

	t.Run("missing leading slash is normalized", func(t *testing.T) {
		got, err := WhereFullPath(finder, "shop/widgets")
		if err != nil {
			t.Fatalf("WhereFullPath: %v", err)
		}
		if len(got) != 1 || got[0].NodeID() != "widgets" {
			t.Errorf("WhereFullPath = %v, want [widgets]", got)
		}
	})

	t.Run("no match for unknown path", func(t *testing.T) {
		got, err := WhereFullPath(finder, "/shop/gadgets")
		if err != nil {
			t.Fatalf("WhereFullPath: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("WhereFullPath = %v, want empty", got)
		}
	})

	t.Run("empty path returns nothing", func(t *testing.T) {
		for _, p := range []string{"", "/", "//"} {
			got, err := WhereFullPath(finder, p)
			if err != nil {
				t.Fatalf("WhereFullPath(%q): %v", p, err)
			}
			if len(got) != 0 {
				t.Errorf("WhereFullPath(%q) = %v, want empty", p, got)
			}
		}
	})
}

// TestWhereFullPathIgnoresDisplayPath verifies matching is against the raw
// full path: a node whose display path equals the query but whose raw path
// does not is excluded.
func TestWhereFullPathIgnoresDisplayPath(t *testing.T) {
	shop := &memNode{id: "shop", slug: "shop"}
	widgets := &memNode{id: "widgets", slug: "widgets", parent: shop}
	finder := &memFinder{nodes: []*memNode{shop, widgets}}

	// With "shop" configured as a domain-mapped folder the display path of
	// widgets is "/widgets" — but the raw path is "/shop/widgets", so a
	// query for "/widgets" finds nothing.
	r := NewResolver("shop")
	display, err := r.DisplayFullPath(widgets)
	if err != nil {
		t.Fatalf("DisplayFullPath: %v", err)
	}
	if display != "/widgets" {
		t.Fatalf("DisplayFullPath = %q, want %q", display, "/widgets")
	}

	got, err := WhereFullPath(finder, "/widgets")
	if err != nil {
		t.Fatalf("WhereFullPath: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("WhereFullPath(/widgets) = %v, want empty — display paths must not match", got)
	}
}

// TestSpecimenTree exercises the shop/widgets example end to end.
func TestSpecimenTree(t *testing.T) {
	root := &memNode{id: "r", slug: "shop"}
	child := &memNode{id: "c", slug: "widgets", parent: root}

	full, err := FullPath(child)
	if err != nil {
		t.Fatalf("FullPath: %v", err)
	}
	if full != "/shop/widgets" {
		t.Errorf("FullPath = %q, want %q", full, "/shop/widgets")
	}

	display, err := NewResolver("shop").DisplayFullPath(child)
	if err != nil {
		t.Fatalf("DisplayFullPath: %v", err)
	}
	if display != "/widgets" {
		t.Errorf("DisplayFullPath = %q, want %q", display, "/widgets")
	}

	rootSlug, err := RootSlug(child)
	if err != nil {
		t.Fatalf("RootSlug: %v", err)
	}
	if rootSlug != "shop" {
		t.Errorf("RootSlug = %q, want %q", rootSlug, "shop")
	}
}

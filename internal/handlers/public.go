// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"pagetree/internal/cache"
	"pagetree/internal/hierarchy"
	"pagetree/internal/markdown"
	"pagetree/internal/models"
	"pagetree/internal/store"
)

// Public groups handlers for the public-facing site. It resolves request
// paths to published pages by walking slug chains, checking the Valkey
// response cache before touching the database.
type Public struct {
	store *store.PageStore
	cache *cache.ResponseCache
}

// NewPublic creates a new Public handler group. cache may be nil when
// Valkey is not configured.
func NewPublic(pageStore *store.PageStore, responseCache *cache.ResponseCache) *Public {
	return &Public{store: pageStore, cache: responseCache}
}

// Homepage lists the published root pages with their derived paths.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, "/"); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	all, err := p.store.List()
	if err != nil {
		slog.Error("list pages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pages")
		return
	}

	roots := []models.Page{}
	for _, page := range all {
		if page.IsRoot() && page.IsPublished() {
			roots = append(roots, page)
		}
	}
	for i := range roots {
		if err := p.store.Annotate(&roots[i]); err != nil {
			slog.Error("annotate root failed", "error", err, "slug", roots[i].Slug)
			writeError(w, http.StatusInternalServerError, "failed to derive page paths")
			return
		}
	}

	body, err := json.Marshal(roots)
	if err != nil {
		slog.Error("marshal roots failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	if p.cache != nil {
		p.cache.Set(ctx, "/", body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Page resolves the request path to a published page. The match is by raw
// full path: the complete slug chain, including any domain-mapped folder
// segments that the display path hides.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := r.URL.Path

	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, path); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	matches, err := p.store.WhereFullPath(path)
	if err != nil {
		if errors.Is(err, hierarchy.ErrCyclicHierarchy) {
			slog.Error("cyclic hierarchy while resolving", "path", path)
			writeError(w, http.StatusInternalServerError, "cyclic hierarchy detected")
			return
		}
		slog.Error("resolve path failed", "error", err, "path", path)
		writeError(w, http.StatusInternalServerError, "failed to resolve path")
		return
	}

	var page *models.Page
	for i := range matches {
		if matches[i].IsPublished() {
			page = &matches[i]
			break
		}
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}

	if err := p.store.Annotate(page); err != nil {
		slog.Error("annotate page failed", "error", err, "path", path)
		writeError(w, http.StatusInternalServerError, "failed to derive page paths")
		return
	}

	rendered, err := markdown.ToHTML(page.Body)
	if err != nil {
		slog.Error("render body failed", "error", err, "path", path)
		writeError(w, http.StatusInternalServerError, "failed to render page body")
		return
	}
	page.BodyHTML = rendered

	body, err := json.Marshal(page)
	if err != nil {
		slog.Error("marshal page failed", "error", err, "path", path)
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	if p.cache != nil {
		p.cache.Set(ctx, path, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

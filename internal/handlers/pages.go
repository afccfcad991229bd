// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagetree/internal/cache"
	"pagetree/internal/hierarchy"
	"pagetree/internal/markdown"
	"pagetree/internal/models"
	"pagetree/internal/slug"
	"pagetree/internal/store"
)

// Pages groups the JSON API handlers for managing and querying the page
// tree. Mutations invalidate the whole response cache, since moving or
// renaming one page changes the derived paths of all its descendants.
type Pages struct {
	store *store.PageStore
	cache *cache.ResponseCache
}

// NewPages creates a new Pages handler group. cache may be nil when Valkey
// is not configured.
func NewPages(pageStore *store.PageStore, responseCache *cache.ResponseCache) *Pages {
	return &Pages{store: pageStore, cache: responseCache}
}

// writeJSON serializes v to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError sends a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// invalidate flushes the response cache after a mutation.
func (h *Pages) invalidate(r *http.Request) {
	if h.cache != nil {
		h.cache.InvalidateAll(r.Context())
	}
}

// List returns all pages as a flat list, or as a nested tree when the
// tree=1 query parameter is set.
func (h *Pages) List(w http.ResponseWriter, r *http.Request) {
	var (
		pages []models.Page
		err   error
	)
	if r.URL.Query().Get("tree") == "1" {
		pages, err = h.store.Tree()
	} else {
		pages, err = h.store.FlatTree()
	}
	if err != nil {
		slog.Error("list pages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pages")
		return
	}
	if pages == nil {
		pages = []models.Page{}
	}
	writeJSON(w, http.StatusOK, pages)
}

// Get returns a single page with its parent and children eager-loaded and
// the derived path fields populated.
func (h *Pages) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	page, err := h.store.FindByID(id)
	if err != nil {
		slog.Error("find page failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load page")
		return
	}
	if page == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	pages := []models.Page{*page}
	if err := h.store.AttachRelations(pages); err != nil {
		slog.Error("attach relations failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load page relations")
		return
	}
	if err := h.store.Annotate(&pages[0]); err != nil {
		if errors.Is(err, hierarchy.ErrCyclicHierarchy) {
			slog.Error("cyclic hierarchy", "id", id)
			writeError(w, http.StatusInternalServerError, "cyclic hierarchy detected")
			return
		}
		slog.Error("annotate page failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to derive page paths")
		return
	}

	if rendered, err := markdown.ToHTML(pages[0].Body); err == nil {
		pages[0].BodyHTML = rendered
	} else {
		slog.Warn("render body failed", "error", err, "id", id)
	}

	writeJSON(w, http.StatusOK, pages[0])
}

// Resolve returns every page whose raw full path equals the path query
// parameter. The match is exact against the unfiltered slug chain; display
// paths with domain-mapped folders removed do not match here.
func (h *Pages) Resolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	matches, err := h.store.WhereFullPath(path)
	if err != nil {
		if errors.Is(err, hierarchy.ErrCyclicHierarchy) {
			writeError(w, http.StatusInternalServerError, "cyclic hierarchy detected")
			return
		}
		slog.Error("resolve path failed", "error", err, "path", path)
		writeError(w, http.StatusInternalServerError, "failed to resolve path")
		return
	}

	for i := range matches {
		if err := h.store.Annotate(&matches[i]); err != nil {
			slog.Error("annotate match failed", "error", err, "path", path)
			writeError(w, http.StatusInternalServerError, "failed to derive page paths")
			return
		}
	}
	if matches == nil {
		matches = []models.Page{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// pageRequest is the JSON body for create and update operations.
type pageRequest struct {
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Body     string     `json:"body"`
	Status   string     `json:"status"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// Create inserts a new page. The slug is generated from the title when
// omitted; an explicit slug must already be normalized.
func (h *Pages) Create(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}
	if msg := validatePage(req.Title, req.Slug, req.Body, req.Status); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.ParentID != nil {
		parent, err := h.store.FindByID(*req.ParentID)
		if err != nil {
			slog.Error("find parent failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check parent")
			return
		}
		if parent == nil {
			writeError(w, http.StatusBadRequest, "parent page does not exist")
			return
		}
	}

	sortOrder, err := h.store.NextSortOrder(req.ParentID)
	if err != nil {
		slog.Error("next sort order failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to determine sort order")
		return
	}

	status := models.PageStatus(req.Status)
	if status == "" {
		status = models.PageStatusDraft
	}

	created, err := h.store.Create(&models.Page{
		Title:     req.Title,
		Slug:      req.Slug,
		Body:      req.Body,
		Status:    status,
		ParentID:  req.ParentID,
		SortOrder: sortOrder,
	})
	if err != nil {
		slog.Error("create page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create page")
		return
	}

	h.invalidate(r)

	if err := h.store.Annotate(created); err != nil {
		slog.Warn("annotate created page failed", "error", err, "id", created.ID)
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update modifies an existing page. Changing the slug or parent changes the
// derived paths of the whole subtree on the next read.
func (h *Pages) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	page, err := h.store.FindByID(id)
	if err != nil {
		slog.Error("find page failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load page")
		return
	}
	if page == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}
	if msg := validatePage(req.Title, req.Slug, req.Body, req.Status); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			writeError(w, http.StatusBadRequest, "a page cannot be its own parent")
			return
		}
		parent, err := h.store.FindByID(*req.ParentID)
		if err != nil {
			slog.Error("find parent failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check parent")
			return
		}
		if parent == nil {
			writeError(w, http.StatusBadRequest, "parent page does not exist")
			return
		}
	}

	page.Title = req.Title
	page.Slug = req.Slug
	page.Body = req.Body
	if req.Status != "" {
		page.Status = models.PageStatus(req.Status)
	}
	page.ParentID = req.ParentID

	if err := h.store.Update(page); err != nil {
		slog.Error("update page failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update page")
		return
	}

	h.invalidate(r)

	if err := h.store.Annotate(page); err != nil {
		if errors.Is(err, hierarchy.ErrCyclicHierarchy) {
			// The row is saved; report the now-broken chain to the caller.
			writeError(w, http.StatusConflict, "update created a cyclic hierarchy")
			return
		}
		slog.Warn("annotate updated page failed", "error", err, "id", id)
	}
	writeJSON(w, http.StatusOK, page)
}

// Delete removes a page. Its children are re-parented to the root level by
// the database.
func (h *Pages) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	page, err := h.store.FindByID(id)
	if err != nil {
		slog.Error("find page failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load page")
		return
	}
	if page == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		slog.Error("delete page failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete page")
		return
	}

	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// Reorder updates parent and sort order for multiple pages at once.
func (h *Pages) Reorder(w http.ResponseWriter, r *http.Request) {
	var items []store.ReorderItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "no items to reorder")
		return
	}

	if err := h.store.Reorder(items); err != nil {
		slog.Error("reorder pages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reorder pages")
		return
	}

	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

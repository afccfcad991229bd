package handlers

import (
	"strings"
	"unicode/utf8"

	"pagetree/internal/models"
	"pagetree/internal/slug"
)

// Validation limits for page fields.
const (
	maxTitleLen = 300
	maxSlugLen  = 300
	maxBodyLen  = 100_000
)

// validatePage checks page inputs and returns the first error found.
func validatePage(title, pageSlug, body, status string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if pageSlug == "" {
		return "Slug is required."
	}
	if utf8.RuneCountInString(pageSlug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if !slug.IsValid(pageSlug) {
		return "Slug must be lowercase letters, digits, and hyphens."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if status != "" &&
		status != string(models.PageStatusDraft) &&
		status != string(models.PageStatusPublished) {
		return "Status must be draft or published."
	}
	return ""
}

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with a small development page tree:
//
//	/shop
//	/shop/widgets
//	/shop/gadgets
//	/about
//
// It does nothing if any pages already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&count); err != nil {
		return fmt.Errorf("seed check pages: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	var shopID string
	err := db.QueryRow(`
		INSERT INTO pages (title, slug, body, status, sort_order)
		VALUES ('Shop', 'shop', 'Our catalog.', 'published', 0)
		RETURNING id
	`).Scan(&shopID)
	if err != nil {
		return fmt.Errorf("seed insert shop: %w", err)
	}

	children := []struct {
		title, slug, body string
		order             int
	}{
		{"Widgets", "widgets", "All widgets.", 0},
		{"Gadgets", "gadgets", "All gadgets.", 1},
	}
	for _, c := range children {
		_, err := db.Exec(`
			INSERT INTO pages (title, slug, body, status, parent_id, sort_order)
			VALUES ($1, $2, $3, 'published', $4, $5)
		`, c.title, c.slug, c.body, shopID, c.order)
		if err != nil {
			return fmt.Errorf("seed insert %s: %w", c.slug, err)
		}
	}

	_, err = db.Exec(`
		INSERT INTO pages (title, slug, body, status, sort_order)
		VALUES ('About', 'about', 'About this site.', 'published', 1)
	`)
	if err != nil {
		return fmt.Errorf("seed insert about: %w", err)
	}

	slog.Info("database seeded with development page tree",
		"roots", []string{"shop", "about"},
	)

	return nil
}

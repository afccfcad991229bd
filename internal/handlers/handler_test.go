// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"pagetree/internal/cache"
	"pagetree/internal/database"
	"pagetree/internal/hierarchy"
	"pagetree/internal/models"
	"pagetree/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "pagetree")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "pagetree")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "resolve:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB     *sql.DB
	Store  *store.PageStore
	Pages  *Pages
	Public *Public
}

// newTestEnv creates a test environment backed by PostgreSQL. The response
// cache is left nil so reads always hit the database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	resolver := hierarchy.NewResolver("ht-hidden")
	pageStore := store.NewPageStore(db, resolver)

	return &testEnv{
		DB:     db,
		Store:  pageStore,
		Pages:  NewPages(pageStore, nil),
		Public: NewPublic(pageStore, nil),
	}
}

// newCachedTestEnv is like newTestEnv but wires a Valkey-backed response
// cache with a short TTL. Skips when Valkey is unreachable.
func newCachedTestEnv(t *testing.T) (*testEnv, *cache.ResponseCache) {
	t.Helper()

	env := newTestEnv(t)
	vk := testValkeyClient(t)
	rc := cache.NewResponseCache(vk, 1*time.Minute)
	env.Pages = NewPages(env.Store, rc)
	env.Public = NewPublic(env.Store, rc)
	return env, rc
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// cleanPages removes test pages by slug.
func cleanPages(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM pages WHERE slug = $1", s)
	}
}

// createPage inserts a page directly through the store, failing the test on
// error.
func createPage(t *testing.T, s *store.PageStore, page *models.Page) *models.Page {
	t.Helper()
	created, err := s.Create(page)
	if err != nil {
		t.Fatalf("create page %q: %v", page.Slug, err)
	}
	return created
}

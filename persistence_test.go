package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"musikkryss/internal/storage"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		driver string
		path   string
		want   any
	}{
		{"file", filepath.Join(t.TempDir(), "sessions"), &storage.FileStore{}},
		{"", filepath.Join(t.TempDir(), "sessions"), &storage.FileStore{}},
		{"SQLite", t.TempDir(), &storage.SQLiteStore{}},
		{"memory", "", &storage.MemoryStore{}},
	}
	for _, tc := range cases {
		store, closeFn, err := openStore(ctx, tc.driver, tc.path, time.Hour)
		if err != nil {
			t.Fatalf("openStore(%q) failed: %v", tc.driver, err)
		}
		switch tc.want.(type) {
		case *storage.FileStore:
			if _, ok := store.(*storage.FileStore); !ok {
				t.Errorf("openStore(%q) = %T, want *storage.FileStore", tc.driver, store)
			}
		case *storage.SQLiteStore:
			if _, ok := store.(*storage.SQLiteStore); !ok {
				t.Errorf("openStore(%q) = %T, want *storage.SQLiteStore", tc.driver, store)
			}
			if _, err := os.Stat(filepath.Join(tc.path, "sessions.db")); err != nil {
				t.Errorf("expected sessions.db in %s: %v", tc.path, err)
			}
		case *storage.MemoryStore:
			if _, ok := store.(*storage.MemoryStore); !ok {
				t.Errorf("openStore(%q) = %T, want *storage.MemoryStore", tc.driver, store)
			}
		}
		if err := store.Save(ctx, "k", "v"); err != nil {
			t.Errorf("Save on %q store failed: %v", tc.driver, err)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close %q store: %v", tc.driver, err)
		}
	}

	if _, _, err := openStore(ctx, "redis", "", time.Hour); err == nil {
		t.Errorf("expected error for unknown driver")
	}
}

func TestCleanupOldSessions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := storage.NewFileStore(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(ctx, "old", 1); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one stored file, got %d (%v)", len(entries), err)
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, entries[0].Name()), stale, stale); err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(ctx, "fresh", 2); err != nil {
		t.Fatal(err)
	}

	if err := cleanupOldSessions(ctx, fs, time.Hour); err != nil {
		t.Fatalf("cleanupOldSessions failed: %v", err)
	}
	var v int
	if found, _ := fs.Load(ctx, "old", &v); found {
		t.Errorf("old entry survived cleanup")
	}
	if found, _ := fs.Load(ctx, "fresh", &v); !found || v != 2 {
		t.Errorf("fresh entry removed by cleanup")
	}

	if err := cleanupOldSessions(ctx, storage.NewMemoryStore(), time.Hour); err != nil {
		t.Errorf("cleanup of a store without Cleanup should be a no-op, got %v", err)
	}
}

func TestPruneIdleLimiters(t *testing.T) {
	app := &App{RateLimitRPS: 1, RateLimitBurst: 2, LimiterMap: map[string]*rate.Limiter{}}
	busy := app.getLimiter("10.0.0.1")
	busy.Allow()
	busy.Allow()
	app.getLimiter("10.0.0.2")

	app.pruneIdleLimiters()
	if _, ok := app.LimiterMap["10.0.0.2"]; ok {
		t.Errorf("idle limiter was not pruned")
	}
	if _, ok := app.LimiterMap["10.0.0.1"]; !ok {
		t.Errorf("busy limiter was pruned")
	}
}

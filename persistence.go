package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"musikkryss/internal/storage"
)

// openStore selects the storage backend named by driver.
func openStore(ctx context.Context, driver, path string, maxAge time.Duration) (storage.Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(driver) {
	case "", "file":
		fs, err := storage.NewFileStore(path, maxAge)
		if err != nil {
			return nil, nil, err
		}
		logInfo("Persisting sessions as JSON files in %s", path)
		return fs, noop, nil
	case "sqlite":
		dbPath := path
		if filepath.Ext(dbPath) == "" {
			dbPath = filepath.Join(path, "sessions.db")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, nil, err
		}
		db, err := storage.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, nil, err
		}
		logInfo("Persisting sessions in SQLite database %s", dbPath)
		return db, db.Close, nil
	case "memory":
		logInfo("Persisting sessions in memory only")
		return storage.NewMemoryStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q (want file, sqlite or memory)", driver)
}

// cleanupOldSessions drops stored state untouched for longer than maxAge.
var cleanupOldSessions = func(ctx context.Context, store storage.Store, maxAge time.Duration) error {
	cleaner, ok := store.(storage.Cleaner)
	if !ok {
		return nil
	}
	removed, err := cleaner.Cleanup(ctx, maxAge)
	if err != nil {
		logWarn("Session cleanup failed: %v", err)
		return err
	}
	logInfo("Session cleanup completed: removed %d entries", removed)
	return nil
}

// runSessionCleanup runs cleanupOldSessions every interval until ctx ends.
func (app *App) runSessionCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = cleanupOldSessions(ctx, app.Store, app.SessionTimeout)
			app.pruneIdleLimiters()
		}
	}
}

// pruneIdleLimiters forgets per-client limiters whose bucket has refilled,
// so the map does not grow without bound.
func (app *App) pruneIdleLimiters() {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	for key, lim := range app.LimiterMap {
		if lim.Tokens() >= float64(app.RateLimitBurst) {
			delete(app.LimiterMap, key)
		}
	}
}

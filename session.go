package main

import (
	"context"
	"hash/fnv"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"musikkryss/internal/session"
	"musikkryss/internal/storage"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || !isValidSessionID(sessionID) {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// isValidSessionID accepts only canonical UUIDs, which keeps cookie values
// out of storage keys unless they are well formed.
func isValidSessionID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// sessionLock serializes requests for one session so concurrent actions
// never interleave their load-mutate-save cycles. Sessions share a fixed
// set of striped locks.
func (app *App) sessionLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &app.SessionLocks[h.Sum32()%uint32(len(app.SessionLocks))]
}

// sessionStore scopes the shared store to one browser session.
func (app *App) sessionStore(sessionID string) storage.Store {
	return storage.Namespace(app.Store, storage.KeyPrefix+sessionID+":")
}

// openSession loads the session's controller for the current puzzle.
func (app *App) openSession(ctx context.Context, sessionID string) (*session.Controller, error) {
	def := app.Puzzles.Current()
	layout, err := app.Deriver.Layout(def)
	if err != nil {
		return nil, err
	}
	return session.Open(ctx, def, layout, app.sessionStore(sessionID)), nil
}

// withSession runs fn against the caller's session while holding its lock.
func (app *App) withSession(c *gin.Context, fn func(ctx context.Context, ctl *session.Controller) error) (*session.Controller, error) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	mu := app.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	ctl, err := app.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		if err := fn(ctx, ctl); err != nil {
			return ctl, err
		}
	}
	return ctl, nil
}

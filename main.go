package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"musikkryss/internal/puzzle"
	"musikkryss/internal/storage"
)

// App holds the server's shared state.
type App struct {
	Puzzles *puzzle.Source
	Deriver *puzzle.Deriver
	Store   storage.Store

	IsProduction   bool
	SessionTimeout time.Duration
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex
	SessionLocks [64]sync.Mutex

	StartTime time.Time
}

// NewApp wires an App around a puzzle source and a store, taking tunables
// from the environment.
func NewApp(src *puzzle.Source, store storage.Store, production bool) *App {
	return &App{
		Puzzles:        src,
		Deriver:        &puzzle.Deriver{},
		Store:          store,
		IsProduction:   production,
		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", 30*24*time.Hour),
		CookieMaxAge:   getEnvDuration("COOKIE_MAX_AGE", 30*24*time.Hour),
		StaticCacheAge: getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
		LimiterMap:     make(map[string]*rate.Limiter),
		StartTime:      time.Now(),
	}
}

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	logger, err := newLogger(isProduction)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logInfo("Starting musikkryss in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	puzzleFile := getEnvString("PUZZLE_FILE", DefaultPuzzleFile)
	src, err := puzzle.NewSource(puzzleFile)
	if err != nil {
		logFatal("Failed to load puzzle: %v", err)
	}
	def := src.Current()
	logInfo("Loaded puzzle %s (%dx%d, %d clues, %d tracks)", def.ID, def.Size.Rows, def.Size.Cols, len(def.Clues), len(def.Tracks))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessionTimeout := getEnvDuration("SESSION_TIMEOUT", 30*24*time.Hour)
	store, closeStore, err := openStore(ctx,
		getEnvString("STORE_DRIVER", "file"),
		getEnvString("STORE_PATH", DefaultStorePath),
		sessionTimeout)
	if err != nil {
		logFatal("Failed to open session store: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logWarn("Closing session store: %v", err)
		}
	}()

	app := NewApp(src, store, isProduction)
	router := app.buildRouter()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.serve(gctx, router) })
	g.Go(func() error { return app.runSessionCleanup(gctx, time.Hour) })
	if getEnvBool("WATCH_PUZZLE", !isProduction) {
		g.Go(func() error { return src.Watch(gctx) })
	}
	if err := g.Wait(); err != nil {
		logFatal("Server stopped: %v", err)
	}
	logInfo("Server shutdown complete")
}

// buildRouter registers middleware, templates and routes.
func (app *App) buildRouter() *gin.Engine {
	if app.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), app.accessLog())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts"})))
	router.Use(app.cacheMiddleware())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
	})
	if app.IsProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		router.LoadHTMLGlob("dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		logInfo("Serving development assets from source directories")
		router.LoadHTMLGlob("templates/*.html")
		router.Static("/static", "./static")
	}

	app.registerRoutes(router)
	return router
}

func (app *App) registerRoutes(router *gin.Engine) {
	limited := app.rateLimitMiddleware()

	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteBoard, app.boardHandler)
	router.POST(RouteSelectClue, limited, app.act(app.selectClueHandler))
	router.POST(RoutePrevClue, limited, app.act(app.prevClueHandler))
	router.POST(RouteNextClue, limited, app.act(app.nextClueHandler))
	router.POST(RouteCell, limited, app.act(app.inputHandler))
	router.POST(RoutePickCell, limited, app.act(app.pickCellHandler))
	router.POST(RouteBackspace, limited, app.act(app.backspaceHandler))
	router.POST(RouteMove, limited, app.act(app.moveHandler))
	router.POST(RouteDirection, limited, app.act(app.toggleDirectionHandler))
	router.POST(RouteTrack, limited, app.act(app.selectTrackHandler))
	router.POST(RoutePlay, limited, app.act(app.playHandler))
	router.POST(RouteReset, limited, app.act(app.resetHandler))
	router.GET(RoutePlayback, app.playbackHandler)
	router.GET(RouteSubmission, app.submissionHandler)
	router.GET(RouteMailto, app.mailtoHandler)
	router.GET(RouteLayout, app.layoutHandler)
	router.GET(RouteHealthz, app.healthzHandler)
}

// accessLog logs one line per request through zap.
func (app *App) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		reqID, _ := c.Request.Context().Value(requestIDKey).(string)
		zap.L().Info("request",
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (app *App) serve(ctx context.Context, router *gin.Engine) error {
	port := getEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logInfo("Server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logInfo("Shutdown signal received, shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logWarn("HTTP server Shutdown: %v", err)
	}
	return <-errCh
}

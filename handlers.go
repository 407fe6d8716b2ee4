package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"musikkryss/internal/puzzle"
	"musikkryss/internal/session"
)

// homeHandler renders the full page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	ctl, err := app.withSession(c, nil)
	if err != nil {
		app.renderPuzzleError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", app.pageData(c.Request.Context(), ctl, ""))
}

// boardHandler renders only the board fragment.
func (app *App) boardHandler(c *gin.Context) {
	ctl, err := app.withSession(c, nil)
	if err != nil {
		app.renderPuzzleError(c, err)
		return
	}
	c.HTML(http.StatusOK, "board", app.pageData(c.Request.Context(), ctl, ""))
}

// act wraps a mutating action: it runs fn on the session and answers with
// the board fragment for htmx requests or a redirect home otherwise.
func (app *App) act(fn func(c *gin.Context, ctx context.Context, ctl *session.Controller) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl, err := app.withSession(c, func(ctx context.Context, ctl *session.Controller) error {
			return fn(c, ctx, ctl)
		})
		if ctl == nil {
			app.renderPuzzleError(c, err)
			return
		}

		status, errMsg := http.StatusOK, ""
		if err != nil {
			status, errMsg = actionError(err)
			logWarn("Action %s failed: %v", c.FullPath(), err)
		}

		if isHTMX(c) {
			c.HTML(status, "board", app.pageData(c.Request.Context(), ctl, errMsg))
			return
		}
		if err != nil {
			c.HTML(status, "index.html", app.pageData(c.Request.Context(), ctl, errMsg))
			return
		}
		c.Redirect(http.StatusSeeOther, RouteHome)
	}
}

var (
	errBadCell = errors.New(ErrorBadCell)
	errBadMove = errors.New(ErrorBadMove)
)

// actionError maps a controller error to a status and user-facing message.
func actionError(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrUnknownClue):
		return http.StatusNotFound, ErrorUnknownClue
	case errors.Is(err, session.ErrUnknownTrack):
		return http.StatusNotFound, ErrorUnknownTrack
	case errors.Is(err, session.ErrNotFillable), errors.Is(err, errBadCell):
		return http.StatusBadRequest, ErrorBadCell
	case errors.Is(err, errBadMove):
		return http.StatusBadRequest, ErrorBadMove
	}
	return http.StatusInternalServerError, err.Error()
}

func (app *App) selectClueHandler(c *gin.Context, ctx context.Context, ctl *session.Controller) error {
	return ctl.SelectClue(ctx, c.Param("clueID"))
}

func (app *App) prevClueHandler(_ *gin.Context, ctx context.Context, ctl *session.Controller) error {
	return ctl.PrevClue(ctx)
}

func (app *App) nextClueHandler(_ *gin.Context, ctx context.Context, ctl *session.Controller) error {
	return ctl.NextClue(ctx)
}

func (app *App) pickCellHandler(c *gin.Context, ctx context.Context, ctl *session.Controller) error {
	pos, err := cellParam(c)
	if err != nil {
		return err
	}
	return ctl.PickClueByCell(ctx, pos)
}

func (app *App) inputHandler(c *gin.Context, ctx context.Context, ctl *session.Controller) error {
	pos, err := cellParam(c)
	if err != nil {
		return err
	}
	return ctl.Input(ctx, pos, c.PostForm("value"))
}

func (app *App) backspaceHandler(c *gin.Context, ctx context.Context, ctl *session.Controller) error {
	pos, err := cellParam(c)
	if err != nil {
		return err
	}
	return ctl.Backspace(ctx, pos)
}

var arrowSteps = map[string][2]int{
	"up":    {-1, 0},
	"down":  {1, 0},
	"left":  {0, -1},
	"right": {0, 1},
}

func (app *App) moveHandler(c *gin.Context, ctx context.Context, ctl *session.Controller) error {
	step, ok := arrowSteps[c.Param("dir")]
	if !ok {
		return errBadMove
	}
	ctl.Move(ctx, step[0], step[1])
	return nil
}

func (app *App) toggleDirectionHandler(_ *gin.Context, ctx context.Context, ctl *session.Controller) error {
	ctl.ToggleDirection(ctx)
	return nil
}

func (app *App) selectTrackHandler(c *gin.Context, ctx context.Context, ctl *session.Controller) error {
	return ctl.SelectTrack(ctx, c.Param("trackID"))
}

func (app *App) playHandler(_ *gin.Context, ctx context.Context, ctl *session.Controller) error {
	ctl.TogglePlay(ctx)
	return nil
}

func (app *App) resetHandler(_ *gin.Context, ctx context.Context, ctl *session.Controller) error {
	ctl.Reset(ctx)
	return nil
}

// playbackHandler reports simulated playback progress as JSON.
func (app *App) playbackHandler(c *gin.Context) {
	var progress session.Progress
	_, err := app.withSession(c, func(ctx context.Context, ctl *session.Controller) error {
		progress = ctl.Playback(ctx)
		return nil
	})
	if err != nil {
		app.renderPuzzleError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// submissionHandler returns the export document as plain text.
func (app *App) submissionHandler(c *gin.Context) {
	ctl, err := app.withSession(c, nil)
	if err != nil {
		app.renderPuzzleError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+ctl.Definition().ID+`.txt"`)
	c.String(http.StatusOK, ctl.Submission())
}

// mailtoHandler redirects the browser to a prefilled mail draft.
func (app *App) mailtoHandler(c *gin.Context) {
	ctl, err := app.withSession(c, nil)
	if err != nil {
		app.renderPuzzleError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, submissionMailto(ctl))
}

// layoutHandler exposes the derived numbers and spans of the current puzzle.
func (app *App) layoutHandler(c *gin.Context) {
	def := app.Puzzles.Current()
	layout, err := app.Deriver.Layout(def)
	if err != nil {
		app.renderPuzzleError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildLayoutJSON(def, layout))
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	def := app.Puzzles.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"puzzle":    def.ID,
		"clues":     len(def.Clues),
		"tracks":    len(def.Tracks),
		"uptime":    formatUptime(time.Since(app.StartTime)),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// pageData builds the template payload. It only reads the controller, so
// it is safe to call after the session lock is released.
func (app *App) pageData(_ context.Context, ctl *session.Controller, errMsg string) gin.H {
	state := ctl.State()
	view := buildBoardView(ctl, session.ProgressOf(ctl.ActiveTrack(), state.Playing, ctl.Now()))
	view.Error = errMsg
	view.Submission = ctl.Submission()
	view.Mailto = submissionMailto(ctl)
	return gin.H{
		"title": view.Title,
		"view":  view,
	}
}

func (app *App) renderPuzzleError(c *gin.Context, err error) {
	logWarn("Puzzle unavailable: %v", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrorNoPuzzle})
}

// cellParam parses the :row and :col route parameters.
func cellParam(c *gin.Context) (puzzle.Coord, error) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		return puzzle.Coord{}, errBadCell
	}
	col, err := strconv.Atoi(c.Param("col"))
	if err != nil {
		return puzzle.Coord{}, errBadCell
	}
	return puzzle.Coord{Row: row, Col: col}, nil
}

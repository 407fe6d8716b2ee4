// Package session owns one player's crossword state and persists every
// mutation through a storage.Store.
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"musikkryss/internal/puzzle"
	"musikkryss/internal/storage"
)

var (
	ErrUnknownClue  = errors.New("unknown clue")
	ErrUnknownTrack = errors.New("unknown track")
	ErrNotFillable  = errors.New("cell cannot hold a letter")
)

const (
	fieldValues    = "values"
	fieldCell      = "activeCell"
	fieldClue      = "activeClueId"
	fieldTrack     = "activeTrackId"
	fieldDirection = "activeDirection"
	fieldPlaying   = "playing"
)

var allFields = []string{fieldValues, fieldCell, fieldClue, fieldTrack, fieldDirection, fieldPlaying}

// State is everything a player has done on one puzzle.
type State struct {
	Values          map[string]string `json:"values"`
	ActiveCell      puzzle.Coord      `json:"activeCell"`
	ActiveClueID    string            `json:"activeClueId"`
	ActiveTrackID   string            `json:"activeTrackId"`
	ActiveDirection puzzle.Direction  `json:"activeDirection"`
	Playing         *Playing          `json:"playing"`
}

// Controller applies player actions to State. Each action writes the
// fields it changed back to the store before returning.
type Controller struct {
	def    *puzzle.Definition
	layout *puzzle.Layout
	store  storage.Store
	state  State

	Now func() time.Time
}

// Key is the storage key for one state field of a puzzle.
func Key(puzzleID, field string) string {
	return "puzzle:" + puzzleID + ":" + field
}

// Open loads the stored state for def. Missing or unreadable fields fall
// back to their defaults.
func Open(ctx context.Context, def *puzzle.Definition, layout *puzzle.Layout, store storage.Store) *Controller {
	c := &Controller{def: def, layout: layout, store: store, Now: time.Now}
	c.state = c.defaults()

	loadField(ctx, c, fieldValues, &c.state.Values)
	loadField(ctx, c, fieldCell, &c.state.ActiveCell)
	loadField(ctx, c, fieldClue, &c.state.ActiveClueID)
	loadField(ctx, c, fieldTrack, &c.state.ActiveTrackID)
	loadField(ctx, c, fieldDirection, &c.state.ActiveDirection)
	loadField(ctx, c, fieldPlaying, &c.state.Playing)

	if c.state.Values == nil {
		c.state.Values = map[string]string{}
	}
	if !c.state.ActiveDirection.Valid() {
		c.state.ActiveDirection = puzzle.Across
	}
	if _, ok := def.TrackByID(c.state.ActiveTrackID); !ok {
		c.state.ActiveTrackID = def.Tracks[0].ID
	}
	if _, ok := def.ClueByID(c.state.ActiveClueID); !ok {
		c.state.ActiveClueID = ""
	}
	if !layout.Grid().IsFillable(c.state.ActiveCell) {
		if first, ok := layout.Grid().FirstFillable(); ok {
			c.state.ActiveCell = first
		}
	}
	return c
}

func (c *Controller) defaults() State {
	return State{
		Values:          map[string]string{},
		ActiveCell:      puzzle.Coord{},
		ActiveTrackID:   c.def.Tracks[0].ID,
		ActiveDirection: puzzle.Across,
	}
}

// loadField decodes into a scratch value so a corrupt entry never leaves
// dst half-written.
func loadField[T any](ctx context.Context, c *Controller, field string, dst *T) {
	key := Key(c.def.ID, field)
	var v T
	found, err := c.store.Load(ctx, key, &v)
	if err != nil {
		zap.L().Warn("ignoring unreadable session field", zap.String("key", key), zap.Error(err))
		return
	}
	if found {
		*dst = v
	}
}

func (c *Controller) save(ctx context.Context, fields ...string) {
	for _, field := range fields {
		var v any
		switch field {
		case fieldValues:
			v = c.state.Values
		case fieldCell:
			v = c.state.ActiveCell
		case fieldClue:
			if c.state.ActiveClueID == "" {
				v = nil
			} else {
				v = c.state.ActiveClueID
			}
		case fieldTrack:
			v = c.state.ActiveTrackID
		case fieldDirection:
			v = c.state.ActiveDirection
		case fieldPlaying:
			v = c.state.Playing
		}
		key := Key(c.def.ID, field)
		if err := c.store.Save(ctx, key, v); err != nil {
			zap.L().Warn("failed to persist session field", zap.String("key", key), zap.Error(err))
		}
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Values = make(map[string]string, len(c.state.Values))
	for k, v := range c.state.Values {
		s.Values[k] = v
	}
	if c.state.Playing != nil {
		p := *c.state.Playing
		s.Playing = &p
	}
	return s
}

// Definition returns the puzzle this controller plays.
func (c *Controller) Definition() *puzzle.Definition { return c.def }

// Layout returns the derived layout in use.
func (c *Controller) Layout() *puzzle.Layout { return c.layout }

// ActiveClue returns the selected clue, if any.
func (c *Controller) ActiveClue() (puzzle.Clue, bool) {
	if c.state.ActiveClueID == "" {
		return puzzle.Clue{}, false
	}
	return c.def.ClueByID(c.state.ActiveClueID)
}

// ActiveTrack returns the selected track.
func (c *Controller) ActiveTrack() puzzle.Track {
	if t, ok := c.def.TrackByID(c.state.ActiveTrackID); ok {
		return t
	}
	return c.def.Tracks[0]
}

// Highlight is the set of cells in the active word.
func (c *Controller) Highlight() map[puzzle.Coord]struct{} {
	return c.layout.Highlight(c.state.ActiveClueID)
}

// Filled counts cells holding a letter.
func (c *Controller) Filled() int {
	return puzzle.CountFilled(c.state.Values)
}

// SelectClue makes a clue active: its track and direction become active,
// focus moves to the real first cell of its word and the track starts.
func (c *Controller) SelectClue(ctx context.Context, clueID string) error {
	clue, ok := c.def.ClueByID(clueID)
	if !ok {
		return ErrUnknownClue
	}
	c.state.ActiveClueID = clue.ID
	c.state.ActiveTrackID = clue.TrackID
	c.state.ActiveDirection = clue.Direction
	if span, ok := c.layout.Span(clue.ID); ok {
		c.state.ActiveCell = span.Start
	} else {
		c.state.ActiveCell = clue.Anchor()
	}
	c.state.Playing = &Playing{TrackID: clue.TrackID, StartedAt: c.Now()}
	c.save(ctx, fieldClue, fieldTrack, fieldDirection, fieldCell, fieldPlaying)
	return nil
}

func (c *Controller) activeIndex(ordered []puzzle.Clue) int {
	if c.state.ActiveClueID == "" {
		return -1
	}
	return slices.IndexFunc(ordered, func(cl puzzle.Clue) bool { return cl.ID == c.state.ActiveClueID })
}

// PrevClue selects the clue before the active one in number order, staying
// on the first clue.
func (c *Controller) PrevClue(ctx context.Context) error {
	ordered := c.def.OrderedClues()
	if len(ordered) == 0 {
		return nil
	}
	idx := c.activeIndex(ordered)
	next := 0
	if idx > 0 {
		next = idx - 1
	}
	return c.SelectClue(ctx, ordered[next].ID)
}

// NextClue selects the clue after the active one, staying on the last clue.
// With nothing selected the first clue is chosen.
func (c *Controller) NextClue(ctx context.Context) error {
	ordered := c.def.OrderedClues()
	if len(ordered) == 0 {
		return nil
	}
	idx := c.activeIndex(ordered)
	next := 0
	if idx >= 0 {
		next = min(len(ordered)-1, idx+1)
	}
	return c.SelectClue(ctx, ordered[next].ID)
}

// PickClueByCell focuses a cell and selects the clue whose word covers it.
// A cell inside the active word keeps the active clue, including where
// another word crosses it, and focus stays on the picked cell.
func (c *Controller) PickClueByCell(ctx context.Context, pos puzzle.Coord) error {
	if !c.layout.Grid().IsFillable(pos) {
		return ErrNotFillable
	}
	if c.state.ActiveClueID != "" && c.layout.InWord(c.state.ActiveClueID, pos) {
		c.state.ActiveCell = pos
		c.save(ctx, fieldCell)
		return nil
	}
	clue, ok := c.layout.ClueAt(pos)
	if !ok {
		c.state.ActiveCell = pos
		c.save(ctx, fieldCell)
		return nil
	}
	return c.SelectClue(ctx, clue.ID)
}

// Input writes raw into a cell. A letter advances focus to the next
// fillable cell in the active direction.
func (c *Controller) Input(ctx context.Context, pos puzzle.Coord, raw string) error {
	grid := c.layout.Grid()
	if !grid.IsFillable(pos) {
		return ErrNotFillable
	}
	ch := puzzle.NormalizeChar(raw)
	c.state.Values[pos.Key()] = ch
	c.state.ActiveCell = pos
	if ch != "" && puzzle.IsLetter(ch) {
		dr, dc := c.state.ActiveDirection.Delta()
		if next, ok := grid.Step(pos, dr, dc); ok {
			c.state.ActiveCell = next
		}
	}
	c.save(ctx, fieldValues, fieldCell)
	return nil
}

// Backspace clears a cell, or when it is already empty moves focus back one
// cell against the active direction.
func (c *Controller) Backspace(ctx context.Context, pos puzzle.Coord) error {
	grid := c.layout.Grid()
	if !grid.IsFillable(pos) {
		return ErrNotFillable
	}
	c.state.ActiveCell = pos
	if c.state.Values[pos.Key()] != "" {
		c.state.Values[pos.Key()] = ""
		c.save(ctx, fieldValues, fieldCell)
		return nil
	}
	dr, dc := c.state.ActiveDirection.Delta()
	if prev, ok := grid.Step(pos, -dr, -dc); ok {
		c.state.ActiveCell = prev
	}
	c.save(ctx, fieldCell)
	return nil
}

// Move shifts focus by an arrow-key step, skipping blocked cells.
func (c *Controller) Move(ctx context.Context, dr, dc int) {
	if next, ok := c.layout.Grid().Step(c.state.ActiveCell, dr, dc); ok {
		c.state.ActiveCell = next
		c.save(ctx, fieldCell)
	}
}

// ToggleDirection flips between across and down.
func (c *Controller) ToggleDirection(ctx context.Context) {
	c.state.ActiveDirection = c.state.ActiveDirection.Toggle()
	c.save(ctx, fieldDirection)
}

// SelectTrack makes a track active without touching the clue selection.
func (c *Controller) SelectTrack(ctx context.Context, trackID string) error {
	if _, ok := c.def.TrackByID(trackID); !ok {
		return ErrUnknownTrack
	}
	c.state.ActiveTrackID = trackID
	c.save(ctx, fieldTrack)
	return nil
}

// TogglePlay stops the active track if it is playing, otherwise starts it.
func (c *Controller) TogglePlay(ctx context.Context) {
	if p := c.Playback(ctx); p.Playing {
		c.state.Playing = nil
	} else {
		c.state.Playing = &Playing{TrackID: c.state.ActiveTrackID, StartedAt: c.Now()}
	}
	c.save(ctx, fieldPlaying)
}

// Playback reports progress of the active track. Playback that has run to
// the end is cleared.
func (c *Controller) Playback(ctx context.Context) Progress {
	p := ProgressOf(c.ActiveTrack(), c.state.Playing, c.Now())
	if p.Finished && c.state.Playing != nil {
		c.state.Playing = nil
		c.save(ctx, fieldPlaying)
	}
	return p
}

// Submission renders the export text for the current values.
func (c *Controller) Submission() string {
	return puzzle.BuildSubmission(c.def, c.layout, c.state.Values, c.Now())
}

// Reset drops all progress and clears every stored field.
func (c *Controller) Reset(ctx context.Context) {
	c.state = c.defaults()
	if first, ok := c.layout.Grid().FirstFillable(); ok {
		c.state.ActiveCell = first
	}
	for _, field := range allFields {
		key := Key(c.def.ID, field)
		if err := c.store.Clear(ctx, key); err != nil {
			zap.L().Warn("failed to clear session field", zap.String("key", key), zap.Error(err))
		}
	}
}

package main

import (
	"github.com/samber/lo"

	"musikkryss/internal/puzzle"
	"musikkryss/internal/session"
)

// cellView is one grid square as the template sees it.
type cellView struct {
	Row     int
	Col     int
	Blocked bool
	Number  int
	Value   string
	Active  bool
	InWord  bool
}

// clueView is a clue with its resolved length.
type clueView struct {
	ID     string
	Number int
	Label  string
	Length int
	Text   string
	Active bool
}

type trackView struct {
	puzzle.Track
	Active bool
	Clues  []clueView
}

// boardView is everything the board templates render.
type boardView struct {
	Title      string
	Subtitle   string
	WeekLabel  string
	PuzzleID   string
	Recipient  string
	Cols       int
	Cells      []cellView
	Direction  string
	ActiveClue *clueView
	Filled     int
	Total      int
	Percent    int
	Tracks     []trackView
	Track      puzzle.Track
	Progress   session.Progress
	Submission string
	Mailto     string
	Error      string
}

// buildBoardView derives the template model from a session controller.
func buildBoardView(ctl *session.Controller, progress session.Progress) boardView {
	def := ctl.Definition()
	layout := ctl.Layout()
	state := ctl.State()
	highlight := ctl.Highlight()
	lengths := layout.Lengths()

	toClueView := func(cl puzzle.Clue, _ int) clueView {
		return clueView{
			ID:     cl.ID,
			Number: cl.Number,
			Label:  cl.Direction.Label(),
			Length: lengths[cl.ID],
			Text:   cl.Text,
			Active: cl.ID == state.ActiveClueID,
		}
	}

	cells := lo.Map(layout.Cells(), func(cell puzzle.Cell, _ int) cellView {
		_, inWord := highlight[cell.Coord]
		return cellView{
			Row:     cell.Row,
			Col:     cell.Col,
			Blocked: cell.Blocked,
			Number:  cell.Number,
			Value:   state.Values[cell.Key()],
			Active:  cell.Coord == state.ActiveCell,
			InWord:  inWord,
		}
	})

	tracks := lo.Map(def.Tracks, func(t puzzle.Track, _ int) trackView {
		return trackView{
			Track:  t,
			Active: t.ID == state.ActiveTrackID,
			Clues:  lo.Map(def.CluesForTrack(t.ID), toClueView),
		}
	})

	total := layout.FillableCount()
	filled := ctl.Filled()
	percent := 0
	if total > 0 {
		percent = filled * 100 / total
	}

	view := boardView{
		Title:     def.Title,
		Subtitle:  def.Subtitle,
		WeekLabel: def.WeekLabel,
		PuzzleID:  def.ID,
		Recipient: puzzle.RecipientOf(def),
		Cols:      layout.Grid().Cols,
		Cells:     cells,
		Direction: state.ActiveDirection.Label(),
		Filled:    filled,
		Total:     total,
		Percent:   percent,
		Tracks:    tracks,
		Track:     ctl.ActiveTrack(),
		Progress:  progress,
	}
	if clue, ok := ctl.ActiveClue(); ok {
		cv := toClueView(clue, 0)
		view.ActiveClue = &cv
	}
	return view
}

// submissionMailto builds the outbound mail link for a session.
func submissionMailto(ctl *session.Controller) string {
	def := ctl.Definition()
	return puzzle.MailtoURL(puzzle.RecipientOf(def), puzzle.Subject(def), ctl.Submission())
}

// layoutJSON is the public shape of a derived layout.
type layoutJSON struct {
	PuzzleID string                 `json:"puzzleId"`
	Rows     int                    `json:"rows"`
	Cols     int                    `json:"cols"`
	Numbers  map[string]int         `json:"numbers"`
	Spans    map[string]puzzle.Span `json:"spans"`
}

func buildLayoutJSON(def *puzzle.Definition, layout *puzzle.Layout) layoutJSON {
	spans := make(map[string]puzzle.Span, len(def.Clues))
	for _, cl := range def.Clues {
		if s, ok := layout.Span(cl.ID); ok {
			spans[cl.ID] = s
		}
	}
	return layoutJSON{
		PuzzleID: def.ID,
		Rows:     layout.Grid().Rows,
		Cols:     layout.Grid().Cols,
		Numbers: lo.MapKeys(layout.Numbers(), func(_ int, c puzzle.Coord) string {
			return c.Key()
		}),
		Spans: spans,
	}
}

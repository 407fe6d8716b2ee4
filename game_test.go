package main

import (
	"context"
	"strings"
	"testing"

	"musikkryss/internal/puzzle"
	"musikkryss/internal/session"
	"musikkryss/internal/storage"
)

func demoController(t *testing.T) *session.Controller {
	t.Helper()
	def, err := puzzle.Load(DefaultPuzzleFile)
	if err != nil {
		t.Fatalf("loading demo puzzle: %v", err)
	}
	layout, err := puzzle.Derive(def)
	if err != nil {
		t.Fatalf("deriving layout: %v", err)
	}
	return session.Open(context.Background(), def, layout, storage.NewMemoryStore())
}

func TestBuildBoardView(t *testing.T) {
	ctx := context.Background()
	ctl := demoController(t)
	if err := ctl.SelectClue(ctx, "c1"); err != nil {
		t.Fatalf("SelectClue: %v", err)
	}
	if err := ctl.Input(ctx, puzzle.Coord{Row: 0, Col: 0}, "b"); err != nil {
		t.Fatalf("Input: %v", err)
	}

	view := buildBoardView(ctl, session.Progress{})
	if len(view.Cells) != 81 || view.Cols != 9 {
		t.Fatalf("got %d cells and %d cols, want 81 and 9", len(view.Cells), view.Cols)
	}
	if view.Filled != 1 || view.Total != 67 || view.Percent != 1 {
		t.Errorf("progress = %d/%d (%d%%), want 1/67 (1%%)", view.Filled, view.Total, view.Percent)
	}

	first := view.Cells[0]
	if first.Number != 1 || first.Value != "B" || first.Active || !first.InWord {
		t.Errorf("cell (0,0) = %+v", first)
	}
	if second := view.Cells[1]; !second.Active || !second.InWord {
		t.Errorf("cell (0,1) should be active and highlighted: %+v", second)
	}
	if blocked := view.Cells[4]; !blocked.Blocked || blocked.InWord {
		t.Errorf("cell (0,4) = %+v, want blocked", blocked)
	}
	if outside := view.Cells[9]; outside.InWord {
		t.Errorf("cell (1,0) should not be highlighted")
	}

	if view.ActiveClue == nil || view.ActiveClue.Length != 4 || view.ActiveClue.Label != "Vågrätt" {
		t.Fatalf("active clue = %+v", view.ActiveClue)
	}
	if view.Direction != "Vågrätt" || view.Track.ID != "t1" {
		t.Errorf("direction %q track %q", view.Direction, view.Track.ID)
	}
	if len(view.Tracks) != 3 || !view.Tracks[0].Active || len(view.Tracks[0].Clues) != 2 {
		t.Errorf("tracks = %+v", view.Tracks)
	}
	if !view.Tracks[0].Clues[0].Active || view.Tracks[0].Clues[1].Length != 2 {
		t.Errorf("track clues = %+v", view.Tracks[0].Clues)
	}
}

func TestBuildBoardViewWithoutClue(t *testing.T) {
	view := buildBoardView(demoController(t), session.Progress{})
	if view.ActiveClue != nil {
		t.Errorf("expected no active clue on a fresh session")
	}
	for _, c := range view.Cells {
		if c.InWord {
			t.Fatalf("cell %d,%d highlighted without an active clue", c.Row, c.Col)
		}
	}
}

func TestSubmissionMailto(t *testing.T) {
	link := submissionMailto(demoController(t))
	if !strings.HasPrefix(link, "mailto:support@wordex.se?subject=Musikkryss") {
		t.Errorf("mailto = %q", link)
	}
	if strings.Contains(link, "\n") || strings.Contains(link, " ") {
		t.Errorf("mailto link is not encoded: %q", link)
	}
}

func TestBuildLayoutJSON(t *testing.T) {
	ctl := demoController(t)
	got := buildLayoutJSON(ctl.Definition(), ctl.Layout())
	if got.PuzzleID != "wordex-demo-001" {
		t.Errorf("puzzle id = %q", got.PuzzleID)
	}
	if len(got.Numbers) != 6 || len(got.Spans) != 6 {
		t.Errorf("got %d numbers and %d spans, want 6 each", len(got.Numbers), len(got.Spans))
	}
	if got.Numbers["0:8"] != 4 {
		t.Errorf("numbers[0:8] = %d, want 4", got.Numbers["0:8"])
	}
}

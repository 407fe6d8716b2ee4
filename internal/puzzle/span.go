package puzzle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAnchorOutOfBounds = errors.New("clue anchor is outside the grid")
	ErrAnchorBlocked     = errors.New("clue anchor is on a blocked cell")
	ErrInvalidDirection  = errors.New("clue direction must be across or down")
)

// Span is the resolved extent of a clue's answer.
type Span struct {
	Start  Coord   `json:"start"`
	Cells  []Coord `json:"cells"`
	Length int     `json:"length"`
}

// ResolveSpan finds the true word a clue belongs to. The anchor may sit
// anywhere in the word: the start is found by walking back until the edge
// or a block, then cells are collected forward until the next edge or block.
func ResolveSpan(clue Clue, grid Grid) (Span, error) {
	if !clue.Direction.Valid() {
		return Span{}, fmt.Errorf("clue %s: %w (got %q)", clue.ID, ErrInvalidDirection, clue.Direction)
	}
	anchor := clue.Anchor()
	if !grid.InBounds(anchor) {
		return Span{}, fmt.Errorf("clue %s at %v: %w", clue.ID, anchor, ErrAnchorOutOfBounds)
	}
	if grid.IsBlocked(anchor) {
		return Span{}, fmt.Errorf("clue %s at %v: %w", clue.ID, anchor, ErrAnchorBlocked)
	}

	dr, dc := clue.Direction.Delta()

	start := anchor
	for {
		prev := Coord{start.Row - dr, start.Col - dc}
		if !grid.IsFillable(prev) {
			break
		}
		start = prev
	}

	var cells []Coord
	for cur := start; grid.IsFillable(cur); cur = (Coord{cur.Row + dr, cur.Col + dc}) {
		cells = append(cells, cur)
	}

	return Span{Start: start, Cells: cells, Length: len(cells)}, nil
}

// Contains reports whether c is one of the span's cells.
func (s Span) Contains(c Coord) bool {
	for _, cell := range s.Cells {
		if cell == c {
			return true
		}
	}
	return false
}

// Set returns the span's cells as a set.
func (s Span) Set() map[Coord]struct{} {
	out := make(map[Coord]struct{}, len(s.Cells))
	for _, c := range s.Cells {
		out[c] = struct{}{}
	}
	return out
}

// Answer reads the span out of a cell value map; empty cells become "_".
func (s Span) Answer(values map[string]string) string {
	var b strings.Builder
	for _, c := range s.Cells {
		v := values[c.Key()]
		if v == "" {
			v = "_"
		}
		b.WriteString(v)
	}
	return b.String()
}

package puzzle

import (
	"cmp"
	"encoding/binary"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Cell is one rendered grid position.
type Cell struct {
	Coord
	Blocked bool
	Number  int // 0 when no clue starts here
}

// Layout is everything derived from a grid and its clues. It is built once
// and never mutated.
type Layout struct {
	grid    Grid
	clues   []Clue
	spans   map[string]Span
	sets    map[string]map[Coord]struct{}
	numbers map[Coord]int
}

// Derive resolves every clue span and assigns visible numbers. When more
// than one clue starts at the same cell the lowest clue number is shown.
func Derive(def *Definition) (*Layout, error) {
	grid := def.Grid()
	l := &Layout{
		grid:    grid,
		clues:   slices.Clone(def.Clues),
		spans:   make(map[string]Span, len(def.Clues)),
		sets:    make(map[string]map[Coord]struct{}, len(def.Clues)),
		numbers: make(map[Coord]int),
	}
	for _, clue := range def.Clues {
		span, err := ResolveSpan(clue, grid)
		if err != nil {
			return nil, err
		}
		l.spans[clue.ID] = span
		l.sets[clue.ID] = span.Set()

		if prev, ok := l.numbers[span.Start]; !ok || clue.Number < prev {
			l.numbers[span.Start] = clue.Number
		}
	}
	return l, nil
}

// Grid returns the grid the layout was derived from.
func (l *Layout) Grid() Grid { return l.grid }

// Span returns the resolved span of a clue.
func (l *Layout) Span(clueID string) (Span, bool) {
	s, ok := l.spans[clueID]
	return s, ok
}

// Number returns the visible number at c, or 0.
func (l *Layout) Number(c Coord) int {
	return l.numbers[c]
}

// Numbers returns a copy of the coordinate to number mapping.
func (l *Layout) Numbers() map[Coord]int {
	out := make(map[Coord]int, len(l.numbers))
	for k, v := range l.numbers {
		out[k] = v
	}
	return out
}

// Highlight returns the cells of the active word. Unknown or empty clue ids
// give an empty set.
func (l *Layout) Highlight(clueID string) map[Coord]struct{} {
	set, ok := l.sets[clueID]
	if !ok {
		return map[Coord]struct{}{}
	}
	out := make(map[Coord]struct{}, len(set))
	for k := range set {
		out[k] = struct{}{}
	}
	return out
}

// InWord reports whether c belongs to the span of clueID.
func (l *Layout) InWord(clueID string, c Coord) bool {
	_, ok := l.sets[clueID][c]
	return ok
}

// ClueAt returns the first clue, in definition order, whose span covers c.
func (l *Layout) ClueAt(c Coord) (Clue, bool) {
	return lo.Find(l.clues, func(clue Clue) bool {
		_, ok := l.sets[clue.ID][c]
		return ok
	})
}

// Lengths maps clue ids to resolved lengths.
func (l *Layout) Lengths() map[string]int {
	return lo.MapValues(l.spans, func(s Span, _ string) int { return s.Length })
}

// FillableCount is the number of letter cells in the grid.
func (l *Layout) FillableCount() int {
	return l.grid.FillableCount()
}

// Cells lists every grid position in row-major order.
func (l *Layout) Cells() []Cell {
	out := make([]Cell, 0, l.grid.Rows*l.grid.Cols)
	for r := 0; r < l.grid.Rows; r++ {
		for c := 0; c < l.grid.Cols; c++ {
			pos := Coord{r, c}
			out = append(out, Cell{Coord: pos, Blocked: l.grid.IsBlocked(pos), Number: l.numbers[pos]})
		}
	}
	return out
}

// Deriver memoizes layouts by a fingerprint of the grid and clue set.
type Deriver struct {
	mu     sync.Mutex
	key    uint64
	layout *Layout
}

// Layout returns the cached layout for def, deriving a new one when the grid
// or clue set differ from the last call.
func (d *Deriver) Layout(def *Definition) (*Layout, error) {
	key := Fingerprint(def)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.layout != nil && d.key == key {
		return d.layout, nil
	}
	l, err := Derive(def)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("derived puzzle layout", zap.String("puzzle", def.ID), zap.Uint64("fingerprint", key))
	d.key, d.layout = key, l
	return l, nil
}

// Fingerprint hashes the parts of a definition that spans and numbers
// depend on: grid size, blocks and clues.
func Fingerprint(def *Definition) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(n)))
		h.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(len(s))
		h.Write([]byte(s))
	}

	grid := def.Grid()
	writeInt(grid.Rows)
	writeInt(grid.Cols)
	blocks := grid.Blocks()
	writeInt(len(blocks))
	for _, b := range blocks {
		writeInt(b.Row)
		writeInt(b.Col)
	}
	writeInt(len(def.Clues))
	for _, c := range def.Clues {
		writeString(c.ID)
		writeString(c.TrackID)
		writeInt(c.Number)
		writeString(string(c.Direction))
		writeInt(c.Row)
		writeInt(c.Col)
		writeInt(c.Length)
		writeString(c.Text)
	}
	return h.Sum64()
}

func sortCoords(cs []Coord) {
	slices.SortFunc(cs, func(a, b Coord) int {
		if a.Row != b.Row {
			return cmp.Compare(a.Row, b.Row)
		}
		return cmp.Compare(a.Col, b.Col)
	})
}

func sortClues(cs []Clue) {
	slices.SortStableFunc(cs, func(a, b Clue) int {
		return cmp.Compare(a.Number, b.Number)
	})
}

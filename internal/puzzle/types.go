// Package puzzle models a music crossword definition and derives what the
// board needs from it: the true word span behind every clue anchor, the
// visible clue numbers and the submission document.
package puzzle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Direction is the orientation of a clue's answer in the grid.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == Across || d == Down
}

// Delta returns the per-step row and column offset for d.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Across:
		return 0, 1
	case Down:
		return 1, 0
	}
	return 0, 0
}

// Toggle returns the other direction.
func (d Direction) Toggle() Direction {
	if d == Across {
		return Down
	}
	return Across
}

// Label is the display label shown next to clues.
func (d Direction) Label() string {
	if d == Across {
		return "Vågrätt"
	}
	return "Lodrätt"
}

// Coord is a zero-based grid position.
type Coord struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Key returns the "row:col" form used for cell value maps.
func (c Coord) Key() string {
	return strconv.Itoa(c.Row) + ":" + strconv.Itoa(c.Col)
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// ParseKey parses a "row:col" key.
func ParseKey(key string) (Coord, error) {
	r, c, ok := strings.Cut(key, ":")
	if !ok {
		return Coord{}, fmt.Errorf("invalid cell key %q", key)
	}
	row, err := strconv.Atoi(r)
	if err != nil {
		return Coord{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return Coord{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	return Coord{Row: row, Col: col}, nil
}

// Grid is the immutable shape of a puzzle: its size and blocked cells.
type Grid struct {
	Rows   int
	Cols   int
	blocks map[Coord]struct{}
}

// NewGrid builds a grid of rows x cols with the given blocked cells.
func NewGrid(rows, cols int, blocks []Coord) Grid {
	return Grid{
		Rows: rows,
		Cols: cols,
		blocks: lo.SliceToMap(blocks, func(c Coord) (Coord, struct{}) {
			return c, struct{}{}
		}),
	}
}

// InBounds reports whether c lies inside the grid.
func (g Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// IsBlocked reports whether c is a blocked cell.
func (g Grid) IsBlocked(c Coord) bool {
	_, ok := g.blocks[c]
	return ok
}

// IsFillable reports whether c is in bounds and not blocked.
func (g Grid) IsFillable(c Coord) bool {
	return g.InBounds(c) && !g.IsBlocked(c)
}

// Blocks returns the blocked cells in row-major order.
func (g Grid) Blocks() []Coord {
	out := lo.Keys(g.blocks)
	sortCoords(out)
	return out
}

// FillableCount returns the number of cells that can hold a letter.
func (g Grid) FillableCount() int {
	n := 0
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if !g.IsBlocked(Coord{r, c}) {
				n++
			}
		}
	}
	return n
}

// FirstFillable returns the first fillable cell in row-major order.
func (g Grid) FirstFillable() (Coord, bool) {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if !g.IsBlocked(Coord{r, c}) {
				return Coord{r, c}, true
			}
		}
	}
	return Coord{}, false
}

// Step moves from c by (dr, dc) until it lands on a fillable cell, skipping
// blocked cells. ok is false when the edge is reached first.
func (g Grid) Step(c Coord, dr, dc int) (Coord, bool) {
	if dr == 0 && dc == 0 {
		return c, false
	}
	next := Coord{c.Row + dr, c.Col + dc}
	for g.InBounds(next) {
		if !g.IsBlocked(next) {
			return next, true
		}
		next = Coord{next.Row + dr, next.Col + dc}
	}
	return c, false
}

// Track is a (simulated) audio track that clues refer to.
type Track struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Artist      string `json:"artist" yaml:"artist"`
	DurationSec int    `json:"durationSec" yaml:"durationSec"`
	Hint        string `json:"hint" yaml:"hint"`
}

// Clue is a crossword clue. Row and Col are the declared anchor, which may
// point anywhere inside the answer rather than at its first cell.
type Clue struct {
	ID        string    `json:"id" yaml:"id"`
	TrackID   string    `json:"trackId" yaml:"trackId"`
	Number    int       `json:"number" yaml:"number"`
	Direction Direction `json:"direction" yaml:"direction"`
	Row       int       `json:"row" yaml:"row"`
	Col       int       `json:"col" yaml:"col"`
	Length    int       `json:"length" yaml:"length"`
	Text      string    `json:"clue" yaml:"clue"`
}

// Anchor returns the declared anchor coordinate.
func (c Clue) Anchor() Coord {
	return Coord{Row: c.Row, Col: c.Col}
}

// Size is the grid dimension block of a definition.
type Size struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// Definition is a complete, load-time-fixed puzzle.
type Definition struct {
	ID        string   `json:"id" yaml:"id"`
	WeekLabel string   `json:"weekLabel" yaml:"weekLabel"`
	Title     string   `json:"title" yaml:"title"`
	Subtitle  string   `json:"subtitle" yaml:"subtitle"`
	Recipient string   `json:"recipient" yaml:"recipient"`
	Size      Size     `json:"size" yaml:"size"`
	Blocks    [][2]int `json:"blocks" yaml:"blocks"`
	Tracks    []Track  `json:"tracks" yaml:"tracks"`
	Clues     []Clue   `json:"clues" yaml:"clues"`
}

// Grid builds the grid described by the definition.
func (d *Definition) Grid() Grid {
	return NewGrid(d.Size.Rows, d.Size.Cols, lo.Map(d.Blocks, func(b [2]int, _ int) Coord {
		return Coord{Row: b[0], Col: b[1]}
	}))
}

// ClueByID returns the clue with the given id.
func (d *Definition) ClueByID(id string) (Clue, bool) {
	return lo.Find(d.Clues, func(c Clue) bool { return c.ID == id })
}

// TrackByID returns the track with the given id.
func (d *Definition) TrackByID(id string) (Track, bool) {
	return lo.Find(d.Tracks, func(t Track) bool { return t.ID == id })
}

// OrderedClues returns the clues sorted by number. Ties keep definition order.
func (d *Definition) OrderedClues() []Clue {
	out := make([]Clue, len(d.Clues))
	copy(out, d.Clues)
	sortClues(out)
	return out
}

// CluesForTrack returns the clues bound to a track, sorted by number.
func (d *Definition) CluesForTrack(trackID string) []Clue {
	out := lo.Filter(d.Clues, func(c Clue, _ int) bool { return c.TrackID == trackID })
	sortClues(out)
	return out
}

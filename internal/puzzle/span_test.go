package puzzle

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func demoGrid() Grid {
	return NewGrid(9, 9, []Coord{
		{0, 4}, {1, 1}, {1, 7}, {2, 2}, {2, 6}, {3, 4}, {4, 0},
		{4, 8}, {5, 4}, {6, 2}, {6, 6}, {7, 1}, {7, 7}, {8, 4},
	})
}

func cells(from Coord, dr, dc, n int) []Coord {
	out := make([]Coord, n)
	for i := range out {
		out[i] = Coord{from.Row + i*dr, from.Col + i*dc}
	}
	return out
}

func TestResolveSpan(t *testing.T) {
	grid := demoGrid()
	cases := []struct {
		name string
		clue Clue
		want Span
	}{
		{
			name: "anchor at word start across",
			clue: Clue{ID: "c1", Direction: Across, Row: 0, Col: 0, Length: 4},
			want: Span{Start: Coord{0, 0}, Cells: cells(Coord{0, 0}, 0, 1, 4), Length: 4},
		},
		{
			name: "declared length longer than word",
			clue: Clue{ID: "c2", Direction: Down, Row: 0, Col: 2, Length: 5},
			want: Span{Start: Coord{0, 2}, Cells: cells(Coord{0, 2}, 1, 0, 2), Length: 2},
		},
		{
			name: "word ends at block",
			clue: Clue{ID: "c3", Direction: Across, Row: 2, Col: 0, Length: 6},
			want: Span{Start: Coord{2, 0}, Cells: cells(Coord{2, 0}, 0, 1, 2), Length: 2},
		},
		{
			name: "anchor in the middle of a down word",
			clue: Clue{ID: "c4", Direction: Down, Row: 1, Col: 8, Length: 4},
			want: Span{Start: Coord{0, 8}, Cells: cells(Coord{0, 8}, 1, 0, 4), Length: 4},
		},
		{
			name: "word between block and block",
			clue: Clue{ID: "c5", Direction: Across, Row: 4, Col: 1, Length: 7},
			want: Span{Start: Coord{4, 1}, Cells: cells(Coord{4, 1}, 0, 1, 7), Length: 7},
		},
		{
			name: "full column",
			clue: Clue{ID: "c6", Direction: Down, Row: 3, Col: 5, Length: 5},
			want: Span{Start: Coord{0, 5}, Cells: cells(Coord{0, 5}, 1, 0, 9), Length: 9},
		},
		{
			name: "single cell word",
			clue: Clue{ID: "x", Direction: Across, Row: 1, Col: 0},
			want: Span{Start: Coord{1, 0}, Cells: []Coord{{1, 0}}, Length: 1},
		},
		{
			name: "anchor on last cell",
			clue: Clue{ID: "y", Direction: Across, Row: 0, Col: 3},
			want: Span{Start: Coord{0, 0}, Cells: cells(Coord{0, 0}, 0, 1, 4), Length: 4},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveSpan(tc.clue, grid)
			if err != nil {
				t.Fatalf("ResolveSpan: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("span mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveSpanProperties(t *testing.T) {
	grid := demoGrid()
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			anchor := Coord{r, c}
			if !grid.IsFillable(anchor) {
				continue
			}
			for _, dir := range []Direction{Across, Down} {
				span, err := ResolveSpan(Clue{ID: "p", Direction: dir, Row: r, Col: c}, grid)
				if err != nil {
					t.Fatalf("ResolveSpan(%v, %s): %v", anchor, dir, err)
				}
				dr, dc := dir.Delta()
				if span.Length < 1 || span.Length != len(span.Cells) {
					t.Fatalf("%v %s: length %d with %d cells", anchor, dir, span.Length, len(span.Cells))
				}
				if !span.Contains(anchor) {
					t.Errorf("%v %s: span does not contain its anchor", anchor, dir)
				}
				if span.Cells[0] != span.Start {
					t.Errorf("%v %s: first cell %v != start %v", anchor, dir, span.Cells[0], span.Start)
				}
				for i, cell := range span.Cells {
					if !grid.IsFillable(cell) {
						t.Errorf("%v %s: cell %v is not fillable", anchor, dir, cell)
					}
					if i > 0 && cell != (Coord{span.Cells[i-1].Row + dr, span.Cells[i-1].Col + dc}) {
						t.Errorf("%v %s: cells are not contiguous at %d", anchor, dir, i)
					}
				}
				before := Coord{span.Start.Row - dr, span.Start.Col - dc}
				last := span.Cells[len(span.Cells)-1]
				after := Coord{last.Row + dr, last.Col + dc}
				if grid.IsFillable(before) || grid.IsFillable(after) {
					t.Errorf("%v %s: span is not maximal", anchor, dir)
				}

				again, _ := ResolveSpan(Clue{ID: "q", Direction: dir, Row: last.Row, Col: last.Col}, grid)
				if diff := cmp.Diff(span, again); diff != "" {
					t.Errorf("%v %s: anchor position changed the span:\n%s", anchor, dir, diff)
				}
			}
		}
	}
}

func TestResolveSpanErrors(t *testing.T) {
	grid := demoGrid()
	cases := []struct {
		name string
		clue Clue
		want error
	}{
		{"out of bounds", Clue{ID: "a", Direction: Across, Row: 9, Col: 0}, ErrAnchorOutOfBounds},
		{"negative", Clue{ID: "b", Direction: Down, Row: -1, Col: 3}, ErrAnchorOutOfBounds},
		{"blocked", Clue{ID: "c", Direction: Across, Row: 0, Col: 4}, ErrAnchorBlocked},
		{"bad direction", Clue{ID: "d", Direction: "diagonal", Row: 0, Col: 0}, ErrInvalidDirection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveSpan(tc.clue, grid)
			if !errors.Is(err, tc.want) {
				t.Errorf("ResolveSpan error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSpanAnswer(t *testing.T) {
	span := Span{Start: Coord{0, 0}, Cells: cells(Coord{0, 0}, 0, 1, 4), Length: 4}
	values := map[string]string{"0:0": "A", "0:2": "B", "1:0": "Z"}
	if got := span.Answer(values); got != "A_B_" {
		t.Errorf("Answer = %q, want A_B_", got)
	}
	if got := span.Answer(nil); got != "____" {
		t.Errorf("Answer(nil) = %q, want ____", got)
	}
}

func TestGridStep(t *testing.T) {
	grid := demoGrid()
	cases := []struct {
		from   Coord
		dr, dc int
		want   Coord
		ok     bool
	}{
		{Coord{0, 3}, 0, 1, Coord{0, 5}, true},
		{Coord{0, 8}, 0, 1, Coord{0, 8}, false},
		{Coord{0, 1}, 1, 0, Coord{2, 1}, true},
		{Coord{3, 8}, 1, 0, Coord{5, 8}, true},
		{Coord{0, 0}, -1, 0, Coord{0, 0}, false},
		{Coord{2, 2}, 0, 0, Coord{2, 2}, false},
	}
	for _, tc := range cases {
		got, ok := grid.Step(tc.from, tc.dr, tc.dc)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Step(%v, %d, %d) = %v, %v; want %v, %v", tc.from, tc.dr, tc.dc, got, ok, tc.want, tc.ok)
		}
	}
}

func TestGridCounts(t *testing.T) {
	grid := demoGrid()
	if n := grid.FillableCount(); n != 67 {
		t.Errorf("FillableCount = %d, want 67", n)
	}
	if first, ok := grid.FirstFillable(); !ok || first != (Coord{0, 0}) {
		t.Errorf("FirstFillable = %v, %v", first, ok)
	}
	blocks := grid.Blocks()
	if len(blocks) != 14 || blocks[0] != (Coord{0, 4}) || blocks[13] != (Coord{8, 4}) {
		t.Errorf("Blocks = %v", blocks)
	}
	allBlocked := NewGrid(1, 2, []Coord{{0, 0}, {0, 1}})
	if _, ok := allBlocked.FirstFillable(); ok {
		t.Errorf("FirstFillable on a fully blocked grid should fail")
	}
}

func TestParseKey(t *testing.T) {
	c, err := ParseKey("3:7")
	if err != nil || c != (Coord{3, 7}) {
		t.Errorf("ParseKey(3:7) = %v, %v", c, err)
	}
	if c.Key() != "3:7" {
		t.Errorf("Key round trip = %q", c.Key())
	}
	for _, bad := range []string{"", "3", "a:1", "1:b"} {
		if _, err := ParseKey(bad); err == nil {
			t.Errorf("ParseKey(%q) should fail", bad)
		}
	}
}

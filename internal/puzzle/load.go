package puzzle

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidDefinition = errors.New("invalid puzzle definition")

// Load reads and validates a puzzle definition file. YAML and JSON are
// both accepted.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read puzzle %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load puzzle %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes and validates a definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition is self-consistent and that every clue
// resolves to a span.
func (d *Definition) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
	}

	if d.ID == "" {
		return invalid("missing id")
	}
	if d.Size.Rows <= 0 || d.Size.Cols <= 0 {
		return invalid("size must be positive, got %dx%d", d.Size.Rows, d.Size.Cols)
	}
	grid := d.Grid()
	for _, b := range d.Blocks {
		if !grid.InBounds(Coord{b[0], b[1]}) {
			return invalid("block (%d,%d) outside %dx%d grid", b[0], b[1], d.Size.Rows, d.Size.Cols)
		}
	}
	if len(d.Tracks) == 0 {
		return invalid("at least one track is required")
	}

	tracks := make(map[string]struct{}, len(d.Tracks))
	for _, t := range d.Tracks {
		if t.ID == "" {
			return invalid("track without id")
		}
		if _, dup := tracks[t.ID]; dup {
			return invalid("duplicate track id %q", t.ID)
		}
		if t.DurationSec < 0 {
			return invalid("track %q has negative duration", t.ID)
		}
		tracks[t.ID] = struct{}{}
	}

	clues := make(map[string]struct{}, len(d.Clues))
	for _, c := range d.Clues {
		if c.ID == "" {
			return invalid("clue without id")
		}
		if _, dup := clues[c.ID]; dup {
			return invalid("duplicate clue id %q", c.ID)
		}
		clues[c.ID] = struct{}{}
		if _, ok := tracks[c.TrackID]; !ok {
			return invalid("clue %q references unknown track %q", c.ID, c.TrackID)
		}
		if _, err := ResolveSpan(c, grid); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
		}
	}
	return nil
}

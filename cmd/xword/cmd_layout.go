package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"musikkryss/internal/puzzle"
)

func newSpansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spans <puzzle>",
		Short: "Show the resolved word span behind every clue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, layout, err := loadLayout(args[0])
			if err != nil {
				return err
			}
			return writeSpans(cmd.OutOrStdout(), def, layout)
		},
	}
}

func writeSpans(w io.Writer, def *puzzle.Definition, layout *puzzle.Layout) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLUE\tNR\tDIR\tANCHOR\tSTART\tLEN\tDECLARED")
	for _, clue := range def.OrderedClues() {
		span, _ := layout.Span(clue.ID)
		fmt.Fprintf(tw, "%s\t%d\t%s\t%v\t%v\t%d\t%d\n",
			clue.ID, clue.Number, clue.Direction, clue.Anchor(), span.Start, span.Length, clue.Length)
	}
	return tw.Flush()
}

func newNumbersCmd() *cobra.Command {
	var valuesPath string
	cmd := &cobra.Command{
		Use:   "numbers <puzzle>",
		Short: "Draw the grid with its visible clue numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, layout, err := loadLayout(args[0])
			if err != nil {
				return err
			}
			values, err := readValues(valuesPath)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderGrid(layout, values))
			return err
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "JSON file of cell values keyed \"row:col\"")
	return cmd
}

// renderGrid draws one line per row: "##" for blocks, the clue number where
// one starts, otherwise the cell letter or ".".
func renderGrid(layout *puzzle.Layout, values map[string]string) string {
	var b strings.Builder
	cols := layout.Grid().Cols
	for i, cell := range layout.Cells() {
		switch {
		case cell.Blocked:
			b.WriteString("##")
		case values[cell.Key()] != "":
			fmt.Fprintf(&b, "%2s", values[cell.Key()])
		case cell.Number > 0:
			fmt.Fprintf(&b, "%2d", cell.Number)
		default:
			b.WriteString(" .")
		}
		if (i+1)%cols == 0 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// readValues loads a "row:col" -> letter map. An empty path means no values.
func readValues(path string) (map[string]string, error) {
	values := map[string]string{}
	if path == "" {
		return values, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	for key, v := range values {
		if _, err := puzzle.ParseKey(key); err != nil {
			return nil, err
		}
		values[key] = puzzle.NormalizeChar(v)
	}
	return values, nil
}

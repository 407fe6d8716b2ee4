// Command xword inspects and exercises music crossword definitions from the
// terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"musikkryss/internal/puzzle"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xword",
		Short: "Inspect music crossword puzzles",
		Long: `xword loads a puzzle definition (YAML or JSON) and works with its
derived layout.

Available commands:
  spans   - Show the resolved word span behind every clue
  numbers - Draw the grid with its visible clue numbers
  export  - Print the submission text for a set of answers
  play    - Simulate playback of a track`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.AddCommand(newSpansCmd(), newNumbersCmd(), newExportCmd(), newPlayCmd())
	return root
}

func setupLogging(debug bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// loadLayout reads a definition and derives its layout.
func loadLayout(path string) (*puzzle.Definition, *puzzle.Layout, error) {
	def, err := puzzle.Load(path)
	if err != nil {
		return nil, nil, err
	}
	layout, err := puzzle.Derive(def)
	if err != nil {
		return nil, nil, err
	}
	zap.L().Debug("loaded puzzle", zap.String("puzzle", def.ID), zap.Int("clues", len(def.Clues)))
	return def, layout, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

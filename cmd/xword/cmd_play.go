package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"musikkryss/internal/puzzle"
	"musikkryss/internal/session"
)

func newPlayCmd() *cobra.Command {
	var (
		interval time.Duration
		speed    float64
	)
	cmd := &cobra.Command{
		Use:   "play <puzzle> <track>",
		Short: "Simulate playback of a track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := puzzle.Load(args[0])
			if err != nil {
				return err
			}
			track, ok := def.TrackByID(args[1])
			if !ok {
				return fmt.Errorf("%w: %s", session.ErrUnknownTrack, args[1])
			}
			if speed <= 0 {
				return fmt.Errorf("speed must be positive, got %v", speed)
			}
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %v", interval)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s – %s\n", track.Title, track.Artist)

			start := time.Now()
			playing := &session.Playing{TrackID: track.ID, StartedAt: start}
			var last session.Progress
			ticker, err := session.StartTicker(cmd.Context(), interval, func(now time.Time) bool {
				virtual := start.Add(time.Duration(float64(now.Sub(start)) * speed))
				last = session.ProgressOf(track, playing, virtual)
				drawProgress(out, last)
				return !last.Finished
			})
			if err != nil {
				return err
			}
			<-ticker.Done()
			fmt.Fprintln(out)
			if !last.Finished {
				return cmd.Context().Err()
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "Redraw interval")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Playback speed multiplier")
	return cmd
}

const barWidth = 30

func drawProgress(w io.Writer, p session.Progress) {
	filled := p.Percent * barWidth / 100
	fmt.Fprintf(w, "\r[%s%s] %3d%% %4.1fs/%.0fs",
		strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled),
		p.Percent, p.Elapsed, p.Duration)
}

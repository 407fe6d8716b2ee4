package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"musikkryss/internal/puzzle"
)

// Playing marks a track as started at a point in time. Playback is only a
// clock; no audio is involved.
type Playing struct {
	TrackID   string    `json:"trackId"`
	StartedAt time.Time `json:"startedAt"`
}

// Progress is a snapshot of simulated playback for one track.
type Progress struct {
	TrackID  string  `json:"trackId"`
	Playing  bool    `json:"playing"`
	Finished bool    `json:"finished"`
	Elapsed  float64 `json:"elapsed"`
	Duration float64 `json:"duration"`
	Percent  int     `json:"percent"`
}

// ProgressOf computes how far p has played through track at now. Elapsed is
// clamped to [0, duration]; a playing entry for another track reads as idle.
func ProgressOf(track puzzle.Track, p *Playing, now time.Time) Progress {
	out := Progress{TrackID: track.ID, Duration: float64(track.DurationSec)}
	if p == nil || p.TrackID != track.ID {
		return out
	}
	elapsed := min(max(now.Sub(p.StartedAt).Seconds(), 0), out.Duration)
	out.Elapsed = elapsed
	out.Finished = elapsed >= out.Duration
	out.Playing = !out.Finished
	if out.Duration > 0 {
		out.Percent = int(elapsed / out.Duration * 100)
	} else {
		out.Percent = 100
	}
	return out
}

// ErrInvalidInterval is returned for a ticker interval that is not positive.
var ErrInvalidInterval = errors.New("ticker interval must be positive")

// Ticker runs a callback on a fixed interval until the callback returns
// false, the parent context ends, or Stop is called.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartTicker schedules fn every interval.
func StartTicker(ctx context.Context, interval time.Duration, fn func(now time.Time) bool) (*Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tick.C:
				if !fn(now) {
					return
				}
			}
		}
	}()
	return t, nil
}

// Stop cancels the ticker and waits for the callback loop to exit.
func (t *Ticker) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed once the ticker has exited.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}

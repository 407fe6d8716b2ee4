package puzzle

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source holds the current definition and swaps it when the file on disk
// changes. Readers always see a complete, validated definition.
type Source struct {
	path     string
	debounce time.Duration

	mu  sync.RWMutex
	def *Definition
}

// NewSource loads path once. The definition stays fixed unless Watch runs.
func NewSource(path string) (*Source, error) {
	def, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Source{path: path, def: def, debounce: 200 * time.Millisecond}, nil
}

// StaticSource wraps an already loaded definition.
func StaticSource(def *Definition) *Source {
	return &Source{def: def}
}

// Current returns the active definition.
func (s *Source) Current() *Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// Reload re-reads the file. A definition that fails to load or validate is
// rejected and the previous one stays active.
func (s *Source) Reload() error {
	def, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.def = def
	s.mu.Unlock()
	return nil
}

// Watch reloads the definition whenever its file is written, until ctx is
// done. The parent directory is watched so editors that replace the file
// are picked up too.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return err
	}
	target := filepath.Clean(s.path)
	log := zap.L().With(zap.String("path", target))
	log.Info("watching puzzle definition")

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := s.Reload(); err != nil {
				log.Warn("puzzle reload rejected", zap.Error(err))
				continue
			}
			log.Info("puzzle definition reloaded", zap.String("puzzle", s.Current().ID))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("puzzle watcher error", zap.Error(err))
		}
	}
}

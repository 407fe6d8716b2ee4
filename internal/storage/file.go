package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const fileSuffix = ".json"

// FileStore keeps one JSON file per session under Dir. Every key written
// through a session namespace lands in the same file, so a session's fields
// share one modification time and expire together. Files older than MaxAge
// are treated as absent and removed on access; zero disables expiry.
type FileStore struct {
	Dir    string
	MaxAge time.Duration

	mu sync.Mutex
}

// bucket is the on-disk content of one session file.
type bucket map[string]json.RawMessage

// NewFileStore creates dir if needed.
func NewFileStore(dir string, maxAge time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &FileStore{Dir: dir, MaxAge: maxAge}, nil
}

// bucketOf groups "<KeyPrefix><session>:<field>" keys by session. Any other
// key is a bucket of its own.
func bucketOf(key string) string {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return key
	}
	session, _, ok := strings.Cut(rest, ":")
	if !ok || session == "" {
		return key
	}
	return KeyPrefix + session
}

// path maps a key to its bucket file. The name cannot escape Dir.
func (f *FileStore) path(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	name := base64.RawURLEncoding.EncodeToString([]byte(bucketOf(key))) + fileSuffix
	return filepath.Join(f.Dir, name), nil
}

// read returns the bucket stored at p. An expired file is removed and reads
// as empty. A file that does not decode is removed and reported.
func (f *FileStore) read(p string) (bucket, error) {
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return bucket{}, nil
	}
	if err != nil {
		return nil, err
	}
	if f.MaxAge > 0 {
		if age := time.Since(info.ModTime()); age > f.MaxAge {
			zap.L().Debug("removing expired store file", zap.String("file", filepath.Base(p)), zap.Duration("age", age))
			_ = os.Remove(p)
			return bucket{}, nil
		}
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var b bucket
	if err := json.Unmarshal(data, &b); err != nil {
		zap.L().Warn("removing corrupted store file", zap.String("file", filepath.Base(p)), zap.Error(err))
		_ = os.Remove(p)
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(p), err)
	}
	if b == nil {
		b = bucket{}
	}
	return b, nil
}

// write replaces the bucket at p atomically, or removes it once empty.
func (f *FileStore) write(p string, b bucket) error {
	if len(b) == 0 {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (f *FileStore) Load(_ context.Context, key string, dst any) (bool, error) {
	p, err := f.path(key)
	if err != nil {
		return false, err
	}
	f.mu.Lock()
	b, err := f.read(p)
	f.mu.Unlock()
	if err != nil {
		return false, err
	}
	raw, ok := b[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (f *FileStore) Save(_ context.Context, key string, value any) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.read(p)
	if err != nil {
		// The unreadable file is gone; start the session over.
		b = bucket{}
	}
	b[key] = raw
	return f.write(p, b)
}

func (f *FileStore) Clear(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.read(p)
	if err != nil {
		return nil
	}
	if _, ok := b[key]; !ok {
		return nil
	}
	delete(b, key)
	return f.write(p, b)
}

// Cleanup removes session files not modified within maxAge and returns how
// many were removed.
func (f *FileStore) Cleanup(_ context.Context, maxAge time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			failed++
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(f.Dir, entry.Name())); err != nil {
			failed++
			continue
		}
		removed++
	}
	zap.L().Info("store cleanup completed", zap.Int("removed", removed), zap.Int("errors", failed))
	return removed, nil
}

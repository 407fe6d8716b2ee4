package puzzle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeDemoCopy(t *testing.T, path, id string) {
	t.Helper()
	data, err := os.ReadFile("testdata/demo.yaml")
	if err != nil {
		t.Fatal(err)
	}
	out := strings.Replace(string(data), "id: wordex-demo-001", "id: "+id, 1)
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSourceReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzle.yaml")
	writeDemoCopy(t, path, "first")

	src, err := NewSource(path)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if src.Current().ID != "first" {
		t.Fatalf("Current().ID = %q", src.Current().ID)
	}

	if err := os.WriteFile(path, []byte("id: broken\nsize: {rows: 0, cols: 0}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := src.Reload(); err == nil {
		t.Errorf("Reload should reject an invalid definition")
	}
	if src.Current().ID != "first" {
		t.Errorf("rejected reload replaced the definition")
	}

	writeDemoCopy(t, path, "second")
	if err := src.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if src.Current().ID != "second" {
		t.Errorf("Current().ID = %q, want second", src.Current().ID)
	}
}

func TestSourceWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzle.yaml")
	writeDemoCopy(t, path, "before")
	src, err := NewSource(path)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	src.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for src.Current().ID != "after" {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("watcher never picked up the change")
		case <-tick.C:
			writeDemoCopy(t, path, "after")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

func TestStaticSourceWatchBlocksUntilDone(t *testing.T) {
	src := StaticSource(&Definition{ID: "static"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

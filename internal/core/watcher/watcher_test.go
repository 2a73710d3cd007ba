package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_RejectsNilCallback(t *testing.T) {
	w, err := New([]string{"bundle.json"}, 100*time.Millisecond, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestWatcherTriggersOnBundleWrite(t *testing.T) {
	tmpDir := t.TempDir()
	bundle := filepath.Join(tmpDir, "bundle.json")
	other := filepath.Join(tmpDir, "other.json")
	if err := os.WriteFile(bundle, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 1)
	w, err := New([]string{bundle}, 100*time.Millisecond, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Unwatched siblings must not trigger.
	if err := os.WriteFile(other, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bundle, []byte(`{"version": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changed:
		if len(paths) != 1 || paths[0] != bundle {
			t.Errorf("expected only the bundle path, got %v", paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for bundle change event")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	tmpDir := t.TempDir()
	bundle := filepath.Join(tmpDir, "bundle.json")
	if err := os.WriteFile(bundle, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 8)
	w, err := New([]string{bundle}, 150*time.Millisecond, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(bundle, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced flush")
	}

	select {
	case paths := <-changed:
		t.Errorf("burst should flush once, got extra callback %v", paths)
	case <-time.After(300 * time.Millisecond):
	}
}

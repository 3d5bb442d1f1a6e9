package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcher_FiresOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes.yaml")
	if err := os.WriteFile(path, []byte("quotes:\n  - text: a\n    category: b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	fired := 0
	w := NewWatcher(path, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	}, nil)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("quotes:\n  - text: c\n    category: d\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := fired
		mu.Unlock()
		if n >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected change callback")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes.yaml")
	if err := os.WriteFile(path, []byte("quotes:\n  - text: a\n    category: b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	fired := 0
	w := NewWatcher(path, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	}, nil)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	n := fired
	mu.Unlock()
	if n != 0 {
		t.Errorf("expected no callbacks for sibling files, got %d", n)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes.yaml")
	if err := os.WriteFile(path, []byte("quotes:\n  - text: a\n    category: b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, func() {}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

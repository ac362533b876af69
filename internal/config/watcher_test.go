package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty")
	}
	return string(data), nil
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, readString, 20*time.Millisecond, nil)
	got := make(chan string, 4)
	w.OnReload(func(s string) { got <- s })
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-got:
		if s != "two" {
			t.Errorf("reloaded: got %q, want two", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, readString, 10*time.Millisecond, nil)
	got := make(chan string, 4)
	w.OnReload(func(s string) { got <- s })
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-got:
		t.Errorf("unexpected reload %q", s)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, readString, 10*time.Millisecond, nil)
	reloads := make(chan string, 4)
	errs := make(chan error, 4)
	w.OnReload(func(s string) { reloads <- s })
	w.OnError(func(err error) { errs <- err })
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case s := <-reloads:
		t.Fatalf("handler called with %q despite load error", s)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "c.toml"), readString, 0, nil)
	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

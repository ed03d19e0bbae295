package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestShouldReload(t *testing.T) {
	path := filepath.Join("/home/u", "winmgr.json")
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: "/home/u/notes.txt", Op: fsnotify.Write}, false},
		{"relative name", fsnotify.Event{Name: "winmgr.json", Op: fsnotify.Write}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldReload(path, "winmgr.json", tt.ev); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "winmgr.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan struct{}, 10)
	w, err := NewWatcher(path, 50*time.Millisecond, quietLogger(), func() { changed <- struct{}{} })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"margin": 4}`), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a change notification")
	}
	select {
	case <-changed:
		t.Fatalf("expected writes to be coalesced")
	case <-time.After(200 * time.Millisecond):
	}
}

//go:build !windows

package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/winmgr/internal/daemon"
	"github.com/1broseidon/winmgr/internal/geometry"
)

type stubController struct {
	mu        sync.Mutex
	reloadErr error
	applied   []geometry.Layout
}

func (s *stubController) failReload(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadErr = err
}

func (s *stubController) appliedAt(i int) geometry.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied[i]
}

func (s *stubController) Reload(context.Context) (daemon.ReloadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reloadErr != nil {
		return daemon.ReloadResult{}, s.reloadErr
	}
	return daemon.ReloadResult{Registered: 2, Failures: []string{"Alt+Right -> RightHalf: taken"}}, nil
}

func (s *stubController) Apply(_ context.Context, layout geometry.Layout) (geometry.Rect, error) {
	s.mu.Lock()
	s.applied = append(s.applied, layout)
	s.mu.Unlock()
	if layout.Preset == geometry.CenterLarge {
		return geometry.Rect{}, errors.New("no foreground window")
	}
	return geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}, nil
}

func (s *stubController) Status() daemon.Status {
	return daemon.Status{State: "idle", Backend: "fake", Registered: 2, Dispatched: 7}
}

func (s *stubController) Bindings() []daemon.Binding {
	return []daemon.Binding{{ID: 1, Combo: "Alt+Left", Modifiers: "0x1", Key: "0x25", Layout: "LeftHalf"}}
}

func startServer(t *testing.T, ctrl Controller) *Client {
	t.Helper()
	endpoint := filepath.Join(t.TempDir(), "w.sock")
	srv, err := NewServer(ctrl, endpoint, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientFor(endpoint)
}

func TestServer_StatusAndKeybinds(t *testing.T) {
	client := startServer(t, &stubController{})

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.State != "idle" || status.Registered != 2 || status.Dispatched != 7 {
		t.Fatalf("unexpected status %+v", status)
	}

	binds, err := client.ListKeybinds()
	if err != nil {
		t.Fatalf("ListKeybinds: %v", err)
	}
	if len(binds) != 1 || binds[0].Combo != "Alt+Left" {
		t.Fatalf("unexpected bindings %+v", binds)
	}

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestServer_Reload(t *testing.T) {
	ctrl := &stubController{}
	client := startServer(t, ctrl)

	res, err := client.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if res.Registered != 2 || len(res.Failures) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	ctrl.failReload(errors.New("line 3: bad layout"))
	if _, err := client.Reload(); err == nil || !strings.Contains(err.Error(), "bad layout") {
		t.Fatalf("expected reload error to reach the client, got %v", err)
	}
}

func TestServer_ApplyLayout(t *testing.T) {
	ctrl := &stubController{}
	client := startServer(t, ctrl)

	data, err := client.ApplyLayout(geometry.PresetLayout(geometry.LeftHalf))
	if err != nil {
		t.Fatalf("ApplyLayout: %v", err)
	}
	if data.Layout != "LeftHalf" || data.Rect != (geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Fatalf("unexpected data %+v", data)
	}

	custom := geometry.CustomLayout(geometry.Rect{X: 10, Y: 20, Width: 300, Height: 400})
	if _, err := client.ApplyLayout(custom); err != nil {
		t.Fatalf("ApplyLayout custom: %v", err)
	}
	if got := ctrl.appliedAt(1); !got.IsCustom() || got.Custom != custom.Custom {
		t.Fatalf("expected custom layout to round-trip, got %v", got)
	}

	if _, err := client.ApplyLayout(geometry.PresetLayout(geometry.CenterLarge)); err == nil {
		t.Fatalf("expected apply failure to reach the client")
	}
}

func TestServer_RejectsBadRequests(t *testing.T) {
	client := startServer(t, &stubController{})

	if err := client.call("SHUTDOWN_EVERYTHING", nil, nil); err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if err := client.call(CommandApplyLayout, ApplyLayoutPayload{Preset: "Diagonal"}, nil); err == nil {
		t.Fatalf("expected unknown layout error")
	}
	if err := client.call(CommandApplyLayout, ApplyLayoutPayload{}, nil); err == nil {
		t.Fatalf("expected missing layout error")
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientFor(filepath.Join(t.TempDir(), "missing.sock"))
	err := client.Ping()
	if err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_SecondInstanceDoesNotTakeOverSocket(t *testing.T) {
	endpoint := filepath.Join(t.TempDir(), "w.sock")
	first, err := NewServer(&stubController{}, endpoint, quietLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := first.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := NewServer(&stubController{}, endpoint, quietLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := second.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	second.Stop()

	if _, err := os.Stat(endpoint); err != nil {
		t.Fatalf("expected socket to survive the failed start: %v", err)
	}
	if err := NewClientFor(endpoint).Ping(); err != nil {
		t.Fatalf("expected first daemon to stay reachable, got %v", err)
	}
}

func TestServer_ReplacesStaleSocket(t *testing.T) {
	endpoint := filepath.Join(t.TempDir(), "w.sock")
	stale, err := net.ListenUnix("unix", &net.UnixAddr{Name: endpoint, Net: "unix"})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	stale.SetUnlinkOnClose(false)
	stale.Close()
	if _, err := os.Stat(endpoint); err != nil {
		t.Fatalf("expected stale socket file: %v", err)
	}

	srv, err := NewServer(&stubController{}, endpoint, quietLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("expected stale socket to be replaced, got %v", err)
	}
	t.Cleanup(srv.Stop)
	if err := NewClientFor(endpoint).Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

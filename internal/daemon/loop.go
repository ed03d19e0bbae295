// Package daemon runs the dispatch loop that turns fired hotkeys into window
// moves.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/winmgr/internal/config"
	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/hotkeys"
	"github.com/1broseidon/winmgr/internal/platform"
)

// State is the dispatch loop's current phase.
type State int32

const (
	Idle State = iota
	Dispatching
	Reloading
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dispatching:
		return "dispatching"
	case Reloading:
		return "reloading"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

var (
	ErrNotRunning    = errors.New("dispatch loop is not running")
	ErrBackendClosed = errors.New("hotkey event source closed")
)

// Options configures a Loop.
type Options struct {
	Logger *slog.Logger
	// Initial is the configuration registered at start. When nil, Load is
	// called instead.
	Initial *config.Config
	// Load builds a fresh configuration for each reload.
	Load func() (*config.Config, error)
	// ConfigPath is reported in Status only.
	ConfigPath string
}

// ReloadResult summarizes one reload.
type ReloadResult struct {
	Registered int      `json:"registered"`
	Failures   []string `json:"failures,omitempty"`
}

type reloadRequest struct {
	reply chan reloadReply
}

type reloadReply struct {
	result ReloadResult
	err    error
}

type applyRequest struct {
	layout geometry.Layout
	reply  chan applyReply
}

type applyReply struct {
	rect geometry.Rect
	err  error
}

// Loop is the dispatch loop. Run owns the registry and the current
// configuration; other goroutines reach it only through Reload, Apply and
// the Status snapshot.
type Loop struct {
	backend    platform.Backend
	registry   *hotkeys.Registry
	logger     *slog.Logger
	load       func() (*config.Config, error)
	initial    *config.Config
	configPath string

	cfg *config.Config

	reloads chan reloadRequest
	applies chan applyRequest
	done    chan struct{}
	running atomic.Bool
	state   atomic.Int32

	mu     sync.RWMutex
	status Status
	binds  []Binding
}

// New creates a loop over backend. registry must be built on the same backend.
func New(backend platform.Backend, registry *hotkeys.Registry, opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		backend:    backend,
		registry:   registry,
		logger:     logger,
		load:       opts.Load,
		initial:    opts.Initial,
		configPath: opts.ConfigPath,
		reloads:    make(chan reloadRequest),
		applies:    make(chan applyRequest),
		done:       make(chan struct{}),
	}
	l.state.Store(int32(Stopped))
	l.status = Status{State: Stopped.String(), Backend: backend.Name(), ConfigPath: opts.ConfigPath}
	return l
}

// Run registers the initial configuration and serves hotkey events until ctx
// is cancelled or the backend closes its event channel. Every registration is
// released before Run returns.
func (l *Loop) Run(ctx context.Context) (err error) {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("dispatch loop already started")
	}
	defer close(l.done)

	cfg := l.initial
	if cfg == nil {
		if l.load == nil {
			return errors.New("no configuration source")
		}
		if cfg, err = l.load(); err != nil {
			l.setState(Stopped)
			return fmt.Errorf("load configuration: %w", err)
		}
	}

	l.mu.Lock()
	l.status.StartedAt = time.Now()
	l.mu.Unlock()

	defer func() {
		if uerr := l.registry.UnregisterAll(); uerr != nil {
			l.logger.Warn("failed to unregister hotkeys on shutdown", "error", uerr)
		}
		l.publishBindings()
		l.setState(Stopped)
		l.logger.Info("dispatch loop stopped")
	}()

	l.setState(Reloading)
	l.install(cfg)
	l.setState(Idle)
	l.logger.Info("dispatch loop started", "backend", l.backend.Name(), "hotkeys", l.registry.Len())

	events := l.backend.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-l.reloads:
			res, rerr := l.reload()
			req.reply <- reloadReply{result: res, err: rerr}
		case req := <-l.applies:
			rect, aerr := l.applyRequested(req.layout)
			req.reply <- applyReply{rect: rect, err: aerr}
		case id, ok := <-events:
			if !ok {
				return ErrBackendClosed
			}
			l.dispatch(id)
		}
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// State returns the loop's current phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
	l.mu.Lock()
	l.status.State = s.String()
	l.mu.Unlock()
}

// install swaps the registry over to cfg. Partial registration is logged and
// reported but leaves the successful hotkeys live.
func (l *Loop) install(cfg *config.Config) ReloadResult {
	l.cfg = cfg
	added, err := l.registry.Reload(cfg)

	res := ReloadResult{Registered: len(added)}
	var regErr *hotkeys.RegistrationError
	if errors.As(err, &regErr) {
		for _, f := range regErr.Failures {
			res.Failures = append(res.Failures, f.Error())
		}
		l.logger.Warn("configuration partially registered",
			"registered", regErr.Registered, "failed", len(regErr.Failures))
	}

	l.mu.Lock()
	l.status.Margin = cfg.Margin
	l.status.Failures = res.Failures
	l.status.LastReload = time.Now()
	l.mu.Unlock()
	l.publishBindings()
	return res
}

func (l *Loop) reload() (ReloadResult, error) {
	l.setState(Reloading)
	defer l.setState(Idle)

	if l.load == nil {
		return ReloadResult{}, errors.New("reload is not configured")
	}
	cfg, err := l.load()
	if err != nil {
		// Keep the current hotkeys; a broken edit must not disable everything.
		l.logger.Error("reload failed, keeping previous configuration", "error", err)
		l.mu.Lock()
		l.status.LastError = err.Error()
		l.mu.Unlock()
		return ReloadResult{}, err
	}

	res := l.install(cfg)
	l.mu.Lock()
	l.status.Reloads++
	l.status.LastError = ""
	l.mu.Unlock()
	l.logger.Info("configuration reloaded", "hotkeys", res.Registered, "failures", len(res.Failures))
	return res, nil
}

// dispatch handles one fired hotkey. Nothing here is fatal to the loop.
func (l *Loop) dispatch(id platform.HotkeyID) {
	l.setState(Dispatching)
	defer l.setState(Idle)
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch panic recovered", "hotkey_id", id, "error", r)
			l.count(func(s *Status) { s.Failed++ })
		}
	}()

	layout, ok := l.registry.Lookup(id)
	if !ok {
		l.logger.Debug("dropping event for unknown hotkey", "hotkey_id", id)
		l.count(func(s *Status) { s.Dropped++ })
		return
	}

	rect, err := l.applyLayout(layout)
	switch {
	case err == nil:
		l.logger.Debug("window moved", "layout", layout.String(), "rect", rect.String())
		l.count(func(s *Status) { s.Dispatched++ })
	case errors.Is(err, platform.ErrNoForegroundWindow), errors.Is(err, platform.ErrProtectedWindow):
		l.logger.Debug("no movable foreground window", "layout", layout.String(), "reason", err)
		l.count(func(s *Status) { s.Dropped++ })
	default:
		l.logger.Warn("failed to apply layout", "layout", layout.String(), "error", err)
		l.count(func(s *Status) { s.Failed++ })
	}
}

func (l *Loop) applyRequested(layout geometry.Layout) (geometry.Rect, error) {
	l.setState(Dispatching)
	defer l.setState(Idle)
	rect, err := l.applyLayout(layout)
	if err == nil {
		l.count(func(s *Status) { s.Dispatched++ })
	}
	return rect, err
}

// applyLayout resolves layout against the foreground window's monitor and
// moves the window there. The work area is queried fresh every time.
func (l *Loop) applyLayout(layout geometry.Layout) (geometry.Rect, error) {
	win, err := l.backend.ForegroundWindow()
	if err != nil {
		return geometry.Rect{}, err
	}
	area, err := l.backend.WorkArea(win)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("work area for window %d: %w", win, err)
	}

	margin := 0
	if l.cfg != nil {
		margin = l.cfg.Margin
	}
	res, err := geometry.Resolve(layout, area, margin)
	if err != nil {
		return geometry.Rect{}, err
	}
	if res.Clamped {
		l.logger.Warn("margin leaves no room for layout, clamped to 1px",
			"layout", layout.String(), "margin", margin,
			"width", res.Rect.Width, "height", res.Rect.Height)
	}

	if err := l.backend.MoveResize(win, res.Rect); err != nil {
		return geometry.Rect{}, fmt.Errorf("move window %d to %s: %w", win, res.Rect, err)
	}
	return res.Rect, nil
}

// Reload asks the running loop to load and register a fresh configuration.
// It is applied between events, never during a dispatch.
func (l *Loop) Reload(ctx context.Context) (ReloadResult, error) {
	req := reloadRequest{reply: make(chan reloadReply, 1)}
	if err := l.send(ctx, func() bool {
		select {
		case l.reloads <- req:
			return true
		case <-ctx.Done():
		case <-l.done:
		}
		return false
	}); err != nil {
		return ReloadResult{}, err
	}
	select {
	case rep := <-req.reply:
		return rep.result, rep.err
	case <-ctx.Done():
		return ReloadResult{}, ctx.Err()
	}
}

// Apply moves the current foreground window to layout through the loop, as if
// a hotkey bound to it had fired.
func (l *Loop) Apply(ctx context.Context, layout geometry.Layout) (geometry.Rect, error) {
	req := applyRequest{layout: layout, reply: make(chan applyReply, 1)}
	if err := l.send(ctx, func() bool {
		select {
		case l.applies <- req:
			return true
		case <-ctx.Done():
		case <-l.done:
		}
		return false
	}); err != nil {
		return geometry.Rect{}, err
	}
	select {
	case rep := <-req.reply:
		return rep.rect, rep.err
	case <-ctx.Done():
		return geometry.Rect{}, ctx.Err()
	}
}

func (l *Loop) send(ctx context.Context, try func() bool) error {
	if !l.running.Load() {
		return ErrNotRunning
	}
	if try() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrNotRunning
}

func (l *Loop) count(fn func(*Status)) {
	l.mu.Lock()
	fn(&l.status)
	l.mu.Unlock()
}

func (l *Loop) publishBindings() {
	regs := l.registry.Bindings()
	binds := make([]Binding, len(regs))
	for i, r := range regs {
		binds[i] = BindingFor(r)
	}
	l.mu.Lock()
	l.binds = binds
	l.status.Registered = len(binds)
	l.mu.Unlock()
}

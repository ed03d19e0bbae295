package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winmgr/internal/daemon"
	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/hotkeys"
	"github.com/1broseidon/winmgr/internal/ipc"
)

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	presets := geometry.Presets()
	layouts := make([]LayoutInfo, len(presets))
	for i, p := range presets {
		layouts[i] = LayoutInfo{Name: string(p), Description: p.Describe()}
	}
	return nil, ListLayoutsOutput{Layouts: layouts}, nil
}

func (s *Server) handleListKeybinds(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListKeybindsInput) (*mcpsdk.CallToolResult, ListKeybindsOutput, error) {
	if binds, err := s.daemon.ListKeybinds(); err == nil {
		out := ListKeybindsOutput{Source: "daemon", Keybinds: binds}
		if status, err := s.daemon.GetStatus(); err == nil {
			out.Margin = status.Margin
		}
		return nil, out, nil
	}

	if s.loadConfig == nil {
		return nil, ListKeybindsOutput{}, fmt.Errorf("daemon is not running and no config is available")
	}
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, ListKeybindsOutput{}, fmt.Errorf("daemon is not running and config could not be read: %w", err)
	}

	// Not registered, so no hotkey IDs.
	binds := make([]daemon.Binding, len(cfg.Keybinds))
	for i, kb := range cfg.Keybinds {
		binds[i] = daemon.BindingFor(hotkeys.Registration{Keybind: kb})
	}
	return nil, ListKeybindsOutput{Source: "config", Margin: cfg.Margin, Keybinds: binds}, nil
}

func (s *Server) handleResolveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args ResolveLayoutInput) (*mcpsdk.CallToolResult, ResolveLayoutOutput, error) {
	layout, err := ipc.ApplyLayoutPayload{Preset: args.Layout, Rect: args.Rect}.Layout()
	if err != nil {
		return nil, ResolveLayoutOutput{}, err
	}
	if args.Area.Width <= 0 || args.Area.Height <= 0 {
		return nil, ResolveLayoutOutput{}, fmt.Errorf("area must have a positive width and height")
	}
	if args.Margin < 0 || args.Margin > geometry.MaxMargin {
		return nil, ResolveLayoutOutput{}, fmt.Errorf("margin must be between 0 and %d", geometry.MaxMargin)
	}

	res, err := geometry.Resolve(layout, args.Area, args.Margin)
	if err != nil {
		return nil, ResolveLayoutOutput{}, err
	}
	return nil, ResolveLayoutOutput{Layout: layout.String(), Rect: res.Rect, Clamped: res.Clamped}, nil
}

func (s *Server) handleApplyLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args ApplyLayoutInput) (*mcpsdk.CallToolResult, ApplyLayoutOutput, error) {
	layout, err := ipc.ApplyLayoutPayload{Preset: args.Layout, Rect: args.Rect}.Layout()
	if err != nil {
		return nil, ApplyLayoutOutput{}, err
	}
	data, err := s.daemon.ApplyLayout(layout)
	if err != nil {
		return nil, ApplyLayoutOutput{}, err
	}
	return nil, ApplyLayoutOutput{Layout: data.Layout, Rect: data.Rect}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, ReloadConfigOutput, error) {
	res, err := s.daemon.Reload()
	if err != nil {
		return nil, ReloadConfigOutput{}, err
	}
	return nil, ReloadConfigOutput{Registered: res.Registered, Failures: res.Failures}, nil
}

func (s *Server) handleDaemonStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ DaemonStatusInput) (*mcpsdk.CallToolResult, DaemonStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, DaemonStatusOutput{Running: false, Error: err.Error()}, nil
	}
	return nil, DaemonStatusOutput{Running: true, Status: statusInfo(status)}, nil
}

func statusInfo(s *daemon.Status) *StatusInfo {
	stamp := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}
	return &StatusInfo{
		State:      s.State,
		Backend:    s.Backend,
		ConfigPath: s.ConfigPath,
		StartedAt:  stamp(s.StartedAt),
		Uptime:     s.Uptime,
		Margin:     s.Margin,
		Registered: s.Registered,
		Failures:   s.Failures,
		Dispatched: s.Dispatched,
		Dropped:    s.Dropped,
		Failed:     s.Failed,
		Reloads:    s.Reloads,
		LastReload: stamp(s.LastReload),
		LastError:  s.LastError,
	}
}

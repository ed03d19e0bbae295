package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winmgr/internal/config"
	"github.com/1broseidon/winmgr/internal/daemon"
	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/ipc"
)

const (
	ServerName    = "winmgr"
	ServerVersion = "0.1.0"
)

// Daemon is the control surface of a running winmgr daemon. *ipc.Client
// implements it.
type Daemon interface {
	Reload() (*daemon.ReloadResult, error)
	GetStatus() (*daemon.Status, error)
	ListKeybinds() ([]daemon.Binding, error)
	ApplyLayout(layout geometry.Layout) (*ipc.AppliedData, error)
}

// Server is the MCP server exposing window layouts to agents.
type Server struct {
	mcpServer  *mcpsdk.Server
	daemon     Daemon
	loadConfig func() (*config.Config, error)
}

// NewServer creates an MCP server that talks to d and falls back to
// loadConfig for read-only tools when the daemon is unreachable.
func NewServer(d Daemon, loadConfig func() (*config.Config, error)) *Server {
	s := &Server{
		daemon:     d,
		loadConfig: loadConfig,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List the built-in window layout presets with a short description of the area each one covers.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_keybinds",
		Description: "List the configured hotkeys and the layout each one applies. Reports live registrations when the daemon is running, otherwise the keybinds in the config file.",
	}, s.handleListKeybinds)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resolve_layout",
		Description: "Compute the rectangle a layout would produce for a given work area and margin without moving any window.",
	}, s.handleResolveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_layout",
		Description: "Move and resize the currently focused window to a preset or custom layout on its monitor. Requires the daemon to be running.",
	}, s.handleApplyLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Ask the daemon to re-read winmgr.json and re-register its hotkeys. An invalid file leaves the current hotkeys active and returns the parse error.",
	}, s.handleReloadConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "daemon_status",
		Description: "Report whether the winmgr daemon is running, with its state, hotkey count and dispatch counters.",
	}, s.handleDaemonStatus)
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/winmgr/internal/autostart"
	"github.com/1broseidon/winmgr/internal/config"
	"github.com/1broseidon/winmgr/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		os.Exit(runDaemon(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "install":
		os.Exit(runInstall(os.Args[2:]))
	case "uninstall":
		os.Exit(runUninstall(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "apply":
		os.Exit(runApply(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winmgr [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Register hotkeys and serve them (default)")
	fmt.Fprintln(w, "  install             Start winmgr at login")
	fmt.Fprintln(w, "  uninstall           Remove the login entry")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the configuration in the running daemon")
	fmt.Fprintln(w, "  apply <layout>      Move the foreground window to a layout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout list         List built-in layouts")
	fmt.Fprintln(w, "  layout resolve      Compute a layout rectangle offline")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winmgr <command> --help' for command-specific options.")
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func runInstall(args []string) int {
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winmgr install")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Register this executable to run at login.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "install takes no arguments")
		fs.Usage()
		return 2
	}

	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to find executable: %v\n", err)
		return 1
	}
	entry, err := autostart.Install(exe)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("installed: %s\n", entry.Location)
	fmt.Printf("command:   %s\n", entry.Command)
	return 0
}

func runUninstall(args []string) int {
	fs := flag.NewFlagSet("uninstall", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winmgr uninstall")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Remove the login entry created by 'winmgr install'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "uninstall takes no arguments")
		fs.Usage()
		return 2
	}

	if err := autostart.Uninstall(); err != nil {
		if errors.Is(err, autostart.ErrNotInstalled) {
			fmt.Println("not installed")
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("uninstalled")
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winmgr reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Re-read the configuration file and re-register hotkeys.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := ipc.NewClient().Reload()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("registered: %d\n", res.Registered)
	for _, f := range res.Failures {
		fmt.Printf("failed:     %s\n", f)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winmgr status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status and live hotkeys via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	binds, err := client.ListKeybinds()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		return printJSON(struct {
			Status   any `json:"status"`
			Keybinds any `json:"keybinds"`
		}{status, binds})
	}

	fmt.Printf("state:       %s\n", status.State)
	fmt.Printf("backend:     %s\n", status.Backend)
	if status.ConfigPath != "" {
		fmt.Printf("config:      %s\n", status.ConfigPath)
	}
	fmt.Printf("uptime:      %s\n", status.Uptime)
	fmt.Printf("margin:      %d\n", status.Margin)
	fmt.Printf("registered:  %d\n", status.Registered)
	fmt.Printf("dispatched:  %d\n", status.Dispatched)
	fmt.Printf("dropped:     %d\n", status.Dropped)
	fmt.Printf("failed:      %d\n", status.Failed)
	fmt.Printf("reloads:     %d\n", status.Reloads)
	if status.LastError != "" {
		fmt.Printf("last_error:  %s\n", status.LastError)
	}
	for _, f := range status.Failures {
		fmt.Printf("unregistered: %s\n", f)
	}
	if len(binds) > 0 {
		fmt.Println("")
		for _, b := range binds {
			fmt.Printf("  %-24s %s\n", b.Combo, b.Layout)
		}
	}
	return 0
}

func runApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winmgr apply <layout>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move the foreground window to a preset (e.g. LeftHalf) or to an")
		fmt.Fprintln(os.Stderr, "absolute rectangle given as x,y,w,h.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "apply requires exactly one layout")
		fs.Usage()
		return 2
	}

	layout, err := parseLayoutArg(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	applied, err := ipc.NewClient().ApplyLayout(layout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s -> %s\n", applied.Layout, applied.Rect)
	return 0
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/1broseidon/winmgr/internal/config"
	"github.com/1broseidon/winmgr/internal/daemon"
	"github.com/1broseidon/winmgr/internal/hotkeys"
	"github.com/1broseidon/winmgr/internal/ipc"
	"github.com/1broseidon/winmgr/internal/platform"
	"github.com/1broseidon/winmgr/internal/runtimepath"
	"golang.org/x/term"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: $WINMGR_CONFIG or ~/winmgr.json)")
	debug := fs.Bool("debug", false, "Log every dispatched hotkey")
	noWatch := fs.Bool("no-watch", false, "Do not reload when the config file changes")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winmgr run [--config PATH] [--debug] [--no-watch]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Register the configured hotkeys and move the foreground window")
		fmt.Fprintln(os.Stderr, "when one fires. Runs in the foreground until interrupted.")
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
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	logger, closeLog := newLogger(*debug)
	defer closeLog()

	res, err := loadConfig(*path)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return 1
	}
	if res.Created {
		if res.WriteErr != nil {
			logger.Warn("no config file, using defaults; could not write them", "path", res.Path, "error", res.WriteErr)
		} else {
			logger.Info("wrote default configuration", "path", res.Path)
		}
	}
	logger.Info("configuration loaded", "path", res.Path, "keybinds", len(res.Config.Keybinds), "margin", res.Config.Margin)

	backend, err := platform.New(logger)
	if err != nil {
		logger.Error("failed to open window system", "error", err)
		return 1
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close backend", "error", err)
		}
	}()

	configPath := res.Path
	loop := daemon.New(backend, hotkeys.NewRegistry(backend, logger), daemon.Options{
		Logger:     logger,
		Initial:    res.Config,
		Load:       reloadConfig(configPath),
		ConfigPath: configPath,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ipcServer, err := ipc.NewServer(loop, "", logger)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			logger.Error("another winmgr is already running", "endpoint", ipcServer.Endpoint())
			return 1
		}
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	reload := func(reason string) {
		rctx, rcancel := context.WithTimeout(ctx, 5*time.Second)
		defer rcancel()
		if _, err := loop.Reload(rctx); err != nil && !errors.Is(err, daemon.ErrNotRunning) {
			logger.Warn("reload failed", "trigger", reason, "error", err)
		}
	}

	if !*noWatch {
		watcher, err := daemon.NewWatcher(configPath, daemon.DefaultDebounce, logger, func() { reload("file") })
		if err != nil {
			logger.Warn("config watching disabled", "error", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, append(shutdownSignals, reloadSignals...)...)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if isReloadSignal(sig) {
					logger.Info("received signal, reloading", "signal", sig.String())
					reload("signal")
					continue
				}
				logger.Info("received signal, shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()

	if err := loop.Run(ctx); err != nil {
		logger.Error("dispatch loop exited", "error", err)
		return 1
	}
	return 0
}

// reloadConfig reads path for a running daemon. Unlike startup it never
// writes a default: a deleted file keeps the current hotkeys.
func reloadConfig(path string) func() (*config.Config, error) {
	return func() (*config.Config, error) {
		cfg, err := config.ReadFromPath(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s is missing, keeping current hotkeys: %w", path, err)
		}
		return cfg, err
	}
}

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// newLogger logs to stderr. When stderr is not a terminal (autostart has no
// console) records also go to the runtime log file.
func newLogger(debug bool) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		if f, err := openLogFile(); err == nil {
			w = io.MultiWriter(os.Stderr, f)
			closeFn = func() { f.Close() }
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}

func openLogFile() (*os.File, error) {
	p, err := runtimepath.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

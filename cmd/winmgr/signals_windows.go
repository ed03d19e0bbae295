//go:build windows

package main

import "os"

// Windows has no SIGHUP; use 'winmgr reload' or edit the config file.
var reloadSignals []os.Signal

func isReloadSignal(os.Signal) bool { return false }

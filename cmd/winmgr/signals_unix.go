//go:build !windows

package main

import (
	"os"
	"syscall"
)

var reloadSignals = []os.Signal{syscall.SIGHUP}

func isReloadSignal(sig os.Signal) bool {
	return sig == syscall.SIGHUP
}

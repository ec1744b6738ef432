//go:build windows

package util

import (
	"os"
)

// ShutdownSignals returns the signals to listen for graceful shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// GracefulSignal attempts graceful process termination.
// On Windows, playback sinks are shut down by closing their stdin instead.
func GracefulSignal(p *os.Process) error {
	return nil
}

// Package playback streams PCM audio files to per-channel playback
// subprocesses and reports block-level magnitudes while doing so.
package playback

import (
	"errors"
	"io"

	"github.com/oszuidwest/zwfm-player/internal/util"
)

// Sentinel errors for playback operations.
var (
	// ErrNoPlaybackDevice is returned when no audio output device is available.
	ErrNoPlaybackDevice = errors.New("no audio playback device found")
	// ErrAlreadyPlaying is returned when starting a channel that is playing.
	ErrAlreadyPlaying = errors.New("channel already playing")
	// ErrNotPlaying is returned when pausing or stopping an idle channel.
	ErrNotPlaying = errors.New("channel not playing")
)

// Sink consumes raw PCM audio. Write blocks while the downstream device
// buffer is full, which paces the read loop.
type Sink interface {
	io.Writer
	Close() error
}

// SinkFactory opens a sink for the configured playback device.
type SinkFactory func(device string) (Sink, error)

// PlaybackConfig defines platform-specific audio playback configuration.
type PlaybackConfig struct {
	// Command is the executable name (e.g., "aplay", "ffplay").
	Command string

	// DefaultDevice is used when no device is configured.
	DefaultDevice string

	// UsesFFplay indicates if this platform plays through FFplay.
	UsesFFplay bool

	// BuildArgs returns the command arguments for audio playback.
	// The device parameter is the audio output device identifier.
	BuildArgs func(device string) []string
}

// ResolveBinary returns the resolved path of the platform playback binary,
// or an empty string when it is not installed. The ffplayPath overrides the
// PATH search on platforms that play through FFplay.
func ResolveBinary(ffplayPath string) string {
	cfg := getPlatformConfig()
	if cfg.UsesFFplay {
		return util.ResolveBinary("ffplay", ffplayPath)
	}
	return util.ResolveBinary(cfg.Command, "")
}

// BuildPlaybackCommand returns the command and arguments for audio playback.
// If device is empty, it attempts to use the default or auto-detect.
// The ffplayPath parameter is used on platforms that play through FFplay.
func BuildPlaybackCommand(device, ffplayPath string) (cmd string, args []string, err error) {
	cfg := getPlatformConfig()

	if device == "" {
		device = cfg.DefaultDevice
	}

	if device == "" {
		devices := Devices()
		if len(devices) == 0 {
			return "", nil, ErrNoPlaybackDevice
		}
		device = devices[0].ID
	}

	command := cfg.Command
	if cfg.UsesFFplay && ffplayPath != "" {
		command = ffplayPath
	}

	return command, cfg.BuildArgs(device), nil
}

//go:build darwin

package playback

import (
	"fmt"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

func getPlatformConfig() PlaybackConfig {
	return PlaybackConfig{
		Command:       "ffplay",
		DefaultDevice: "default",
		UsesFFplay:    true,
		BuildArgs:     buildFFplayArgs,
	}
}

func buildFFplayArgs(_ string) []string {
	return []string{
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", types.SampleRate),
		"-ac", fmt.Sprintf("%d", types.Channels),
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-i", "pipe:0",
	}
}

func (cfg *PlaybackConfig) Devices() []types.AudioDevice {
	// CoreAudio output selection is not exposed through FFplay; the system
	// default output is always used.
	return []types.AudioDevice{
		{ID: "default", Name: "System default output"},
	}
}

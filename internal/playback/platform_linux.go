//go:build linux

package playback

import (
	"fmt"
	"regexp"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

func getPlatformConfig() PlaybackConfig {
	return PlaybackConfig{
		Command:       "aplay",
		DefaultDevice: "default",
		BuildArgs:     buildLinuxArgs,
	}
}

func buildLinuxArgs(device string) []string {
	return []string{
		"-D", device,
		"-f", "S16_LE",
		"-r", fmt.Sprintf("%d", types.SampleRate),
		"-c", fmt.Sprintf("%d", types.Channels),
		"-t", "raw",
		"-q",
		"-",
	}
}

func (cfg *PlaybackConfig) Devices() []types.AudioDevice {
	return parseDeviceList(DeviceListConfig{
		Command:       []string{"aplay", "-l"},
		DevicePattern: regexp.MustCompile(`card\s+(\d+):\s+(\w+)\s+\[([^\]]+)\]`),
		ParseDevice: func(matches []string) *types.AudioDevice {
			if len(matches) < 4 {
				return nil
			}
			return &types.AudioDevice{
				ID:   "default:CARD=" + matches[2],
				Name: matches[3],
			}
		},
		FallbackDevices: []types.AudioDevice{
			{ID: "default", Name: "Default ALSA output"},
		},
	})
}

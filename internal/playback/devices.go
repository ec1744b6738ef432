package playback

import (
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

// Devices returns available audio playback devices for the current platform.
func Devices() []types.AudioDevice {
	cfg := getPlatformConfig()
	return cfg.Devices()
}

// DeviceListConfig defines how to list audio devices for a platform.
type DeviceListConfig struct {
	// Command and args to list devices.
	Command []string

	// DevicePattern is the regex to extract device info.
	DevicePattern *regexp.Regexp

	// ParseDevice converts regex matches to a device.
	ParseDevice func(matches []string) *types.AudioDevice

	// FallbackDevices are returned if detection fails.
	FallbackDevices []types.AudioDevice
}

// parseDeviceList parses command output to extract audio device information.
//
//nolint:gocritic // hugeParam: 96 bytes is acceptable, no performance impact
func parseDeviceList(cfg DeviceListConfig) []types.AudioDevice {
	if len(cfg.Command) == 0 {
		return cfg.FallbackDevices
	}

	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil && len(output) == 0 {
		slog.Error("failed to list playback devices", "error", err)
		return cfg.FallbackDevices
	}

	var devices []types.AudioDevice
	for _, line := range strings.Split(string(output), "\n") {
		if cfg.DevicePattern == nil {
			continue
		}
		matches := cfg.DevicePattern.FindStringSubmatch(line)
		if len(matches) > 0 && cfg.ParseDevice != nil {
			if dev := cfg.ParseDevice(matches); dev != nil {
				devices = append(devices, *dev)
			}
		}
	}

	if len(devices) == 0 {
		return cfg.FallbackDevices
	}

	return devices
}

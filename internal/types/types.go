// Package types provides shared type definitions used across the player.
package types

import (
	"time"
)

// PlayerState represents the current state of the player session.
type PlayerState string

const (
	// StateStopped indicates no playback session is active.
	StateStopped PlayerState = "stopped"
	// StateStarting indicates the session is initializing.
	StateStarting PlayerState = "starting"
	// StatePlaying indicates at least one channel is playing.
	StatePlaying PlayerState = "playing"
	// StatePaused indicates playback is paused on all channels.
	StatePaused PlayerState = "paused"
	// StateStopping indicates the session is shutting down.
	StateStopping PlayerState = "stopping"
)

// ChannelState represents the state of a single playback channel.
type ChannelState string

const (
	// ChannelStopped indicates the channel is not playing.
	ChannelStopped ChannelState = "stopped"
	// ChannelPlaying indicates the channel is actively playing.
	ChannelPlaying ChannelState = "playing"
	// ChannelPaused indicates the channel is paused.
	ChannelPaused ChannelState = "paused"
	// ChannelFinished indicates the channel reached end of file.
	ChannelFinished ChannelState = "finished"
	// ChannelError indicates the channel failed.
	ChannelError ChannelState = "error"
)

const (
	// ShutdownTimeout is the duration to wait for graceful shutdown.
	ShutdownTimeout = 3000 * time.Millisecond
	// PollInterval is the interval for polling process state.
	PollInterval = 50 * time.Millisecond
)

// Audio format constants for the PCM playback pipeline.
const (
	// SampleRate is the audio sample rate in Hz.
	SampleRate = 44100
	// Channels is the number of audio channels (stereo).
	Channels = 2
	// BytesPerSecond is the PCM byte rate (SampleRate * Channels * 2 bytes).
	BytesPerSecond = SampleRate * Channels * 2
	// WAVHeaderSize is the canonical RIFF/WAVE header size skipped on .wav input.
	WAVHeaderSize = 44
	// BlockSize is the size of PCM blocks read from the input file.
	BlockSize = 40 * 1024
)

// DefaultTickMs is the default monitor window length in milliseconds.
const DefaultTickMs int64 = 2000

// ChannelInfo describes one loaded playback channel.
type ChannelInfo struct {
	Index    int          `json:"index"`              // Zero-based channel index
	Path     string       `json:"path"`               // Source file path
	Name     string       `json:"name"`               // Display name (file base name)
	State    ChannelState `json:"state"`              // Current channel state
	Error    string       `json:"error,omitempty"`    // Last error message
	Underrun bool         `json:"underrun,omitempty"` // Buffer underrun observed
}

// ChannelLevel is the per-channel level readout for one monitor window.
type ChannelLevel struct {
	Index    int     `json:"index"`              // Zero-based channel index
	Average  float64 `json:"average"`            // Mean absolute magnitude this window
	PeakHold float64 `json:"peak_hold"`          // Held peak magnitude
	Label    string  `json:"label"`              // Formatted magnitude/dB label
	Dominant bool    `json:"dominant,omitempty"` // True for the loudest channel
}

// DominantReport is produced once per monitor window.
type DominantReport struct {
	Index    int            `json:"index"`          // Dominant channel index, -1 if none
	Label    string         `json:"label,omitzero"` // "select N" display string
	Levels   []ChannelLevel `json:"levels"`         // Per-channel readouts
	Windowed bool           `json:"windowed"`       // True when any channel had observations
	Quiet    bool           `json:"quiet,omitzero"` // True while all-quiet state is active
	QuietMs  int64          `json:"quiet_ms,omitzero"`
}

// PlayerStatus contains a summary of the player's operational state.
type PlayerStatus struct {
	State        PlayerState   `json:"state"`               // Current player state
	Uptime       string        `json:"uptime,omitzero"`     // Time since start
	LastError    string        `json:"last_error,omitzero"` // Most recent error
	Channels     []ChannelInfo `json:"channels"`            // Loaded channels
	ActiveCount  int           `json:"active_count"`        // Channels currently playing
	Monitoring   bool          `json:"monitoring"`          // Monitor ticker running
	TickMs       int64         `json:"tick_ms"`             // Monitor window length
	LastDominant int           `json:"last_dominant"`       // Most recent dominant index, -1 if none
}

// WSStatusResponse is sent to clients with full player status.
type WSStatusResponse struct {
	Type            string        `json:"type"`               // Message type identifier
	PlayerAvailable bool          `json:"player_available"`   // Playback binary found
	Player          PlayerStatus  `json:"player"`             // Player status
	Devices         []AudioDevice `json:"devices"`            // Available playback devices
	QuietThreshold  float64       `json:"quiet_threshold"`    // All-quiet threshold in dB
	QuietDurationMs int64         `json:"quiet_duration_ms"`  // Quiet duration before alert
	QuietRecoveryMs int64         `json:"quiet_recovery_ms"`  // Signal duration before recovery
	QuietWebhook    string        `json:"quiet_webhook"`      // Webhook URL for alerts
	QuietLogPath    string        `json:"quiet_log_path"`     // Alert log file path
	GraphTenantID   string        `json:"graph_tenant_id"`    // Azure AD tenant ID
	GraphClientID   string        `json:"graph_client_id"`    // App registration client ID
	GraphFrom       string        `json:"graph_from_address"` // Shared mailbox address
	GraphRecipients string        `json:"graph_recipients"`   // Comma-separated recipients

	GraphSecretExpiry SecretExpiryInfo `json:"graph_secret_expiry"` // Client secret expiration info

	ZabbixServer string `json:"zabbix_server,omitempty"` // Zabbix server address
	ZabbixPort   int    `json:"zabbix_port,omitempty"`   // Zabbix trapper port
	ZabbixHost   string `json:"zabbix_host,omitempty"`   // Zabbix host name
	ZabbixKey    string `json:"zabbix_key,omitempty"`    // Zabbix item key

	Archive  ArchiveInfo `json:"archive"`  // Event log archive settings
	Settings WSSettings  `json:"settings"` // Current settings
	Version  VersionInfo `json:"version"`  // Version information
}

// WSSettings contains the settings sub-object in status responses.
type WSSettings struct {
	Device   string `json:"device"`   // Selected playback device
	TickMs   int64  `json:"tick_ms"`  // Monitor window length in milliseconds
	Platform string `json:"platform"` // Operating system platform
}

// ArchiveInfo mirrors the event log archive configuration for the frontend.
type ArchiveInfo struct {
	Enabled       bool   `json:"enabled"`        // Archive uploads active
	Bucket        string `json:"bucket"`         // S3 bucket name
	Endpoint      string `json:"endpoint"`       // Custom S3 endpoint
	RetentionDays int    `json:"retention_days"` // Days to keep archived logs
}

// WSLevelsResponse is sent to clients once per monitor window.
type WSLevelsResponse struct {
	Type   string         `json:"type"`   // Message type identifier
	Report DominantReport `json:"report"` // Window report
}

// WSTestResult is sent to clients after a test operation completes.
type WSTestResult struct {
	Type     string `json:"type"`            // Message type identifier
	TestType string `json:"test_type"`       // Type of test performed
	Success  bool   `json:"success"`         // Test succeeded
	Error    string `json:"error,omitempty"` // Error message if failed
}

// AudioDevice represents an available audio playback device.
type AudioDevice struct {
	ID   string `json:"id"`   // Device identifier
	Name string `json:"name"` // Device display name
}

// GraphConfig contains Microsoft Graph API settings for email notifications.
type GraphConfig struct {
	TenantID     string `json:"tenant_id,omitempty"`     // Azure AD tenant ID
	ClientID     string `json:"client_id,omitempty"`     // App registration client ID
	ClientSecret string `json:"client_secret,omitempty"` // App registration client secret
	FromAddress  string `json:"from_address,omitempty"`  // Shared mailbox address (sender)
	Recipients   string `json:"recipients,omitempty"`    // Comma-separated recipients
}

// SecretExpiryInfo contains client secret expiration data.
type SecretExpiryInfo struct {
	ExpiresAt   string `json:"expires_at,omitempty"`   // RFC3339 expiration timestamp
	ExpiresSoon bool   `json:"expires_soon,omitempty"` // True if expires within 30 days
	DaysLeft    int    `json:"days_left,omitempty"`    // Days until expiration
	Error       string `json:"error,omitempty"`        // Error message if check failed
}

// VersionInfo contains version comparison data.
type VersionInfo struct {
	Current     string `json:"current"`              // Current version
	Latest      string `json:"latest,omitempty"`     // Latest available version
	UpdateAvail bool   `json:"update_available"`     // Update is available
	Commit      string `json:"commit,omitempty"`     // Git commit hash
	BuildTime   string `json:"build_time,omitempty"` // Build timestamp
}

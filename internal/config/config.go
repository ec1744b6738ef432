// Package config provides application configuration management.
package config

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oszuidwest/zwfm-player/internal/types"
	"github.com/oszuidwest/zwfm-player/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultWebPort         = 8080
	DefaultWebUsername     = "admin"
	DefaultWebPassword     = "player"
	DefaultQuietThreshold  = -40.0
	DefaultQuietDurationMs = 15000 // 15 seconds in milliseconds
	DefaultQuietRecoveryMs = 5000  // 5 seconds in milliseconds
	DefaultEventLogPath    = "player-events.log"
	DefaultRetentionDays   = 30
	DefaultZabbixPort      = 10051
	MinTickMs              = 100
	MaxTickMs              = 60000
)

// SystemConfig holds system-level settings that require restart.
type SystemConfig struct {
	FFplayPath string `json:"ffplay_path"` // Path to FFplay binary (empty = use PATH)
	Port       int    `json:"port"`        // HTTP server port
	Username   string `json:"username"`    // Login username
	Password   string `json:"password"`    // Login password
}

// PlaybackConfig holds audio output device settings.
type PlaybackConfig struct {
	Device string `json:"device"` // Audio output device identifier
}

// MonitorConfig holds level monitoring settings.
type MonitorConfig struct {
	TickMs int64 `json:"tick_ms"` // Averaging window length in milliseconds
}

// QuietDetectionConfig holds all-quiet detection thresholds and timing.
type QuietDetectionConfig struct {
	ThresholdDB float64 `json:"threshold_db"` // Quiet threshold in dB
	DurationMs  int64   `json:"duration_ms"`  // Duration below threshold before alert
	RecoveryMs  int64   `json:"recovery_ms"`  // Duration above threshold before recovery
}

// WebhookConfig holds webhook notification settings.
type WebhookConfig struct {
	URL string `json:"url"` // Webhook URL for quiet alerts
}

// LogConfig holds log file notification settings.
type LogConfig struct {
	Path string `json:"path"` // Log file path for quiet events
}

// EmailConfig holds Microsoft Graph email notification settings.
type EmailConfig struct {
	TenantID     string `json:"tenant_id"`     // Azure AD tenant ID
	ClientID     string `json:"client_id"`     // App registration client ID
	ClientSecret string `json:"client_secret"` // App registration client secret
	FromAddress  string `json:"from_address"`  // Shared mailbox sender address
	Recipients   string `json:"recipients"`    // Comma-separated recipient addresses
}

// ZabbixConfig holds Zabbix trapper notification settings.
type ZabbixConfig struct {
	Server string `json:"server"` // Zabbix server address
	Port   int    `json:"port"`   // Zabbix trapper port
	Host   string `json:"host"`   // Host name as registered in Zabbix
	Key    string `json:"key"`    // Trapper item key
}

// NotificationsConfig holds all notification channel settings.
type NotificationsConfig struct {
	Webhook WebhookConfig `json:"webhook"` // Webhook settings
	Log     LogConfig     `json:"log"`     // Log file settings
	Email   EmailConfig   `json:"email"`   // Email settings
	Zabbix  ZabbixConfig  `json:"zabbix"`  // Zabbix settings
}

// EventLogConfig holds session event log settings.
type EventLogConfig struct {
	Path string `json:"path"` // Event log file path
}

// ArchiveConfig holds S3 archive settings for event logs.
type ArchiveConfig struct {
	Enabled       bool   `json:"enabled"`        // Archive uploads active
	Endpoint      string `json:"endpoint"`       // Custom S3 endpoint (empty = AWS)
	Region        string `json:"region"`         // S3 region
	Bucket        string `json:"bucket"`         // S3 bucket name
	AccessKey     string `json:"access_key"`     // S3 access key
	SecretKey     string `json:"secret_key"`     // S3 secret key
	Prefix        string `json:"prefix"`         // Object key prefix
	RetentionDays int    `json:"retention_days"` // Days to keep archived logs
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	System         SystemConfig         `json:"system"`
	Playback       PlaybackConfig       `json:"playback"`
	Monitor        MonitorConfig        `json:"monitor"`
	QuietDetection QuietDetectionConfig `json:"quiet_detection"`
	Notifications  NotificationsConfig  `json:"notifications"`
	EventLog       EventLogConfig       `json:"event_log"`
	Archive        ArchiveConfig        `json:"archive"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		System: SystemConfig{
			Port:     DefaultWebPort,
			Username: DefaultWebUsername,
			Password: DefaultWebPassword,
		},
		Playback:       PlaybackConfig{},
		Monitor:        MonitorConfig{TickMs: types.DefaultTickMs},
		QuietDetection: QuietDetectionConfig{},
		Notifications:  NotificationsConfig{},
		EventLog:       EventLogConfig{Path: DefaultEventLogPath},
		Archive:        ArchiveConfig{RetentionDays: DefaultRetentionDays},
		filePath:       filePath,
	}
}

// Load reads config from file, creating a default if none exists.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()

	if err := c.validate(); err != nil {
		return err
	}

	return nil
}

// validate checks all configuration fields for correctness.
func (c *Config) validate() error {
	if c.Monitor.TickMs < MinTickMs || c.Monitor.TickMs > MaxTickMs {
		return fmt.Errorf("invalid tick_ms %d: must be %d-%d", c.Monitor.TickMs, MinTickMs, MaxTickMs)
	}
	if t := c.QuietDetection.ThresholdDB; t > 0 || t < -100 {
		return fmt.Errorf("invalid threshold_db %.1f: must be -100 to 0", t)
	}
	if c.Archive.RetentionDays < 0 {
		return fmt.Errorf("invalid retention_days %d: must not be negative", c.Archive.RetentionDays)
	}
	if p := c.Notifications.Zabbix.Port; p < 0 || p > 65535 {
		return fmt.Errorf("invalid zabbix port %d: must be 0-65535", p)
	}
	return nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	// System defaults
	if c.System.Port == 0 {
		c.System.Port = DefaultWebPort
	}
	if c.System.Username == "" {
		c.System.Username = DefaultWebUsername
	}
	if c.System.Password == "" {
		c.System.Password = DefaultWebPassword
	}
	// Monitor defaults
	if c.Monitor.TickMs == 0 {
		c.Monitor.TickMs = types.DefaultTickMs
	}
	// Event log defaults
	if c.EventLog.Path == "" {
		c.EventLog.Path = DefaultEventLogPath
	}
	// Archive defaults
	if c.Archive.RetentionDays == 0 {
		c.Archive.RetentionDays = DefaultRetentionDays
	}
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// --- Getters for individual settings ---

// Device returns the configured playback device.
func (c *Config) Device() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Playback.Device
}

// TickMs returns the configured monitor window length in milliseconds.
func (c *Config) TickMs() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cmp.Or(c.Monitor.TickMs, types.DefaultTickMs)
}

// GetFFplayPath returns the configured FFplay binary path.
func (c *Config) GetFFplayPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.System.FFplayPath
}

// LogPath returns the configured log file path for notifications.
func (c *Config) LogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications.Log.Path
}

// EventLogPath returns the configured session event log path.
func (c *Config) EventLogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cmp.Or(c.EventLog.Path, DefaultEventLogPath)
}

// GraphConfig returns a copy of the current Graph/Email configuration.
func (c *Config) GraphConfig() types.GraphConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return types.GraphConfig{
		TenantID:     c.Notifications.Email.TenantID,
		ClientID:     c.Notifications.Email.ClientID,
		ClientSecret: c.Notifications.Email.ClientSecret,
		FromAddress:  c.Notifications.Email.FromAddress,
		Recipients:   c.Notifications.Email.Recipients,
	}
}

// --- Setters for individual settings ---

// SetDevice updates the playback device and saves the configuration.
func (c *Config) SetDevice(device string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Playback.Device = device
	return c.saveLocked()
}

// SetTickMs updates the monitor window length and saves the configuration.
func (c *Config) SetTickMs(ms int64) error {
	if ms < MinTickMs || ms > MaxTickMs {
		return fmt.Errorf("invalid tick_ms %d: must be %d-%d", ms, MinTickMs, MaxTickMs)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Monitor.TickMs = ms
	return c.saveLocked()
}

// SetQuietThreshold updates the quiet detection threshold and saves the configuration.
func (c *Config) SetQuietThreshold(threshold float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QuietDetection.ThresholdDB = threshold
	return c.saveLocked()
}

// SetQuietDurationMs updates the quiet duration and saves the configuration.
func (c *Config) SetQuietDurationMs(ms int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QuietDetection.DurationMs = ms
	return c.saveLocked()
}

// SetQuietRecoveryMs updates the quiet recovery time and saves the configuration.
func (c *Config) SetQuietRecoveryMs(ms int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QuietDetection.RecoveryMs = ms
	return c.saveLocked()
}

// SetWebhookURL updates the webhook URL and saves the configuration.
func (c *Config) SetWebhookURL(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Webhook.URL = url
	return c.saveLocked()
}

// SetLogPath updates the log file path and saves the configuration.
func (c *Config) SetLogPath(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Log.Path = path
	return c.saveLocked()
}

// SetZabbixConfig updates the Zabbix trapper settings and saves the configuration.
func (c *Config) SetZabbixConfig(server string, port int, host, key string) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid zabbix port %d: must be 0-65535", port)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Zabbix = ZabbixConfig{Server: server, Port: port, Host: host, Key: key}
	return c.saveLocked()
}

// SetGraphConfig updates all Microsoft Graph/Email configuration fields and saves.
func (c *Config) SetGraphConfig(tenantID, clientID, clientSecret, fromAddress, recipients string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Email.TenantID = tenantID
	c.Notifications.Email.ClientID = clientID
	c.Notifications.Email.ClientSecret = clientSecret
	c.Notifications.Email.FromAddress = fromAddress
	c.Notifications.Email.Recipients = recipients
	return c.saveLocked()
}

// SetArchive updates the event log archive settings and saves the configuration.
func (c *Config) SetArchive(archive ArchiveConfig) error {
	if archive.RetentionDays < 0 {
		return fmt.Errorf("invalid retention_days %d: must not be negative", archive.RetentionDays)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if archive.RetentionDays == 0 {
		archive.RetentionDays = DefaultRetentionDays
	}
	c.Archive = archive
	return c.saveLocked()
}

// --- Snapshot for atomic reads ---

// Snapshot is a point-in-time copy of configuration values.
type Snapshot struct {
	// System
	WebPort     int
	WebUser     string
	WebPassword string
	FFplayPath  string

	// Playback
	Device string

	// Monitor
	TickMs int64

	// Quiet Detection
	QuietThreshold  float64
	QuietDurationMs int64
	QuietRecoveryMs int64

	// Notifications
	WebhookURL        string
	LogPath           string
	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	GraphFromAddress  string
	GraphRecipients   string
	ZabbixServer      string
	ZabbixPort        int
	ZabbixHost        string
	ZabbixKey         string

	// Event log
	EventLogPath string

	// Archive
	ArchiveEnabled       bool
	ArchiveEndpoint      string
	ArchiveRegion        string
	ArchiveBucket        string
	ArchiveAccessKey     string
	ArchiveSecretKey     string
	ArchivePrefix        string
	ArchiveRetentionDays int
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		// System
		WebPort:     c.System.Port,
		WebUser:     c.System.Username,
		WebPassword: c.System.Password,
		FFplayPath:  c.System.FFplayPath,

		// Playback
		Device: c.Playback.Device,

		// Monitor (with defaults)
		TickMs: cmp.Or(c.Monitor.TickMs, types.DefaultTickMs),

		// Quiet Detection (with defaults)
		QuietThreshold:  cmp.Or(c.QuietDetection.ThresholdDB, DefaultQuietThreshold),
		QuietDurationMs: cmp.Or(c.QuietDetection.DurationMs, DefaultQuietDurationMs),
		QuietRecoveryMs: cmp.Or(c.QuietDetection.RecoveryMs, DefaultQuietRecoveryMs),

		// Notifications
		WebhookURL:        c.Notifications.Webhook.URL,
		LogPath:           c.Notifications.Log.Path,
		GraphTenantID:     c.Notifications.Email.TenantID,
		GraphClientID:     c.Notifications.Email.ClientID,
		GraphClientSecret: c.Notifications.Email.ClientSecret,
		GraphFromAddress:  c.Notifications.Email.FromAddress,
		GraphRecipients:   c.Notifications.Email.Recipients,
		ZabbixServer:      c.Notifications.Zabbix.Server,
		ZabbixPort:        cmp.Or(c.Notifications.Zabbix.Port, DefaultZabbixPort),
		ZabbixHost:        c.Notifications.Zabbix.Host,
		ZabbixKey:         c.Notifications.Zabbix.Key,

		// Event log
		EventLogPath: cmp.Or(c.EventLog.Path, DefaultEventLogPath),

		// Archive
		ArchiveEnabled:       c.Archive.Enabled,
		ArchiveEndpoint:      c.Archive.Endpoint,
		ArchiveRegion:        c.Archive.Region,
		ArchiveBucket:        c.Archive.Bucket,
		ArchiveAccessKey:     c.Archive.AccessKey,
		ArchiveSecretKey:     c.Archive.SecretKey,
		ArchivePrefix:        c.Archive.Prefix,
		ArchiveRetentionDays: cmp.Or(c.Archive.RetentionDays, DefaultRetentionDays),
	}
}

// HasWebhook reports whether a webhook URL is configured.
func (s Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasGraph reports whether Microsoft Graph email notifications are configured.
func (s Snapshot) HasGraph() bool {
	return s.GraphTenantID != "" && s.GraphClientID != "" && s.GraphClientSecret != "" &&
		s.GraphFromAddress != "" && s.GraphRecipients != ""
}

// HasZabbix reports whether a Zabbix trapper target is configured.
func (s Snapshot) HasZabbix() bool {
	return s.ZabbixServer != "" && s.ZabbixHost != "" && s.ZabbixKey != ""
}

// HasLogPath reports whether a log path is configured.
func (s Snapshot) HasLogPath() bool {
	return s.LogPath != ""
}

// HasArchive reports whether S3 archiving is enabled and fully configured.
func (s Snapshot) HasArchive() bool {
	return s.ArchiveEnabled && s.ArchiveBucket != "" &&
		s.ArchiveAccessKey != "" && s.ArchiveSecretKey != ""
}

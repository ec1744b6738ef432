package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := New(filepath.Join(t.TempDir(), "config.json"))
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return cfg
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := New(path)

	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not created: %v", err)
	}

	snap := cfg.Snapshot()
	if snap.WebPort != DefaultWebPort {
		t.Errorf("WebPort = %d, want %d", snap.WebPort, DefaultWebPort)
	}
	if snap.TickMs != types.DefaultTickMs {
		t.Errorf("TickMs = %d, want %d", snap.TickMs, types.DefaultTickMs)
	}
	if snap.QuietThreshold != DefaultQuietThreshold {
		t.Errorf("QuietThreshold = %v, want %v", snap.QuietThreshold, DefaultQuietThreshold)
	}
	if snap.QuietDurationMs != DefaultQuietDurationMs {
		t.Errorf("QuietDurationMs = %d, want %d", snap.QuietDurationMs, DefaultQuietDurationMs)
	}
	if snap.EventLogPath != DefaultEventLogPath {
		t.Errorf("EventLogPath = %q, want %q", snap.EventLogPath, DefaultEventLogPath)
	}
	if snap.ArchiveRetentionDays != DefaultRetentionDays {
		t.Errorf("ArchiveRetentionDays = %d, want %d", snap.ArchiveRetentionDays, DefaultRetentionDays)
	}
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"system": {"port": 9090},
		"monitor": {"tick_ms": 500},
		"quiet_detection": {"threshold_db": -35, "duration_ms": 10000}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	snap := cfg.Snapshot()
	if snap.WebPort != 9090 {
		t.Errorf("WebPort = %d, want 9090", snap.WebPort)
	}
	if snap.TickMs != 500 {
		t.Errorf("TickMs = %d, want 500", snap.TickMs)
	}
	if snap.QuietThreshold != -35 {
		t.Errorf("QuietThreshold = %v, want -35", snap.QuietThreshold)
	}
	// Unset fields fall back to defaults.
	if snap.WebUser != DefaultWebUsername {
		t.Errorf("WebUser = %q, want %q", snap.WebUser, DefaultWebUsername)
	}
	if snap.QuietRecoveryMs != DefaultQuietRecoveryMs {
		t.Errorf("QuietRecoveryMs = %d, want %d", snap.QuietRecoveryMs, DefaultQuietRecoveryMs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"tick too small", `{"monitor": {"tick_ms": 50}}`},
		{"tick too large", `{"monitor": {"tick_ms": 120000}}`},
		{"threshold positive", `{"quiet_detection": {"threshold_db": 5}}`},
		{"threshold too low", `{"quiet_detection": {"threshold_db": -150}}`},
		{"negative retention", `{"archive": {"retention_days": -1}}`},
		{"malformed json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg := New(path)
			if err := cfg.Load(); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestSetTickMsValidatesRange(t *testing.T) {
	cfg := newTestConfig(t)

	if err := cfg.SetTickMs(MinTickMs - 1); err == nil {
		t.Error("SetTickMs below minimum succeeded, want error")
	}
	if err := cfg.SetTickMs(MaxTickMs + 1); err == nil {
		t.Error("SetTickMs above maximum succeeded, want error")
	}
	if err := cfg.SetTickMs(250); err != nil {
		t.Errorf("SetTickMs(250) error: %v", err)
	}
	if got := cfg.TickMs(); got != 250 {
		t.Errorf("TickMs() = %d, want 250", got)
	}
}

func TestSettersPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if err := cfg.SetDevice("default:CARD=USB"); err != nil {
		t.Fatalf("SetDevice() error: %v", err)
	}
	if err := cfg.SetWebhookURL("https://example.com/hook"); err != nil {
		t.Fatalf("SetWebhookURL() error: %v", err)
	}
	if err := cfg.SetQuietThreshold(-30); err != nil {
		t.Fatalf("SetQuietThreshold() error: %v", err)
	}

	// A fresh Config reading the same file sees the changes.
	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload error: %v", err)
	}
	snap := reloaded.Snapshot()
	if snap.Device != "default:CARD=USB" {
		t.Errorf("Device = %q, want %q", snap.Device, "default:CARD=USB")
	}
	if snap.WebhookURL != "https://example.com/hook" {
		t.Errorf("WebhookURL = %q", snap.WebhookURL)
	}
	if snap.QuietThreshold != -30 {
		t.Errorf("QuietThreshold = %v, want -30", snap.QuietThreshold)
	}
}

func TestSetArchive(t *testing.T) {
	cfg := newTestConfig(t)

	err := cfg.SetArchive(ArchiveConfig{
		Enabled:       true,
		Bucket:        "logs",
		AccessKey:     "AK",
		SecretKey:     "SK",
		RetentionDays: 7,
	})
	if err != nil {
		t.Fatalf("SetArchive() error: %v", err)
	}

	snap := cfg.Snapshot()
	if !snap.HasArchive() {
		t.Error("HasArchive() = false after configuring archive")
	}
	if snap.ArchiveRetentionDays != 7 {
		t.Errorf("ArchiveRetentionDays = %d, want 7", snap.ArchiveRetentionDays)
	}
}

func TestHasHelpers(t *testing.T) {
	cfg := newTestConfig(t)
	snap := cfg.Snapshot()

	if snap.HasWebhook() {
		t.Error("HasWebhook() = true on defaults")
	}
	if snap.HasGraph() {
		t.Error("HasGraph() = true on defaults")
	}
	if snap.HasLogPath() {
		t.Error("HasLogPath() = true on defaults")
	}
	if snap.HasArchive() {
		t.Error("HasArchive() = true on defaults")
	}

	if err := cfg.SetGraphConfig("tenant", "client", "secret", "from@example.com", "to@example.com"); err != nil {
		t.Fatalf("SetGraphConfig() error: %v", err)
	}
	if !cfg.Snapshot().HasGraph() {
		t.Error("HasGraph() = false after SetGraphConfig")
	}
}

func TestSetZabbixConfig(t *testing.T) {
	cfg := newTestConfig(t)

	if cfg.Snapshot().HasZabbix() {
		t.Error("HasZabbix() = true on defaults")
	}
	if got := cfg.Snapshot().ZabbixPort; got != DefaultZabbixPort {
		t.Errorf("default ZabbixPort = %d, want %d", got, DefaultZabbixPort)
	}

	if err := cfg.SetZabbixConfig("zabbix.example.com", 70000, "player01", "player.quiet"); err == nil {
		t.Error("SetZabbixConfig() with out-of-range port succeeded, want error")
	}

	if err := cfg.SetZabbixConfig("zabbix.example.com", 10051, "player01", "player.quiet"); err != nil {
		t.Fatalf("SetZabbixConfig() error: %v", err)
	}
	snap := cfg.Snapshot()
	if !snap.HasZabbix() {
		t.Error("HasZabbix() = false after SetZabbixConfig")
	}
	if snap.ZabbixServer != "zabbix.example.com" || snap.ZabbixHost != "player01" || snap.ZabbixKey != "player.quiet" {
		t.Errorf("zabbix snapshot = %q/%q/%q", snap.ZabbixServer, snap.ZabbixHost, snap.ZabbixKey)
	}
}

package notify

import (
	"fmt"
	"sync"

	"github.com/oszuidwest/zwfm-player/internal/audio"
	"github.com/oszuidwest/zwfm-player/internal/config"
	"github.com/oszuidwest/zwfm-player/internal/util"
)

// QuietNotifier manages notifications for all-quiet detection events.
type QuietNotifier struct {
	cfg *config.Config

	// mu protects the notification state fields below
	mu sync.Mutex

	// Track which notifications have been sent for the current quiet period
	webhookSent bool
	emailSent   bool
	logSent     bool
	zabbixSent  bool

	// Cached Graph client for email notifications
	graphClient *GraphClient
}

// NewQuietNotifier returns a QuietNotifier configured with the given config.
func NewQuietNotifier(cfg *config.Config) *QuietNotifier {
	return &QuietNotifier{cfg: cfg}
}

// InvalidateGraphClient clears the cached Graph client.
// Call this when Graph configuration changes.
func (n *QuietNotifier) InvalidateGraphClient() {
	n.mu.Lock()
	n.graphClient = nil
	n.mu.Unlock()
}

// getOrCreateGraphClient returns the cached Graph client, creating it if needed.
func (n *QuietNotifier) getOrCreateGraphClient(cfg *GraphConfig) (*GraphClient, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.graphClient != nil {
		return n.graphClient, nil
	}

	client, err := NewGraphClient(cfg)
	if err != nil {
		return nil, err
	}
	n.graphClient = client
	return client, nil
}

// HandleEvent processes a quiet event and triggers notifications.
func (n *QuietNotifier) HandleEvent(event audio.QuietEvent) {
	if event.JustEntered {
		n.handleQuietStart(event.LevelDB)
	}

	if event.JustRecovered {
		n.handleQuietEnd(event.TotalDurationMs, event.LevelDB)
	}
}

// handleQuietStart triggers notifications when all channels first go quiet.
func (n *QuietNotifier) handleQuietStart(levelDB float64) {
	cfg := n.cfg.Snapshot()

	n.trySend(&n.webhookSent, cfg.HasWebhook(), func() { n.sendQuietWebhook(cfg, levelDB) })
	n.trySend(&n.emailSent, cfg.HasGraph(), func() { n.sendQuietEmail(cfg, levelDB) })
	n.trySend(&n.logSent, cfg.HasLogPath(), func() { n.logQuietStart(cfg, levelDB) })
	n.trySend(&n.zabbixSent, cfg.HasZabbix(), func() { n.sendQuietZabbix(cfg, levelDB) })
}

// trySend sends a notification if the condition is met and not already sent.
func (n *QuietNotifier) trySend(sent *bool, condition bool, sender func()) {
	n.mu.Lock()
	shouldSend := !*sent && condition
	if shouldSend {
		*sent = true
	}
	n.mu.Unlock()
	if shouldSend {
		go sender()
	}
}

// handleQuietEnd triggers recovery notifications when the quiet period ends.
func (n *QuietNotifier) handleQuietEnd(totalDurationMs int64, levelDB float64) {
	cfg := n.cfg.Snapshot()

	// Only send recovery notifications if we sent the corresponding start notification
	n.mu.Lock()
	shouldSendWebhookRecovery := n.webhookSent
	shouldSendEmailRecovery := n.emailSent
	shouldSendLogRecovery := n.logSent
	shouldSendZabbixRecovery := n.zabbixSent
	// Reset notification state for the next quiet period
	n.webhookSent = false
	n.emailSent = false
	n.logSent = false
	n.zabbixSent = false
	n.mu.Unlock()

	if shouldSendWebhookRecovery {
		go n.sendRecoveryWebhook(cfg, totalDurationMs, levelDB)
	}

	if shouldSendEmailRecovery {
		go n.sendRecoveryEmail(cfg, totalDurationMs, levelDB)
	}

	if shouldSendLogRecovery {
		go n.logQuietEnd(cfg, totalDurationMs, levelDB)
	}

	if shouldSendZabbixRecovery {
		go n.sendRecoveryZabbix(cfg, totalDurationMs, levelDB)
	}
}

// Reset clears the notification state.
func (n *QuietNotifier) Reset() {
	n.mu.Lock()
	n.webhookSent = false
	n.emailSent = false
	n.logSent = false
	n.zabbixSent = false
	n.mu.Unlock()
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) sendQuietWebhook(cfg config.Snapshot, levelDB float64) {
	util.LogNotifyResult(
		func() error { return SendQuietWebhook(cfg.WebhookURL, levelDB, cfg.QuietThreshold) },
		"Quiet webhook",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) sendRecoveryWebhook(cfg config.Snapshot, durationMs int64, levelDB float64) {
	util.LogNotifyResult(
		func() error { return SendRecoveryWebhook(cfg.WebhookURL, durationMs, levelDB, cfg.QuietThreshold) },
		"Recovery webhook",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) sendQuietZabbix(cfg config.Snapshot, levelDB float64) {
	util.LogNotifyResult(
		func() error {
			return SendQuietZabbix(cfg.ZabbixServer, cfg.ZabbixPort, cfg.ZabbixHost, cfg.ZabbixKey,
				levelDB, cfg.QuietThreshold)
		},
		"Quiet zabbix",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) sendRecoveryZabbix(cfg config.Snapshot, durationMs int64, levelDB float64) {
	util.LogNotifyResult(
		func() error {
			return SendRecoveryZabbix(cfg.ZabbixServer, cfg.ZabbixPort, cfg.ZabbixHost, cfg.ZabbixKey,
				durationMs, levelDB, cfg.QuietThreshold)
		},
		"Recovery zabbix",
	)
}

// BuildGraphConfig creates a GraphConfig from the config snapshot.
//
//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func BuildGraphConfig(cfg config.Snapshot) *GraphConfig {
	return &GraphConfig{
		TenantID:     cfg.GraphTenantID,
		ClientID:     cfg.GraphClientID,
		ClientSecret: cfg.GraphClientSecret,
		FromAddress:  cfg.GraphFromAddress,
		Recipients:   cfg.GraphRecipients,
	}
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) sendQuietEmail(cfg config.Snapshot, levelDB float64) {
	graphCfg := BuildGraphConfig(cfg)
	util.LogNotifyResult(
		func() error { return n.sendQuietEmailWithClient(graphCfg, levelDB, cfg.QuietThreshold) },
		"Quiet email",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) sendRecoveryEmail(cfg config.Snapshot, durationMs int64, levelDB float64) {
	graphCfg := BuildGraphConfig(cfg)
	util.LogNotifyResult(
		func() error { return n.sendRecoveryEmailWithClient(graphCfg, durationMs, levelDB, cfg.QuietThreshold) },
		"Recovery email",
	)
}

// sendEmail handles the common email sending infrastructure.
func (n *QuietNotifier) sendEmail(cfg *GraphConfig, subject, body string) error {
	if !IsConfigured(cfg) {
		return nil
	}

	client, err := n.getOrCreateGraphClient(cfg)
	if err != nil {
		return util.WrapError("create Graph client", err)
	}

	recipients := ParseRecipients(cfg.Recipients)
	if len(recipients) == 0 {
		return fmt.Errorf("no valid recipients")
	}

	if err := client.SendMail(recipients, subject, body); err != nil {
		return util.WrapError("send email via Graph", err)
	}

	return nil
}

// sendQuietEmailWithClient sends a quiet alert email using the cached Graph client.
func (n *QuietNotifier) sendQuietEmailWithClient(cfg *GraphConfig, levelDB, threshold float64) error {
	subject := "[ALERT] All Channels Quiet - " + AppName
	body := fmt.Sprintf(
		"All playback channels went quiet on the audio player.\n\n"+
			"Level:     %.1f dB\n"+
			"Threshold: %.1f dB\n"+
			"Time:      %s\n\n"+
			"The quiet period is ongoing. Please check the loaded audio files.",
		levelDB, threshold, util.HumanTime(),
	)
	return n.sendEmail(cfg, subject, body)
}

// sendRecoveryEmailWithClient sends a recovery email using the cached Graph client.
func (n *QuietNotifier) sendRecoveryEmailWithClient(cfg *GraphConfig, durationMs int64, levelDB, threshold float64) error {
	subject := "[OK] Audio Recovered - " + AppName
	body := fmt.Sprintf(
		"Audio recovered on the player.\n\n"+
			"Level:        %.1f dB\n"+
			"Quiet lasted: %s\n"+
			"Threshold:    %.1f dB\n"+
			"Time:         %s",
		levelDB, util.FormatDuration(durationMs), threshold, util.HumanTime(),
	)
	return n.sendEmail(cfg, subject, body)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) logQuietStart(cfg config.Snapshot, levelDB float64) {
	util.LogNotifyResult(
		func() error { return LogQuietStart(cfg.LogPath, levelDB, cfg.QuietThreshold) },
		"Quiet log",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *QuietNotifier) logQuietEnd(cfg config.Snapshot, durationMs int64, levelDB float64) {
	util.LogNotifyResult(
		func() error { return LogQuietEnd(cfg.LogPath, durationMs, levelDB, cfg.QuietThreshold) },
		"Recovery log",
	)
}

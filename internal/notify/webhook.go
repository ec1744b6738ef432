package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-player/internal/util"
)

// WebhookPayload represents the data sent to webhook endpoints.
type WebhookPayload struct {
	Event           string  `json:"event"`
	QuietDurationMs int64   `json:"quiet_duration_ms,omitempty"`
	LevelDB         float64 `json:"level_db,omitempty"`
	Threshold       float64 `json:"threshold,omitempty"`
	Message         string  `json:"message,omitempty"`
	Timestamp       string  `json:"timestamp"`
}

// SendQuietWebhook notifies the configured webhook that all channels went quiet.
func SendQuietWebhook(webhookURL string, levelDB, threshold float64) error {
	return sendWebhook(webhookURL, &WebhookPayload{
		Event:     "quiet_detected",
		LevelDB:   levelDB,
		Threshold: threshold,
		Timestamp: timestampUTC(),
	})
}

// SendRecoveryWebhook notifies the configured webhook that audio recovered.
func SendRecoveryWebhook(webhookURL string, durationMs int64, levelDB, threshold float64) error {
	return sendWebhook(webhookURL, &WebhookPayload{
		Event:           "quiet_recovered",
		QuietDurationMs: durationMs,
		LevelDB:         levelDB,
		Threshold:       threshold,
		Timestamp:       timestampUTC(),
	})
}

// SendTestWebhook sends a test webhook notification.
func SendTestWebhook(webhookURL string) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	return sendWebhook(webhookURL, &WebhookPayload{
		Event:     "test",
		Message:   "This is a test notification from " + AppName,
		Timestamp: timestampUTC(),
	})
}

// sendWebhook delivers a notification to the configured webhook endpoint.
func sendWebhook(webhookURL string, payload *WebhookPayload) error {
	if !util.IsConfigured(webhookURL) {
		return nil // Silently skip if not configured
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	client := &http.Client{Timeout: 10000 * time.Millisecond}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendQuietWebhook(t *testing.T) {
	var received WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := SendQuietWebhook(srv.URL, -52.3, -40); err != nil {
		t.Fatalf("SendQuietWebhook() error: %v", err)
	}

	if received.Event != "quiet_detected" {
		t.Errorf("Event = %q, want quiet_detected", received.Event)
	}
	if received.LevelDB != -52.3 {
		t.Errorf("LevelDB = %v, want -52.3", received.LevelDB)
	}
	if received.Threshold != -40 {
		t.Errorf("Threshold = %v, want -40", received.Threshold)
	}
	if received.Timestamp == "" {
		t.Error("Timestamp is empty")
	}
}

func TestSendRecoveryWebhook(t *testing.T) {
	var received WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := SendRecoveryWebhook(srv.URL, 32000, -12.5, -40); err != nil {
		t.Fatalf("SendRecoveryWebhook() error: %v", err)
	}

	if received.Event != "quiet_recovered" {
		t.Errorf("Event = %q, want quiet_recovered", received.Event)
	}
	if received.QuietDurationMs != 32000 {
		t.Errorf("QuietDurationMs = %d, want 32000", received.QuietDurationMs)
	}
}

func TestSendWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := SendQuietWebhook(srv.URL, -50, -40); err == nil {
		t.Error("SendQuietWebhook() with 500 response succeeded, want error")
	}
}

func TestSendWebhookSkipsWhenUnconfigured(t *testing.T) {
	// An empty URL is a silent no-op for automatic notifications.
	if err := SendQuietWebhook("", -50, -40); err != nil {
		t.Errorf("SendQuietWebhook(\"\") error: %v", err)
	}

	// The explicit test action does report the missing configuration.
	if err := SendTestWebhook(""); err == nil {
		t.Error("SendTestWebhook(\"\") succeeded, want error")
	}
}

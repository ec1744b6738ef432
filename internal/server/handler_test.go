package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"valid quiet update", `{"threshold_db": -40, "duration_ms": 15000}`, true},
		{"empty body allowed", `{}`, true},
		{"threshold above zero", `{"threshold_db": 5}`, false},
		{"threshold below floor", `{"threshold_db": -150}`, false},
		{"duration too short", `{"duration_ms": 100}`, false},
		{"invalid json", `{`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send := make(chan any, 1)
			cmd := WSCommand{Type: "quiet/update", Data: json.RawMessage(tt.data)}

			var req QuietUpdateRequest
			got := DecodeAndValidate(cmd, send, &req)
			if got != tt.want {
				t.Errorf("DecodeAndValidate(%s) = %v, want %v", tt.data, got, tt.want)
			}

			// A rejected command always produces an error response.
			if !got {
				select {
				case msg := <-send:
					m, ok := msg.(map[string]any)
					if !ok {
						t.Fatalf("response type %T, want map", msg)
					}
					if m["success"] != false {
						t.Error("error response has success=true")
					}
				default:
					t.Error("no error response sent")
				}
			}
		})
	}
}

func TestDecodeAndValidatePlayerLoad(t *testing.T) {
	send := make(chan any, 1)

	var req PlayerLoadRequest
	data := json.RawMessage(`{"paths": ["/audio/a.wav", "/audio/b.wav"]}`)
	if !DecodeAndValidate(WSCommand{Type: "player/load", Data: data}, send, &req) {
		t.Fatal("valid load request rejected")
	}
	if len(req.Paths) != 2 {
		t.Errorf("Paths = %v, want 2 entries", req.Paths)
	}

	// Empty path entries are rejected by the dive validation.
	var bad PlayerLoadRequest
	data = json.RawMessage(`{"paths": ["/audio/a.wav", ""]}`)
	if DecodeAndValidate(WSCommand{Type: "player/load", Data: data}, send, &bad) {
		t.Error("load request with empty path accepted")
	}
}

func TestSendSuccessAndError(t *testing.T) {
	send := make(chan any, 2)

	SendSuccess(send, "player/start", nil)
	msg := (<-send).(map[string]any)
	if msg["type"] != "player/start_result" {
		t.Errorf("type = %v, want player/start_result", msg["type"])
	}
	if msg["success"] != true {
		t.Error("success = false, want true")
	}
	if _, hasData := msg["data"]; hasData {
		t.Error("nil data should be omitted")
	}

	SendError(send, "player/start", os.ErrPermission)
	msg = (<-send).(map[string]any)
	if msg["success"] != false {
		t.Error("success = true, want false")
	}
	if msg["error"] == "" {
		t.Error("error message is empty")
	}
}

func TestReadQuietLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.log")
	content := `{"timestamp":"2026-08-30T01:00:00Z","event":"quiet_start","threshold_db":-40}
garbage line
{"timestamp":"2026-08-30T01:05:00Z","event":"quiet_end","duration_ms":300000,"threshold_db":-40}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := readQuietLog(path, 10)
	if err != nil {
		t.Fatalf("readQuietLog() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (malformed line skipped)", len(entries))
	}
	// Newest first.
	if entries[0].Event != "quiet_end" {
		t.Errorf("entries[0].Event = %q, want quiet_end", entries[0].Event)
	}
	if entries[0].DurationMs != 300000 {
		t.Errorf("entries[0].DurationMs = %d, want 300000", entries[0].DurationMs)
	}
}

func TestReadQuietLogMissingFile(t *testing.T) {
	entries, err := readQuietLog(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("readQuietLog() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for missing file, want 0", len(entries))
	}
}

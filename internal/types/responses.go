package types

// WSConfigResponse is sent in response to config/get.
// Contains the full configuration without runtime state.
type WSConfigResponse struct {
	Type   string      `json:"type"` // "config"
	Config interface{} `json:"config"`
}

// WSCommandResult is the standard response for command execution.
// Used by slash-style commands (player/start, monitor/update, etc.)
type WSCommandResult struct {
	Type    string           `json:"type"`            // "<command>_result"
	Success bool             `json:"success"`         // true if command succeeded
	Error   *ValidationError `json:"error,omitempty"` // Validation errors if failed
	Data    interface{}      `json:"data,omitempty"`  // Optional response data
}

// WSQuietLogResult is sent in response to notifications/log/view.
type WSQuietLogResult struct {
	Type    string          `json:"type"` // "quiet_log_result"
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Path    string          `json:"path,omitempty"`
	Entries []QuietLogEntry `json:"entries,omitempty"`
}

// QuietLogEntry is one line in the quiet notification log file.
type QuietLogEntry struct {
	Timestamp   string  `json:"timestamp"`             // RFC3339 UTC timestamp
	Event       string  `json:"event"`                 // quiet_start, quiet_end or test
	DurationMs  int64   `json:"duration_ms,omitempty"` // Quiet period length (quiet_end only)
	LevelDB     float64 `json:"level_db,omitempty"`    // Loudest average at the event
	ThresholdDB float64 `json:"threshold_db"`          // Configured quiet threshold
}

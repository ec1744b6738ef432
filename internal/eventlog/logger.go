// Package eventlog writes player session events to a JSON lines file.
package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of session event.
type EventType string

const (
	SessionStarted  EventType = "session_started"
	SessionStopped  EventType = "session_stopped"
	ChannelStarted  EventType = "channel_started"
	ChannelFinished EventType = "channel_finished"
	ChannelStopped  EventType = "channel_stopped"
	ChannelUnderrun EventType = "channel_underrun"
	ChannelError    EventType = "channel_error"
	DominantChanged EventType = "dominant_changed"
	QuietStarted    EventType = "quiet_started"
	QuietEnded      EventType = "quiet_ended"
)

// SessionEvent represents a single player session event.
type SessionEvent struct {
	Timestamp time.Time `json:"ts"`
	Event     EventType `json:"event"`
	Channel   int       `json:"channel"`        // Channel index, -1 for session-wide events
	Name      string    `json:"name,omitempty"` // Channel display name
	Message   string    `json:"msg,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger writes session events to a JSON lines file.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
	encoder  *json.Encoder
}

// NewLogger creates a new event logger.
func NewLogger(filePath string) (*Logger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return &Logger{
		filePath: filePath,
		file:     file,
		encoder:  json.NewEncoder(file),
	}, nil
}

// Log writes an event to the log file.
func (l *Logger) Log(event *SessionEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return l.encoder.Encode(event)
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Path returns the path to the log file.
func (l *Logger) Path() string {
	return l.filePath
}

// ReadLast reads the last n events from the log file, newest first.
func ReadLast(filePath string, n int) ([]SessionEvent, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionEvent{}, nil
		}
		return nil, err
	}
	defer file.Close() //nolint:errcheck // Read-only operation, close error not critical

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	start := 0
	if len(lines) > n {
		start = len(lines) - n
	}
	lines = lines[start:]

	events := make([]SessionEvent, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		var event SessionEvent
		if err := json.Unmarshal([]byte(lines[i]), &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	return events, nil
}

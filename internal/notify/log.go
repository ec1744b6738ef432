package notify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oszuidwest/zwfm-player/internal/types"
	"github.com/oszuidwest/zwfm-player/internal/util"
)

// LogQuietStart records the beginning of an all-quiet period.
func LogQuietStart(logPath string, levelDB, threshold float64) error {
	return appendLogEntry(logPath, &types.QuietLogEntry{
		Timestamp:   timestampUTC(),
		Event:       "quiet_start",
		LevelDB:     levelDB,
		ThresholdDB: threshold,
	})
}

// LogQuietEnd records the end of an all-quiet period.
func LogQuietEnd(logPath string, durationMs int64, levelDB, threshold float64) error {
	return appendLogEntry(logPath, &types.QuietLogEntry{
		Timestamp:   timestampUTC(),
		Event:       "quiet_end",
		DurationMs:  durationMs,
		LevelDB:     levelDB,
		ThresholdDB: threshold,
	})
}

// WriteTestLog writes a test log entry.
func WriteTestLog(logPath string) error {
	if logPath == "" {
		return fmt.Errorf("log file path not configured")
	}

	return appendLogEntry(logPath, &types.QuietLogEntry{
		Timestamp: timestampUTC(),
		Event:     "test",
	})
}

// appendLogEntry appends a log entry to the file.
func appendLogEntry(logPath string, entry *types.QuietLogEntry) error {
	if !util.IsConfigured(logPath) {
		return nil
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return util.WrapError("marshal log entry", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return util.WrapError("open log file", err)
	}
	defer util.SafeCloseFunc(f, "log file")()

	if _, err := f.Write(jsonData); err != nil {
		return util.WrapError("write log entry", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return util.WrapError("write newline", err)
	}

	return nil
}

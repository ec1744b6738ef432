package audio

import (
	"sync"
	"time"
)

// QuietConfig holds the configurable thresholds for all-quiet detection.
type QuietConfig struct {
	Threshold  float64 // dB level below which the session is considered quiet
	DurationMs int64   // milliseconds of quiet before triggering
	RecoveryMs int64   // milliseconds of signal before considering recovered
}

// QuietEvent represents the result of a quiet detection update.
type QuietEvent struct {
	// Current state
	InQuiet    bool    // Currently in confirmed quiet state
	DurationMs int64   // Current quiet duration in ms (0 if not quiet)
	LevelDB    float64 // Loudest channel level in dB this window

	// State transitions (for triggering notifications)
	JustEntered     bool  // True on the window when quiet is first confirmed
	JustRecovered   bool  // True on the window when recovery completes
	TotalDurationMs int64 // Total quiet duration in ms (only set when JustRecovered)
}

// QuietDetector tracks whether every playing channel has gone quiet and
// generates detection events. It is safe for concurrent use.
type QuietDetector struct {
	mu              sync.Mutex
	quietStart      time.Time // when current quiet period started
	recoveryStart   time.Time // when signal returned after quiet
	inQuiet         bool      // currently in confirmed quiet state
	quietDurationMs int64     // tracks duration in ms for recovery reporting
}

// NewQuietDetector creates a new quiet detector.
func NewQuietDetector() *QuietDetector {
	return &QuietDetector{}
}

// Update feeds the loudest channel level of one window and returns the
// resulting state.
func (d *QuietDetector) Update(levelDB float64, cfg QuietConfig, now time.Time) QuietEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	isQuiet := levelDB < cfg.Threshold

	event := QuietEvent{LevelDB: levelDB}

	if isQuiet {
		d.recoveryStart = time.Time{}

		if d.quietStart.IsZero() {
			d.quietStart = now
		}

		quietDurationMs := now.Sub(d.quietStart).Milliseconds()
		d.quietDurationMs = quietDurationMs

		if d.inQuiet {
			event.InQuiet = true
			event.DurationMs = quietDurationMs
		} else if quietDurationMs >= cfg.DurationMs {
			// Just crossed the duration threshold - enter quiet state
			d.inQuiet = true
			event.InQuiet = true
			event.DurationMs = quietDurationMs
			event.JustEntered = true
		}
	} else {
		// Signal is above threshold - preserve quiet start during recovery.
		if !d.inQuiet {
			d.quietStart = time.Time{}
		}

		if d.inQuiet {
			if d.recoveryStart.IsZero() {
				d.recoveryStart = now
			}

			recoveryDurationMs := now.Sub(d.recoveryStart).Milliseconds()

			if recoveryDurationMs >= cfg.RecoveryMs {
				event.JustRecovered = true
				event.TotalDurationMs = d.quietDurationMs

				d.inQuiet = false
				d.quietDurationMs = 0
				d.quietStart = time.Time{}
				d.recoveryStart = time.Time{}
			} else {
				// Still in recovery period - remain in quiet state
				event.InQuiet = true
			}
		}
	}

	return event
}

// Reset clears the quiet detection state.
func (d *QuietDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quietStart = time.Time{}
	d.recoveryStart = time.Time{}
	d.inQuiet = false
	d.quietDurationMs = 0
}

package audio

import (
	"testing"
	"time"
)

var quietCfg = QuietConfig{
	Threshold:  -40,
	DurationMs: 1000,
	RecoveryMs: 500,
}

func TestQuietDetectorEntersAfterDuration(t *testing.T) {
	d := NewQuietDetector()
	base := time.Now()

	// First quiet window starts the clock but does not trigger.
	ev := d.Update(-50, quietCfg, base)
	if ev.InQuiet || ev.JustEntered {
		t.Errorf("first quiet window: InQuiet=%v JustEntered=%v, want false/false", ev.InQuiet, ev.JustEntered)
	}

	// Still below the configured duration.
	ev = d.Update(-50, quietCfg, base.Add(500*time.Millisecond))
	if ev.InQuiet {
		t.Error("InQuiet = true before duration elapsed")
	}

	// Crossing the duration threshold confirms quiet.
	ev = d.Update(-50, quietCfg, base.Add(1100*time.Millisecond))
	if !ev.InQuiet {
		t.Error("InQuiet = false after duration elapsed")
	}
	if !ev.JustEntered {
		t.Error("JustEntered = false on confirming window")
	}
	if ev.DurationMs != 1100 {
		t.Errorf("DurationMs = %d, want 1100", ev.DurationMs)
	}

	// Subsequent quiet windows stay in quiet without re-entering.
	ev = d.Update(-55, quietCfg, base.Add(1200*time.Millisecond))
	if !ev.InQuiet || ev.JustEntered {
		t.Errorf("continued quiet: InQuiet=%v JustEntered=%v, want true/false", ev.InQuiet, ev.JustEntered)
	}
}

func TestQuietDetectorRecovery(t *testing.T) {
	d := NewQuietDetector()
	base := time.Now()

	d.Update(-50, quietCfg, base)
	d.Update(-50, quietCfg, base.Add(1100*time.Millisecond))

	// Signal returns: recovery clock starts, state stays quiet.
	ev := d.Update(-10, quietCfg, base.Add(1200*time.Millisecond))
	if !ev.InQuiet || ev.JustRecovered {
		t.Errorf("recovery pending: InQuiet=%v JustRecovered=%v, want true/false", ev.InQuiet, ev.JustRecovered)
	}

	// Recovery duration elapsed: quiet ends.
	ev = d.Update(-10, quietCfg, base.Add(1800*time.Millisecond))
	if !ev.JustRecovered {
		t.Error("JustRecovered = false after recovery duration")
	}
	if ev.InQuiet {
		t.Error("InQuiet = true after recovery")
	}
	if ev.TotalDurationMs != 1100 {
		t.Errorf("TotalDurationMs = %d, want 1100", ev.TotalDurationMs)
	}
}

func TestQuietDetectorBlipDoesNotRecover(t *testing.T) {
	d := NewQuietDetector()
	base := time.Now()

	d.Update(-50, quietCfg, base)
	d.Update(-50, quietCfg, base.Add(1100*time.Millisecond))

	// Brief signal, then quiet again before RecoveryMs elapses.
	ev := d.Update(-10, quietCfg, base.Add(1200*time.Millisecond))
	if !ev.InQuiet {
		t.Error("InQuiet = false during short recovery blip")
	}
	ev = d.Update(-50, quietCfg, base.Add(1400*time.Millisecond))
	if !ev.InQuiet || ev.JustRecovered {
		t.Errorf("back to quiet: InQuiet=%v JustRecovered=%v, want true/false", ev.InQuiet, ev.JustRecovered)
	}
}

func TestQuietDetectorSignalResetsPendingQuiet(t *testing.T) {
	d := NewQuietDetector()
	base := time.Now()

	d.Update(-50, quietCfg, base)
	// Signal before the duration elapses clears the pending quiet clock.
	d.Update(-10, quietCfg, base.Add(500*time.Millisecond))

	ev := d.Update(-50, quietCfg, base.Add(600*time.Millisecond))
	if ev.InQuiet {
		t.Error("InQuiet = true, pending quiet should have been reset by signal")
	}

	// Needs the full duration again from the new start.
	ev = d.Update(-50, quietCfg, base.Add(1700*time.Millisecond))
	if !ev.JustEntered {
		t.Error("JustEntered = false after full duration from new quiet start")
	}
}

func TestQuietDetectorReset(t *testing.T) {
	d := NewQuietDetector()
	base := time.Now()

	d.Update(-50, quietCfg, base)
	d.Update(-50, quietCfg, base.Add(1100*time.Millisecond))
	d.Reset()

	ev := d.Update(-50, quietCfg, base.Add(1200*time.Millisecond))
	if ev.InQuiet {
		t.Error("InQuiet = true after Reset")
	}
}

package audio

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

// ErrAlreadyMonitoring is returned when starting a monitor that is running.
var ErrAlreadyMonitoring = errors.New("monitor already running")

// eventBuffer is the capacity of the level event queue. Producers never
// block; a full queue drops the observation and logs a warning.
const eventBuffer = 256

// levelEvent carries one magnitude observation for a channel. The channel
// index always travels with the event, so no reverse lookup of the sender
// is ever needed.
type levelEvent struct {
	channel   int
	magnitude float64
}

// MonitorConfig wires a Monitor to its collaborators.
type MonitorConfig struct {
	// TickInterval is the averaging window length.
	TickInterval time.Duration
	// ActiveCount reports how many channels are still playing. When a window
	// ends with zero active channels the monitor stops itself.
	ActiveCount func() int
	// OnReport receives the report produced at the end of every window.
	OnReport func(types.DominantReport)
	// QuietConfig supplies the current quiet detection thresholds.
	// Nil disables quiet detection.
	QuietConfig func() QuietConfig
	// OnQuiet receives quiet detection events.
	OnQuiet func(QuietEvent)
}

// Monitor determines, once per window, which of the playing channels has the
// loudest average magnitude. All accumulator state is owned by a single
// goroutine; observations arrive over a queue, so no locking guards the
// accumulators themselves.
type Monitor struct {
	cfg   MonitorConfig
	quiet *QuietDetector
	peaks *PeakHolder

	mu      sync.Mutex
	running bool
	events  chan levelEvent
	stopCh  chan struct{}
	done    chan struct{}
}

// NewMonitor creates a monitor with the given configuration.
func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Duration(types.DefaultTickMs) * time.Millisecond
	}
	return &Monitor{
		cfg:   cfg,
		quiet: NewQuietDetector(),
		peaks: NewPeakHolder(0),
	}
}

// Start transitions the monitor from Idle to Monitoring with one fresh
// accumulator per channel. Each accumulator starts at (0,0).
func (m *Monitor) Start(channels int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyMonitoring
	}
	m.running = true
	m.events = make(chan levelEvent, eventBuffer)
	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	m.quiet.Reset()
	m.peaks.Reset(channels)

	accs := make([]LevelAccumulator, channels)
	go m.run(accs, m.events, m.stopCh, m.done)
	return nil
}

// Observe records a magnitude observation for a channel. Safe to call from
// any goroutine; observations made while the monitor is idle are discarded.
func (m *Monitor) Observe(channel int, magnitude float64) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	events := m.events
	m.mu.Unlock()

	select {
	case events <- levelEvent{channel: channel, magnitude: magnitude}:
	default:
		slog.Warn("level event queue full, dropping observation", "channel", channel)
	}
}

// Stop tears the monitor down synchronously and waits for the run goroutine.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, done := m.stopCh, m.done
	m.mu.Unlock()

	close(stopCh)
	<-done
}

// IsMonitoring reports whether the window ticker is running.
func (m *Monitor) IsMonitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// run owns the accumulators for one monitoring session.
func (m *Monitor) run(accs []LevelAccumulator, events chan levelEvent, stopCh, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		if m.done == done {
			m.running = false
		}
		m.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if ev.channel >= 0 && ev.channel < len(accs) {
				accs[ev.channel].Observe(ev.magnitude)
			}
		case now := <-ticker.C:
			report := m.window(accs, now)
			if m.cfg.OnReport != nil {
				m.cfg.OnReport(report)
			}
			if m.cfg.ActiveCount != nil && m.cfg.ActiveCount() == 0 {
				// No channel left playing: Monitoring -> Idle.
				return
			}
		case <-stopCh:
			return
		}
	}
}

// window closes out one averaging window: it computes per-channel averages,
// picks the dominant channel with a strict-greater comparison (first seen
// wins ties), resets every accumulator and runs quiet detection on the
// loudest average.
func (m *Monitor) window(accs []LevelAccumulator, now time.Time) types.DominantReport {
	report := types.DominantReport{
		Index:  -1,
		Levels: make([]types.ChannelLevel, len(accs)),
	}

	var best float64
	for i := range accs {
		avg := accs[i].Average()
		report.Levels[i] = types.ChannelLevel{
			Index:    i,
			Average:  avg,
			PeakHold: m.peaks.Update(i, accs[i].Peak, now),
			Label:    FormatLevel(avg),
		}
		if accs[i].Count > 0 {
			report.Windowed = true
			if report.Index == -1 || avg > best {
				best = avg
				report.Index = i
			}
		}
		accs[i].Reset()
	}

	if report.Index >= 0 {
		report.Levels[report.Index].Dominant = true
		report.Label = DominantLabel(report.Index)
	}

	if m.cfg.QuietConfig != nil {
		level := MinDB
		if best > 0 {
			level = max(Decibels(best), MinDB)
		}
		ev := m.quiet.Update(level, m.cfg.QuietConfig(), now)
		report.Quiet = ev.InQuiet
		report.QuietMs = ev.DurationMs
		if m.cfg.OnQuiet != nil {
			m.cfg.OnQuiet(ev)
		}
	}

	return report
}

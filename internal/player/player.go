// Package player manages concurrent playback sessions. It loads a set of
// audio files onto numbered channels, fans control operations out to the
// per-channel writers and keeps the level monitor in step with playback.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-player/internal/audio"
	"github.com/oszuidwest/zwfm-player/internal/config"
	"github.com/oszuidwest/zwfm-player/internal/eventlog"
	"github.com/oszuidwest/zwfm-player/internal/notify"
	"github.com/oszuidwest/zwfm-player/internal/playback"
	"github.com/oszuidwest/zwfm-player/internal/types"
)

// Sentinel errors for player operations.
var (
	ErrAlreadyPlaying = errors.New("player already playing")
	ErrNotPlaying     = errors.New("player not playing")
	ErrNoFilesLoaded  = errors.New("no files loaded")
)

// Player coordinates a session of concurrent playback channels with the
// level monitor and notifications.
type Player struct {
	config     *config.Config
	ffplayPath string
	factory    playback.SinkFactory
	notifier   *notify.QuietNotifier
	expiry     *notify.SecretExpiryChecker

	mu           sync.RWMutex
	state        types.PlayerState
	writers      []*playback.Writer
	monitor      *audio.Monitor
	startTime    time.Time
	lastError    string
	lastDominant int
	lastReport   types.DominantReport
	events       *eventlog.Logger
	onReport     func(types.DominantReport)
}

// New creates a new Player with the given configuration and FFplay binary path.
func New(cfg *config.Config, ffplayPath string) *Player {
	return &Player{
		config:       cfg,
		ffplayPath:   ffplayPath,
		factory:      playback.NewSinkFactory(ffplayPath),
		notifier:     notify.NewQuietNotifier(cfg),
		expiry:       notify.NewSecretExpiryChecker(cfg.GraphConfig),
		state:        types.StateStopped,
		lastDominant: -1,
	}
}

// SetSinkFactory overrides the playback sink factory.
func (p *Player) SetSinkFactory(factory playback.SinkFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factory = factory
}

// SetReportSink registers a callback that receives every window report.
func (p *Player) SetReportSink(fn func(types.DominantReport)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReport = fn
}

// Notifier returns the quiet notifier so configuration changes can
// invalidate its cached clients.
func (p *Player) Notifier() *notify.QuietNotifier {
	return p.notifier
}

// GraphSecretExpiry returns the Graph client secret expiry info.
func (p *Player) GraphSecretExpiry() types.SecretExpiryInfo {
	return p.expiry.Info()
}

// InvalidateGraphExpiry clears the cached secret expiry info so the next
// status build re-checks with the current configuration.
func (p *Player) InvalidateGraphExpiry() {
	p.expiry.Invalidate()
}

// InitEventLog opens the session event log at the configured path.
// This should be called before Start().
func (p *Player) InitEventLog() error {
	logger, err := eventlog.NewLogger(p.config.EventLogPath())
	if err != nil {
		return fmt.Errorf("create event log: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = logger
	return nil
}

// EventLogPath returns the path of the session event log.
func (p *Player) EventLogPath() string {
	return p.config.EventLogPath()
}

// Load assigns one playback channel per file path. Loading zero paths
// leaves the previous session untouched. Loading while a session is
// active is rejected.
func (p *Player) Load(paths []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != types.StateStopped {
		return ErrAlreadyPlaying
	}

	// Loading nothing keeps whatever was loaded before.
	if len(paths) == 0 {
		return nil
	}

	device := p.config.Device()

	writers := make([]*playback.Writer, 0, len(paths))
	for i, path := range paths {
		w := playback.NewWriter(i, device, p.factory, playback.Callbacks{
			OnLevel: p.observe,
			OnEvent: p.handleChannelEvent,
		})
		if err := w.Open(path); err != nil {
			return fmt.Errorf("load channel %d: %w", i, err)
		}
		writers = append(writers, w)
	}

	p.writers = writers
	p.lastDominant = -1
	p.lastReport = types.DominantReport{Index: -1}
	return nil
}

// Start begins playback on every loaded channel and starts the monitor.
// Starting with nothing loaded is a no-op, matching Load of zero paths.
func (p *Player) Start() error {
	p.mu.Lock()

	if p.state == types.StatePlaying || p.state == types.StateStarting || p.state == types.StatePaused {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}
	if len(p.writers) == 0 {
		p.mu.Unlock()
		return nil
	}

	p.state = types.StateStarting
	writers := p.writers
	p.mu.Unlock()

	monitor := audio.NewMonitor(audio.MonitorConfig{
		TickInterval: time.Duration(p.config.TickMs()) * time.Millisecond,
		ActiveCount:  p.ActiveCount,
		OnReport:     p.handleReport,
		QuietConfig:  p.quietConfig,
		OnQuiet:      p.handleQuiet,
	})
	if err := monitor.Start(len(writers)); err != nil {
		p.setStopped(err.Error())
		return err
	}

	p.notifier.Reset()

	started := 0
	var errs []error
	for i, w := range writers {
		if err := w.Start(); err != nil {
			slog.Error("failed to start channel", "channel", i, "error", err)
			errs = append(errs, fmt.Errorf("channel %d: %w", i, err))
			continue
		}
		started++
	}

	if started == 0 {
		monitor.Stop()
		err := errors.Join(errs...)
		p.setStopped(err.Error())
		return err
	}

	p.mu.Lock()
	p.state = types.StatePlaying
	p.monitor = monitor
	p.startTime = time.Now()
	p.lastError = ""
	if len(errs) > 0 {
		p.lastError = errors.Join(errs...).Error()
	}
	p.mu.Unlock()

	p.logEvent(&eventlog.SessionEvent{
		Event:   eventlog.SessionStarted,
		Channel: -1,
		Message: fmt.Sprintf("%d of %d channels started", started, len(writers)),
	})
	slog.Info("playback session started", "channels", started)
	return nil
}

// Pause pauses every playing channel. The playback subprocesses stay alive.
func (p *Player) Pause() error {
	p.mu.Lock()
	if p.state != types.StatePlaying {
		p.mu.Unlock()
		return ErrNotPlaying
	}
	p.state = types.StatePaused
	writers := p.writers
	p.mu.Unlock()

	for _, w := range writers {
		if err := w.Pause(); err != nil && !errors.Is(err, playback.ErrNotPlaying) {
			slog.Warn("failed to pause channel", "error", err)
		}
	}
	return nil
}

// Resume resumes every paused channel.
func (p *Player) Resume() error {
	p.mu.Lock()
	if p.state != types.StatePaused {
		p.mu.Unlock()
		return ErrNotPlaying
	}
	p.state = types.StatePlaying
	writers := p.writers
	p.mu.Unlock()

	for _, w := range writers {
		if err := w.Resume(); err != nil && !errors.Is(err, playback.ErrNotPlaying) {
			slog.Warn("failed to resume channel", "error", err)
		}
	}
	return nil
}

// Stop ends the session: every channel is stopped, then the monitor.
// Stopping an idle player is a no-op.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.state == types.StateStopped || p.state == types.StateStopping {
		p.mu.Unlock()
		return nil
	}
	p.state = types.StateStopping
	writers := p.writers
	monitor := p.monitor
	p.mu.Unlock()

	for _, w := range writers {
		w.Stop()
	}
	if monitor != nil {
		monitor.Stop()
	}

	p.mu.Lock()
	p.state = types.StateStopped
	p.monitor = nil
	p.mu.Unlock()

	p.logEvent(&eventlog.SessionEvent{
		Event:   eventlog.SessionStopped,
		Channel: -1,
	})
	slog.Info("playback session stopped")
	return nil
}

// Close stops the session and releases the event log.
func (p *Player) Close() error {
	err := p.Stop()

	p.mu.Lock()
	events := p.events
	p.events = nil
	p.mu.Unlock()

	if events != nil {
		if closeErr := events.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}
	return err
}

// ActiveCount reports how many channels are currently playing or paused.
func (p *Player) ActiveCount() int {
	p.mu.RLock()
	writers := p.writers
	p.mu.RUnlock()

	count := 0
	for _, w := range writers {
		if w.IsPlaying() {
			count++
		}
	}
	return count
}

// State returns the current player state.
func (p *Player) State() types.PlayerState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// IsPlaying reports whether a session is active.
func (p *Player) IsPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == types.StatePlaying || p.state == types.StatePaused
}

// LastReport returns the most recent window report.
func (p *Player) LastReport() types.DominantReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastReport
}

// Status returns the current player status.
func (p *Player) Status() types.PlayerStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	uptime := ""
	if p.state == types.StatePlaying || p.state == types.StatePaused {
		uptime = time.Since(p.startTime).Truncate(time.Second).String()
	}

	channels := make([]types.ChannelInfo, 0, len(p.writers))
	active := 0
	for _, w := range p.writers {
		channels = append(channels, w.Info())
		if w.IsPlaying() {
			active++
		}
	}

	monitoring := p.monitor != nil && p.monitor.IsMonitoring()

	return types.PlayerStatus{
		State:        p.state,
		Uptime:       uptime,
		LastError:    p.lastError,
		Channels:     channels,
		ActiveCount:  active,
		Monitoring:   monitoring,
		TickMs:       p.config.TickMs(),
		LastDominant: p.lastDominant,
	}
}

// TriggerTestEmail sends a test email to verify configuration.
func (p *Player) TriggerTestEmail() error {
	cfg := p.config.Snapshot()
	return notify.SendTestEmail(notify.BuildGraphConfig(cfg))
}

// TriggerTestWebhook sends a test webhook to verify configuration.
func (p *Player) TriggerTestWebhook() error {
	return notify.SendTestWebhook(p.config.Snapshot().WebhookURL)
}

// TriggerTestLog writes a test entry to verify log file configuration.
func (p *Player) TriggerTestLog() error {
	return notify.WriteTestLog(p.config.Snapshot().LogPath)
}

// TriggerTestZabbix sends a test trapper item to verify Zabbix configuration.
func (p *Player) TriggerTestZabbix() error {
	cfg := p.config.Snapshot()
	return notify.SendTestZabbix(cfg.ZabbixServer, cfg.ZabbixPort, cfg.ZabbixHost, cfg.ZabbixKey)
}

// observe forwards one block magnitude to the monitor.
func (p *Player) observe(channel int, magnitude float64) {
	p.mu.RLock()
	monitor := p.monitor
	p.mu.RUnlock()

	if monitor != nil {
		monitor.Observe(channel, magnitude)
	}
}

// quietConfig supplies the current quiet detection thresholds.
func (p *Player) quietConfig() audio.QuietConfig {
	cfg := p.config.Snapshot()
	return audio.QuietConfig{
		Threshold:  cfg.QuietThreshold,
		DurationMs: cfg.QuietDurationMs,
		RecoveryMs: cfg.QuietRecoveryMs,
	}
}

// handleReport processes one window report from the monitor.
func (p *Player) handleReport(report types.DominantReport) {
	p.mu.Lock()
	previous := p.lastDominant
	if report.Index >= 0 {
		p.lastDominant = report.Index
	}
	p.lastReport = report
	onReport := p.onReport
	p.mu.Unlock()

	if report.Index >= 0 && report.Index != previous {
		name := ""
		if info := p.channelInfo(report.Index); info != nil {
			name = info.Name
		}
		p.logEvent(&eventlog.SessionEvent{
			Event:   eventlog.DominantChanged,
			Channel: report.Index,
			Name:    name,
			Message: report.Label,
		})
	}

	if onReport != nil {
		onReport(report)
	}

	// The monitor stops itself when every channel has finished; the session
	// follows it down.
	if p.ActiveCount() == 0 {
		go p.finishSession()
	}
}

// finishSession moves the player to stopped once all channels have finished
// on their own.
func (p *Player) finishSession() {
	p.mu.Lock()
	if p.state != types.StatePlaying && p.state != types.StatePaused {
		p.mu.Unlock()
		return
	}
	p.state = types.StateStopped
	p.monitor = nil
	p.mu.Unlock()

	p.logEvent(&eventlog.SessionEvent{
		Event:   eventlog.SessionStopped,
		Channel: -1,
		Message: "all channels finished",
	})
	slog.Info("playback session finished")
}

// handleQuiet forwards quiet events to the notifier and the event log.
func (p *Player) handleQuiet(event audio.QuietEvent) {
	p.notifier.HandleEvent(event)

	if event.JustEntered {
		p.logEvent(&eventlog.SessionEvent{
			Event:   eventlog.QuietStarted,
			Channel: -1,
			Message: fmt.Sprintf("level %.1f dB", event.LevelDB),
		})
	}
	if event.JustRecovered {
		p.logEvent(&eventlog.SessionEvent{
			Event:   eventlog.QuietEnded,
			Channel: -1,
			Message: fmt.Sprintf("quiet lasted %d ms", event.TotalDurationMs),
		})
	}
}

// handleChannelEvent maps writer lifecycle events onto the event log.
func (p *Player) handleChannelEvent(channel int, kind playback.EventKind, detail string) {
	var event eventlog.EventType
	switch kind {
	case playback.EventStarted:
		event = eventlog.ChannelStarted
	case playback.EventFinished:
		event = eventlog.ChannelFinished
	case playback.EventStopped:
		event = eventlog.ChannelStopped
	case playback.EventUnderrun:
		event = eventlog.ChannelUnderrun
	case playback.EventError:
		event = eventlog.ChannelError
	default:
		return
	}

	name := ""
	if info := p.channelInfo(channel); info != nil {
		name = info.Name
	}

	entry := &eventlog.SessionEvent{
		Event:   event,
		Channel: channel,
		Name:    name,
	}
	if kind == playback.EventError {
		entry.Error = detail
		p.mu.Lock()
		p.lastError = fmt.Sprintf("channel %d: %s", channel, detail)
		p.mu.Unlock()
	} else if kind == playback.EventStarted {
		entry.Message = filepath.Base(detail)
	} else {
		entry.Message = detail
	}
	p.logEvent(entry)
}

// channelInfo returns the info for one channel, or nil if out of range.
func (p *Player) channelInfo(channel int) *types.ChannelInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if channel < 0 || channel >= len(p.writers) {
		return nil
	}
	info := p.writers[channel].Info()
	return &info
}

// setStopped records a failed start.
func (p *Player) setStopped(lastError string) {
	p.mu.Lock()
	p.state = types.StateStopped
	p.lastError = lastError
	p.mu.Unlock()
}

// logEvent writes to the session event log when one is configured.
func (p *Player) logEvent(event *eventlog.SessionEvent) {
	p.mu.RLock()
	events := p.events
	p.mu.RUnlock()

	if events == nil {
		return
	}
	if err := events.Log(event); err != nil {
		slog.Warn("failed to write event log", "error", err)
	}
}

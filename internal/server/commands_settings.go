package server

import (
	"log/slog"

	"github.com/oszuidwest/zwfm-player/internal/playback"
)

// --- Playback handlers ---

// handlePlaybackUpdate processes a playback/update command.
func (h *CommandHandler) handlePlaybackUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *PlaybackUpdateRequest) error {
		if req.Device == "" {
			return nil // No change requested
		}

		slog.Info("playback/update: changing output device", "device", req.Device)
		// Applies to the next loaded session; active channels keep their sink.
		return h.cfg.SetDevice(req.Device)
	})
}

// handlePlaybackGet processes a playback/get command.
func (h *CommandHandler) handlePlaybackGet(send chan<- any) {
	SendSuccess(send, "playback/get", map[string]any{
		"device": h.cfg.Device(),
	})
}

// handlePlaybackDevices processes a playback/devices command.
func (h *CommandHandler) handlePlaybackDevices(send chan<- any) {
	SendSuccess(send, "playback/devices", map[string]any{
		"devices": playback.Devices(),
	})
}

// --- Monitor handlers ---

// handleMonitorUpdate processes a monitor/update command.
func (h *CommandHandler) handleMonitorUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *MonitorUpdateRequest) error {
		if req.TickMs == nil {
			return nil
		}

		slog.Info("monitor/update: changing window length", "tick_ms", *req.TickMs)
		// The new window length takes effect on the next session start.
		return h.cfg.SetTickMs(*req.TickMs)
	})
}

// handleMonitorGet processes a monitor/get command.
func (h *CommandHandler) handleMonitorGet(send chan<- any) {
	SendSuccess(send, "monitor/get", map[string]any{
		"tick_ms": h.cfg.TickMs(),
	})
}

// --- Quiet detection handlers ---

// handleQuietUpdate processes a quiet/update command.
func (h *CommandHandler) handleQuietUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *QuietUpdateRequest) error {
		if req.ThresholdDB != nil {
			if err := h.cfg.SetQuietThreshold(*req.ThresholdDB); err != nil {
				return err
			}
		}
		if req.DurationMs != nil {
			if err := h.cfg.SetQuietDurationMs(*req.DurationMs); err != nil {
				return err
			}
		}
		if req.RecoveryMs != nil {
			if err := h.cfg.SetQuietRecoveryMs(*req.RecoveryMs); err != nil {
				return err
			}
		}
		// The monitor reads quiet thresholds per window, so changes apply
		// without a restart.
		return nil
	})
}

// handleQuietGet processes a quiet/get command.
func (h *CommandHandler) handleQuietGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendSuccess(send, "quiet/get", map[string]any{
		"threshold_db": snap.QuietThreshold,
		"duration_ms":  snap.QuietDurationMs,
		"recovery_ms":  snap.QuietRecoveryMs,
	})
}

// --- Notification handlers ---

// handleWebhookUpdate processes a notifications/webhook/update command.
func (h *CommandHandler) handleWebhookUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *WebhookUpdateRequest) error {
		return h.cfg.SetWebhookURL(req.URL)
	})
}

// handleWebhookGet processes a notifications/webhook/get command.
func (h *CommandHandler) handleWebhookGet(send chan<- any) {
	SendSuccess(send, "notifications/webhook/get", map[string]any{
		"url": h.cfg.Snapshot().WebhookURL,
	})
}

// handleLogUpdate processes a notifications/log/update command.
func (h *CommandHandler) handleLogUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *LogUpdateRequest) error {
		return h.cfg.SetLogPath(req.Path)
	})
}

// handleLogGet processes a notifications/log/get command.
func (h *CommandHandler) handleLogGet(send chan<- any) {
	SendSuccess(send, "notifications/log/get", map[string]any{
		"path": h.cfg.LogPath(),
	})
}

// handleEmailUpdate processes a notifications/email/update command.
func (h *CommandHandler) handleEmailUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *EmailUpdateRequest) error {
		if err := h.cfg.SetGraphConfig(
			req.TenantID,
			req.ClientID,
			req.ClientSecret,
			req.FromAddress,
			req.Recipients,
		); err != nil {
			return err
		}
		h.player.Notifier().InvalidateGraphClient()
		h.player.InvalidateGraphExpiry()
		return nil
	})
}

// handleZabbixUpdate processes a notifications/zabbix/update command.
func (h *CommandHandler) handleZabbixUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *ZabbixUpdateRequest) error {
		return h.cfg.SetZabbixConfig(req.Server, req.Port, req.Host, req.Key)
	})
}

// handleZabbixGet processes a notifications/zabbix/get command.
func (h *CommandHandler) handleZabbixGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendSuccess(send, "notifications/zabbix/get", map[string]any{
		"server": snap.ZabbixServer,
		"port":   snap.ZabbixPort,
		"host":   snap.ZabbixHost,
		"key":    snap.ZabbixKey,
	})
}

// handleEmailGet processes a notifications/email/get command.
// The client secret is never echoed back.
func (h *CommandHandler) handleEmailGet(send chan<- any) {
	graph := h.cfg.GraphConfig()
	SendSuccess(send, "notifications/email/get", map[string]any{
		"tenant_id":    graph.TenantID,
		"client_id":    graph.ClientID,
		"from_address": graph.FromAddress,
		"recipients":   graph.Recipients,
		"has_secret":   graph.ClientSecret != "",
	})
}

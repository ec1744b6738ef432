package server

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/oszuidwest/zwfm-player/internal/archive"
	"github.com/oszuidwest/zwfm-player/internal/config"
	"github.com/oszuidwest/zwfm-player/internal/player"
)

// Validation limits for command handling.
const (
	MaxLoadedChannels = 16  // Maximum concurrent playback channels
	MaxLogEntries     = 100 // Maximum quiet log entries to return
	MaxEventEntries   = 200 // Maximum session event log entries to return
)

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CommandHandler processes WebSocket commands.
type CommandHandler struct {
	cfg               *config.Config
	player            *player.Player
	archiver          *archive.Archiver
	playbackAvailable bool
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(cfg *config.Config, p *player.Player, a *archive.Archiver, playbackAvailable bool) *CommandHandler {
	return &CommandHandler{
		cfg:               cfg,
		player:            p,
		archiver:          a,
		playbackAvailable: playbackAvailable,
	}
}

// Handle processes a WebSocket command and performs the requested action.
// Commands use slash-style format: namespace/action (e.g., "player/start", "quiet/update")
func (h *CommandHandler) Handle(cmd WSCommand, send chan<- any, triggerStatusUpdate func()) {
	// Parse command into namespace and action
	parts := strings.SplitN(cmd.Type, "/", 3)
	namespace := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	subaction := ""
	if len(parts) > 2 {
		subaction = parts[2]
	}

	switch namespace {
	case "player":
		h.handlePlayer(action, cmd, send)
	case "playback":
		h.handlePlayback(action, cmd, send)
	case "monitor":
		h.handleMonitor(action, cmd, send)
	case "quiet":
		h.handleQuiet(action, cmd, send)
	case "notifications":
		h.handleNotifications(action, subaction, cmd, send)
	case "archive":
		h.handleArchive(action, cmd, send)
	case "events":
		h.handleEvents(action, send)
	case "config":
		h.handleConfig(action, send)
	case "status":
		h.handleStatus(action, send)
	default:
		slog.Warn("unknown WebSocket command", "type", cmd.Type)
	}

	triggerStatusUpdate()
}

// --- Namespace handlers ---

// handlePlayer routes player/* commands
func (h *CommandHandler) handlePlayer(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "load":
		h.handlePlayerLoad(cmd, send)
	case "start":
		h.handlePlayerStart(cmd, send)
	case "pause":
		h.handlePlayerPause(cmd, send)
	case "resume":
		h.handlePlayerResume(cmd, send)
	case "stop":
		h.handlePlayerStop(cmd, send)
	default:
		slog.Warn("unknown player action", "action", action)
	}
}

// handlePlayback routes playback/* commands
func (h *CommandHandler) handlePlayback(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handlePlaybackUpdate(cmd, send)
	case "get":
		h.handlePlaybackGet(send)
	case "devices":
		h.handlePlaybackDevices(send)
	default:
		slog.Warn("unknown playback action", "action", action)
	}
}

// handleMonitor routes monitor/* commands
func (h *CommandHandler) handleMonitor(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleMonitorUpdate(cmd, send)
	case "get":
		h.handleMonitorGet(send)
	default:
		slog.Warn("unknown monitor action", "action", action)
	}
}

// handleQuiet routes quiet/* commands
func (h *CommandHandler) handleQuiet(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleQuietUpdate(cmd, send)
	case "get":
		h.handleQuietGet(send)
	default:
		slog.Warn("unknown quiet action", "action", action)
	}
}

// handleNotifications routes notifications/*/* commands
func (h *CommandHandler) handleNotifications(action, subaction string, cmd WSCommand, send chan<- any) {
	switch action {
	case "webhook":
		switch subaction {
		case "update":
			h.handleWebhookUpdate(cmd, send)
		case "test":
			h.handleTest(send, "test_webhook")
		case "get":
			h.handleWebhookGet(send)
		default:
			slog.Warn("unknown webhook action", "subaction", subaction)
		}
	case "log":
		switch subaction {
		case "update":
			h.handleLogUpdate(cmd, send)
		case "test":
			h.handleTest(send, "test_log")
		case "view":
			h.handleViewQuietLog(send)
		case "get":
			h.handleLogGet(send)
		default:
			slog.Warn("unknown log action", "subaction", subaction)
		}
	case "email":
		switch subaction {
		case "update":
			h.handleEmailUpdate(cmd, send)
		case "test":
			h.handleTest(send, "test_email")
		case "get":
			h.handleEmailGet(send)
		default:
			slog.Warn("unknown email action", "subaction", subaction)
		}
	case "zabbix":
		switch subaction {
		case "update":
			h.handleZabbixUpdate(cmd, send)
		case "test":
			h.handleTest(send, "test_zabbix")
		case "get":
			h.handleZabbixGet(send)
		default:
			slog.Warn("unknown zabbix action", "subaction", subaction)
		}
	default:
		slog.Warn("unknown notifications action", "action", action)
	}
}

// handleArchive routes archive/* commands
func (h *CommandHandler) handleArchive(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleArchiveUpdate(cmd, send)
	case "get":
		h.handleArchiveGet(send)
	case "test-s3":
		h.handleTestArchiveS3(cmd, send)
	case "run":
		h.handleArchiveRun(send)
	default:
		slog.Warn("unknown archive action", "action", action)
	}
}

// handleEvents routes events/* commands
func (h *CommandHandler) handleEvents(action string, send chan<- any) {
	switch action {
	case "view":
		h.handleViewEventLog(send)
	default:
		slog.Warn("unknown events action", "action", action)
	}
}

// handleConfig routes config/* commands
func (h *CommandHandler) handleConfig(action string, send chan<- any) {
	switch action {
	case "get":
		h.handleConfigGet(send)
	default:
		slog.Warn("unknown config action", "action", action)
	}
}

// handleStatus routes status/* commands
func (h *CommandHandler) handleStatus(action string, send chan<- any) {
	switch action {
	case "get":
		// Status is sent automatically, but explicit get triggers immediate update
		slog.Debug("status/get received, status update will be triggered")
	default:
		slog.Warn("unknown status action", "action", action)
	}
}

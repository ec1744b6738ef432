package server

import (
	"fmt"
	"log/slog"

	"github.com/oszuidwest/zwfm-player/internal/eventlog"
)

// --- Player session handlers ---

// handlePlayerLoad processes a player/load command.
func (h *CommandHandler) handlePlayerLoad(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *PlayerLoadRequest) error {
		slog.Info("player/load: loading files", "count", len(req.Paths))
		return h.player.Load(req.Paths)
	})
}

// handlePlayerStart processes a player/start command.
func (h *CommandHandler) handlePlayerStart(cmd WSCommand, send chan<- any) {
	HandleActionAsync(cmd, send, func() (any, error) {
		if !h.playbackAvailable {
			return nil, fmt.Errorf("playback binary not found")
		}
		return nil, h.player.Start()
	})
}

// handlePlayerPause processes a player/pause command.
func (h *CommandHandler) handlePlayerPause(cmd WSCommand, send chan<- any) {
	HandleActionAsync(cmd, send, func() (any, error) {
		return nil, h.player.Pause()
	})
}

// handlePlayerResume processes a player/resume command.
func (h *CommandHandler) handlePlayerResume(cmd WSCommand, send chan<- any) {
	HandleActionAsync(cmd, send, func() (any, error) {
		return nil, h.player.Resume()
	})
}

// handlePlayerStop processes a player/stop command.
func (h *CommandHandler) handlePlayerStop(cmd WSCommand, send chan<- any) {
	HandleActionAsync(cmd, send, func() (any, error) {
		return nil, h.player.Stop()
	})
}

// --- Event log handlers ---

// handleViewEventLog reads and returns the newest session events.
func (h *CommandHandler) handleViewEventLog(send chan<- any) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in event log handler", "panic", r)
			}
		}()

		result := struct {
			Type    string                  `json:"type"`
			Success bool                    `json:"success"`
			Error   string                  `json:"error,omitempty"`
			Path    string                  `json:"path,omitempty"`
			Entries []eventlog.SessionEvent `json:"entries,omitempty"`
		}{
			Type:    "event_log_result",
			Success: true,
		}

		path := h.player.EventLogPath()
		entries, err := eventlog.ReadLast(path, MaxEventEntries)
		if err != nil {
			result.Success = false
			result.Error = err.Error()
		} else {
			result.Entries = entries
			result.Path = path
		}

		// Send via channel (non-blocking to prevent goroutine leak if channel is closed)
		select {
		case send <- result:
		default:
			slog.Warn("failed to send event log response: channel full or closed")
		}
	}()
}

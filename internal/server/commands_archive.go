package server

import (
	"log/slog"

	"github.com/oszuidwest/zwfm-player/internal/archive"
	"github.com/oszuidwest/zwfm-player/internal/config"
	"github.com/oszuidwest/zwfm-player/internal/types"
)

// --- Archive handlers ---

// handleArchiveUpdate processes an archive/update command.
func (h *CommandHandler) handleArchiveUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *ArchiveUpdateRequest) error {
		// A blank secret keeps the stored one so the frontend never has to
		// echo it back.
		secret := req.SecretKey
		if secret == "" {
			secret = h.cfg.Snapshot().ArchiveSecretKey
		}

		return h.cfg.SetArchive(config.ArchiveConfig{
			Enabled:       req.Enabled,
			Endpoint:      req.Endpoint,
			Region:        req.Region,
			Bucket:        req.Bucket,
			AccessKey:     req.AccessKey,
			SecretKey:     secret,
			Prefix:        req.Prefix,
			RetentionDays: req.RetentionDays,
		})
	})
}

// handleArchiveGet processes an archive/get command.
// The secret key is never echoed back.
func (h *CommandHandler) handleArchiveGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendSuccess(send, "archive/get", map[string]any{
		"enabled":        snap.ArchiveEnabled,
		"endpoint":       snap.ArchiveEndpoint,
		"region":         snap.ArchiveRegion,
		"bucket":         snap.ArchiveBucket,
		"access_key":     snap.ArchiveAccessKey,
		"prefix":         snap.ArchivePrefix,
		"retention_days": snap.ArchiveRetentionDays,
		"has_secret":     snap.ArchiveSecretKey != "",
	})
}

// handleTestArchiveS3 processes an archive/test-s3 command.
func (h *CommandHandler) handleTestArchiveS3(cmd WSCommand, send chan<- any) {
	var req S3TestRequest
	if !DecodeAndValidate(cmd, send, &req) {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in S3 test handler", "panic", r)
			}
		}()

		result := types.WSTestResult{
			Type:     "test_result",
			TestType: "s3",
			Success:  true,
		}

		err := archive.TestS3Connection(&archive.S3Config{
			Endpoint:        req.Endpoint,
			Region:          req.Region,
			Bucket:          req.Bucket,
			AccessKeyID:     req.AccessKey,
			SecretAccessKey: req.SecretKey,
			Prefix:          req.Prefix,
		})
		if err != nil {
			slog.Error("S3 connection test failed", "error", err)
			result.Success = false
			result.Error = err.Error()
		} else {
			slog.Info("S3 connection test succeeded", "bucket", req.Bucket)
		}

		select {
		case send <- result:
		default:
			slog.Warn("failed to send S3 test response: channel full or closed")
		}
	}()
}

// handleArchiveRun processes an archive/run command.
func (h *CommandHandler) handleArchiveRun(send chan<- any) {
	HandleActionAsync(WSCommand{Type: "archive/run"}, send, func() (any, error) {
		if err := h.archiver.ArchiveNow(); err != nil {
			return nil, err
		}
		return map[string]string{"status": "uploaded"}, nil
	})
}

// --- Config handlers ---

// handleConfigGet processes a config/get command. Secrets are redacted.
func (h *CommandHandler) handleConfigGet(send chan<- any) {
	snap := h.cfg.Snapshot()

	cfg := map[string]any{
		"system": map[string]any{
			"port":        snap.WebPort,
			"ffplay_path": snap.FFplayPath,
		},
		"playback": map[string]any{
			"device": snap.Device,
		},
		"monitor": map[string]any{
			"tick_ms": snap.TickMs,
		},
		"quiet_detection": map[string]any{
			"threshold_db": snap.QuietThreshold,
			"duration_ms":  snap.QuietDurationMs,
			"recovery_ms":  snap.QuietRecoveryMs,
		},
		"notifications": map[string]any{
			"webhook": map[string]any{"url": snap.WebhookURL},
			"log":     map[string]any{"path": snap.LogPath},
			"email": map[string]any{
				"tenant_id":    snap.GraphTenantID,
				"client_id":    snap.GraphClientID,
				"from_address": snap.GraphFromAddress,
				"recipients":   snap.GraphRecipients,
				"has_secret":   snap.GraphClientSecret != "",
			},
		},
		"event_log": map[string]any{
			"path": snap.EventLogPath,
		},
		"archive": map[string]any{
			"enabled":        snap.ArchiveEnabled,
			"endpoint":       snap.ArchiveEndpoint,
			"region":         snap.ArchiveRegion,
			"bucket":         snap.ArchiveBucket,
			"access_key":     snap.ArchiveAccessKey,
			"prefix":         snap.ArchivePrefix,
			"retention_days": snap.ArchiveRetentionDays,
			"has_secret":     snap.ArchiveSecretKey != "",
		},
	}

	trySend(send, "config/get", types.WSConfigResponse{
		Type:   "config",
		Config: cfg,
	})
}

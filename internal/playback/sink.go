package playback

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/oszuidwest/zwfm-player/internal/types"
	"github.com/oszuidwest/zwfm-player/internal/util"
)

// ProcessSink feeds PCM audio to a playback subprocess over stdin.
//
// Concurrency: stdinMu protects stdin from concurrent access. This prevents
// a race where Write runs while Close shuts the pipe down.
type ProcessSink struct {
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	stdin   io.WriteCloser
	stdinMu sync.Mutex
	stderr  *bytes.Buffer
}

// StartProcessSink launches a playback subprocess reading PCM from stdin.
func StartProcessSink(command string, args []string) (*ProcessSink, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, command, args...)

	// Go 1.20+: declarative graceful shutdown - signal first, then kill.
	cmd.Cancel = func() error {
		return util.GracefulSignal(cmd.Process)
	}
	cmd.WaitDelay = types.ShutdownTimeout

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, util.WrapError("create stdin pipe", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		if closeErr := stdinPipe.Close(); closeErr != nil {
			slog.Warn("failed to close stdin pipe", "error", closeErr)
		}
		return nil, util.WrapError("start playback process", err)
	}

	return &ProcessSink{
		cmd:    cmd,
		cancel: cancel,
		stdin:  stdinPipe,
		stderr: &stderr,
	}, nil
}

// NewSinkFactory returns a SinkFactory that launches the platform playback
// command for the given device. The ffplayPath is used on platforms that
// play through FFplay.
func NewSinkFactory(ffplayPath string) SinkFactory {
	return func(device string) (Sink, error) {
		command, args, err := BuildPlaybackCommand(device, ffplayPath)
		if err != nil {
			return nil, err
		}
		return StartProcessSink(command, args)
	}
}

// Write sends one PCM block to the subprocess. Blocks while the device
// buffer is full, which paces the caller at playback speed.
func (s *ProcessSink) Write(p []byte) (int, error) {
	s.stdinMu.Lock()
	defer s.stdinMu.Unlock()
	if s.stdin == nil {
		return 0, io.ErrClosedPipe
	}
	return s.stdin.Write(p)
}

// Close closes stdin so the subprocess drains its buffer and exits, then
// waits for it. A subprocess that does not exit within the shutdown timeout
// is killed via the command context.
func (s *ProcessSink) Close() error {
	s.stdinMu.Lock()
	stdin := s.stdin
	s.stdin = nil
	s.stdinMu.Unlock()

	defer s.cancel()

	if stdin != nil {
		if err := stdin.Close(); err != nil {
			slog.Debug("stdin close error", "error", err)
		}
	}

	if err := s.cmd.Wait(); err != nil {
		if msg := util.ExtractLastError(s.stderr.String()); msg != "" {
			slog.Warn("playback process exited with error", "error", msg)
		}
		return err
	}
	return nil
}

package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oszuidwest/zwfm-player/internal/audio"
	"github.com/oszuidwest/zwfm-player/internal/types"
)

// EventKind classifies channel lifecycle events for the event log.
type EventKind string

// Channel lifecycle event kinds.
const (
	EventStarted  EventKind = "channel_started"
	EventFinished EventKind = "channel_finished"
	EventStopped  EventKind = "channel_stopped"
	EventUnderrun EventKind = "channel_underrun"
	EventError    EventKind = "channel_error"
)

// Callbacks receives level observations and lifecycle events from a Writer.
// Both callbacks always carry the channel index explicitly.
type Callbacks struct {
	OnLevel func(channel int, magnitude float64)
	OnEvent func(channel int, kind EventKind, detail string)
}

// Writer plays one audio file through a sink, block by block, reporting the
// peak magnitude of every block. Wave files have their canonical 44-byte
// header skipped; everything else is treated as raw S16LE PCM.
type Writer struct {
	index   int
	device  string
	factory SinkFactory
	cb      Callbacks

	mu       sync.Mutex
	path     string
	isWAV    bool
	state    types.ChannelState
	paused   bool
	resumeCh chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	lastErr  string
	underrun bool
}

// NewWriter creates a writer for one playback channel.
func NewWriter(index int, device string, factory SinkFactory, cb Callbacks) *Writer {
	return &Writer{
		index:   index,
		device:  device,
		factory: factory,
		cb:      cb,
		state:   types.ChannelStopped,
	}
}

// Open associates the writer with an audio file. The file must exist and be
// a regular file; decoding is left entirely to the playback subprocess.
func (w *Writer) Open(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("open %s: is a directory", path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.path = path
	w.isWAV = strings.EqualFold(filepath.Ext(path), ".wav")
	return nil
}

// Start begins playback. Starting a channel that is already playing or
// paused is rejected with ErrAlreadyPlaying.
func (w *Writer) Start() error {
	w.mu.Lock()
	if w.state == types.ChannelPlaying || w.state == types.ChannelPaused {
		w.mu.Unlock()
		return ErrAlreadyPlaying
	}
	path, isWAV := w.path, w.isWAV
	w.mu.Unlock()

	if path == "" {
		return errors.New("no file opened")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if isWAV {
		if _, err := f.Seek(types.WAVHeaderSize, io.SeekStart); err != nil {
			_ = f.Close()
			return fmt.Errorf("skip wave header: %w", err)
		}
	}

	sink, err := w.factory(w.device)
	if err != nil {
		_ = f.Close()
		return err
	}

	w.mu.Lock()
	w.state = types.ChannelPlaying
	w.paused = false
	w.lastErr = ""
	w.underrun = false
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	stopCh, done := w.stopCh, w.done
	w.mu.Unlock()

	w.emit(EventStarted, path)
	go w.run(f, sink, stopCh, done)
	return nil
}

// Pause gates the read loop without tearing down the subprocess.
func (w *Writer) Pause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != types.ChannelPlaying {
		return ErrNotPlaying
	}
	w.state = types.ChannelPaused
	w.paused = true
	w.resumeCh = make(chan struct{})
	return nil
}

// Resume releases a paused read loop.
func (w *Writer) Resume() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != types.ChannelPaused {
		return ErrNotPlaying
	}
	w.state = types.ChannelPlaying
	w.paused = false
	close(w.resumeCh)
	w.resumeCh = nil
	return nil
}

// Stop ends playback and waits for the read loop to exit. Stopping an idle
// channel is a no-op.
func (w *Writer) Stop() {
	w.mu.Lock()
	if w.state != types.ChannelPlaying && w.state != types.ChannelPaused {
		w.mu.Unlock()
		return
	}
	stopCh, done := w.stopCh, w.done
	w.stopCh = nil
	w.mu.Unlock()

	close(stopCh)
	<-done
}

// IsPlaying reports whether the read loop is alive (playing or paused).
func (w *Writer) IsPlaying() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == types.ChannelPlaying || w.state == types.ChannelPaused
}

// State returns the current channel state.
func (w *Writer) State() types.ChannelState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Info returns a snapshot of the channel for status reporting.
func (w *Writer) Info() types.ChannelInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return types.ChannelInfo{
		Index:    w.index,
		Path:     w.path,
		Name:     filepath.Base(w.path),
		State:    w.state,
		Error:    w.lastErr,
		Underrun: w.underrun,
	}
}

// run reads PCM blocks from the file and writes them to the sink. The sink's
// backpressure paces the loop at playback speed. Two consecutive short reads
// indicate the source cannot keep the device buffer full.
func (w *Writer) run(f *os.File, sink Sink, stopCh, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Debug("sink close error", "channel", w.index, "error", err)
		}
		if err := f.Close(); err != nil {
			slog.Debug("file close error", "channel", w.index, "error", err)
		}
	}()

	buf := make([]byte, types.BlockSize)
	prevLen := types.BlockSize

	for {
		select {
		case <-stopCh:
			w.setState(types.ChannelStopped)
			w.emit(EventStopped, "")
			return
		default:
		}

		if paused, resumeCh := w.pauseGate(); paused {
			select {
			case <-resumeCh:
			case <-stopCh:
				w.setState(types.ChannelStopped)
				w.emit(EventStopped, "")
				return
			}
		}

		n, err := f.Read(buf)
		if n > 0 {
			if prevLen < types.BlockSize && n < types.BlockSize {
				slog.Warn("buffer underrun",
					"channel", w.index, "read", n, "block_size", types.BlockSize)
				if w.markUnderrun() {
					w.emit(EventUnderrun, fmt.Sprintf("read %d of %d bytes", n, types.BlockSize))
				}
			}

			if w.cb.OnLevel != nil {
				w.cb.OnLevel(w.index, audio.BlockPeak(buf, n))
			}

			if _, werr := sink.Write(buf[:n]); werr != nil {
				w.fail(werr)
				return
			}
			prevLen = n
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				w.setState(types.ChannelFinished)
				w.emit(EventFinished, "")
			} else {
				w.fail(err)
			}
			return
		}
	}
}

// pauseGate returns the pause flag together with the channel that releases it.
func (w *Writer) pauseGate() (bool, <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused, w.resumeCh
}

// markUnderrun records the underrun flag, reporting true on first occurrence.
func (w *Writer) markUnderrun() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	first := !w.underrun
	w.underrun = true
	return first
}

func (w *Writer) setState(state types.ChannelState) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

func (w *Writer) fail(err error) {
	w.mu.Lock()
	w.state = types.ChannelError
	w.lastErr = err.Error()
	w.mu.Unlock()
	slog.Error("channel playback failed", "channel", w.index, "error", err)
	w.emit(EventError, err.Error())
}

func (w *Writer) emit(kind EventKind, detail string) {
	if w.cb.OnEvent != nil {
		w.cb.OnEvent(w.index, kind, detail)
	}
}

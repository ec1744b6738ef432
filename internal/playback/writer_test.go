package playback

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

// fakeSink records written PCM in memory. An optional gate channel blocks
// every Write until released, simulating device buffer backpressure.
type fakeSink struct {
	mu     sync.Mutex
	data   []byte
	closed bool
	gate   chan struct{}
}

func (s *fakeSink) Write(p []byte) (int, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, p...)
	return len(p), nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSink) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

func fakeFactory(sink *fakeSink) SinkFactory {
	return func(device string) (Sink, error) {
		return sink, nil
	}
}

// eventRecorder collects lifecycle events from a writer.
type eventRecorder struct {
	mu     sync.Mutex
	kinds  []EventKind
	signal chan EventKind
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{signal: make(chan EventKind, 16)}
}

func (r *eventRecorder) record(channel int, kind EventKind, detail string) {
	r.mu.Lock()
	r.kinds = append(r.kinds, kind)
	r.mu.Unlock()
	r.signal <- kind
}

func (r *eventRecorder) waitFor(t *testing.T, want EventKind) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case kind := <-r.signal:
			if kind == want {
				return
			}
		case <-deadline:
			t.Fatalf("event %q not seen within 2s", want)
		}
	}
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWriterPlaysRawFile(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01, 0x02}, 1000)
	path := writeTempFile(t, "tone.pcm", payload)

	sink := &fakeSink{}
	events := newEventRecorder()
	w := NewWriter(0, "default", fakeFactory(sink), Callbacks{OnEvent: events.record})

	if err := w.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	events.waitFor(t, EventFinished)

	if got := w.State(); got != types.ChannelFinished {
		t.Errorf("State() = %v, want finished", got)
	}
	if !bytes.Equal(sink.bytes(), payload) {
		t.Errorf("sink received %d bytes, want %d", len(sink.bytes()), len(payload))
	}
	if !sink.closed {
		t.Error("sink not closed after playback")
	}
}

func TestWriterSkipsWaveHeader(t *testing.T) {
	header := make([]byte, types.WAVHeaderSize)
	payload := bytes.Repeat([]byte{0xAA}, 512)
	path := writeTempFile(t, "tone.wav", append(header, payload...))

	sink := &fakeSink{}
	events := newEventRecorder()
	w := NewWriter(0, "default", fakeFactory(sink), Callbacks{OnEvent: events.record})

	if err := w.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	events.waitFor(t, EventFinished)

	if !bytes.Equal(sink.bytes(), payload) {
		t.Errorf("sink received %d bytes, want %d (header must be skipped)", len(sink.bytes()), len(payload))
	}
}

func TestWriterReportsBlockLevels(t *testing.T) {
	// One full block of a constant sample plus a partial block.
	sample := []byte{0x00, 0x10} // 4096
	payload := bytes.Repeat(sample, types.BlockSize/2+10)
	path := writeTempFile(t, "tone.pcm", payload)

	var mu sync.Mutex
	var levels []float64
	events := newEventRecorder()

	w := NewWriter(2, "default", fakeFactory(&fakeSink{}), Callbacks{
		OnLevel: func(channel int, magnitude float64) {
			if channel != 2 {
				t.Errorf("OnLevel channel = %d, want 2", channel)
			}
			mu.Lock()
			levels = append(levels, magnitude)
			mu.Unlock()
		},
		OnEvent: events.record,
	})

	if err := w.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	events.waitFor(t, EventFinished)

	mu.Lock()
	defer mu.Unlock()
	if len(levels) < 2 {
		t.Fatalf("got %d level observations, want at least 2", len(levels))
	}
	for i, lv := range levels {
		if lv != 4096 {
			t.Errorf("levels[%d] = %v, want 4096", i, lv)
		}
	}
}

func TestWriterPauseResume(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 3*types.BlockSize)
	path := writeTempFile(t, "long.pcm", payload)

	gate := make(chan struct{})
	sink := &fakeSink{gate: gate}
	events := newEventRecorder()
	w := NewWriter(0, "default", fakeFactory(sink), Callbacks{OnEvent: events.record})

	if err := w.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	events.waitFor(t, EventStarted)

	if err := w.Pause(); err != nil {
		t.Fatalf("Pause() error: %v", err)
	}
	if got := w.State(); got != types.ChannelPaused {
		t.Errorf("State() = %v, want paused", got)
	}
	if err := w.Pause(); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("second Pause() error = %v, want ErrNotPlaying", err)
	}
	if !w.IsPlaying() {
		t.Error("IsPlaying() = false while paused, want true")
	}

	if err := w.Resume(); err != nil {
		t.Fatalf("Resume() error: %v", err)
	}
	if err := w.Resume(); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("second Resume() error = %v, want ErrNotPlaying", err)
	}

	close(gate)
	events.waitFor(t, EventFinished)

	if !bytes.Equal(sink.bytes(), payload) {
		t.Errorf("sink received %d bytes, want %d", len(sink.bytes()), len(payload))
	}
}

func TestWriterStop(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 4*types.BlockSize)
	path := writeTempFile(t, "long.pcm", payload)

	gate := make(chan struct{}, 1)
	sink := &fakeSink{gate: gate}
	events := newEventRecorder()
	w := NewWriter(0, "default", fakeFactory(sink), Callbacks{OnEvent: events.record})

	if err := w.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("second Start() error = %v, want ErrAlreadyPlaying", err)
	}

	// Let one block through, then stop.
	gate <- struct{}{}
	go func() {
		// Release any write in flight so the loop can observe stopCh.
		for range 8 {
			gate <- struct{}{}
		}
	}()
	w.Stop()

	events.waitFor(t, EventStopped)
	if got := w.State(); got != types.ChannelStopped {
		t.Errorf("State() = %v, want stopped", got)
	}

	// Stopping again is a no-op.
	w.Stop()
}

func TestWriterOpenErrors(t *testing.T) {
	w := NewWriter(0, "default", fakeFactory(&fakeSink{}), Callbacks{})

	if err := w.Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("Open() of missing file succeeded, want error")
	}
	if err := w.Open(t.TempDir()); err == nil {
		t.Error("Open() of directory succeeded, want error")
	}
	if err := w.Start(); err == nil {
		t.Error("Start() without opened file succeeded, want error")
	}
}

func TestWriterSinkFactoryError(t *testing.T) {
	path := writeTempFile(t, "tone.pcm", []byte{0x01, 0x02})
	w := NewWriter(0, "default", func(device string) (Sink, error) {
		return nil, ErrNoPlaybackDevice
	}, Callbacks{})

	if err := w.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := w.Start(); !errors.Is(err, ErrNoPlaybackDevice) {
		t.Errorf("Start() error = %v, want ErrNoPlaybackDevice", err)
	}
	if got := w.State(); got != types.ChannelStopped {
		t.Errorf("State() = %v, want stopped after failed start", got)
	}
}

func TestWriterInfo(t *testing.T) {
	path := writeTempFile(t, "song.wav", make([]byte, 64))
	w := NewWriter(3, "default", fakeFactory(&fakeSink{}), Callbacks{})

	if err := w.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	info := w.Info()
	if info.Index != 3 {
		t.Errorf("Index = %d, want 3", info.Index)
	}
	if info.Name != "song.wav" {
		t.Errorf("Name = %q, want %q", info.Name, "song.wav")
	}
	if info.State != types.ChannelStopped {
		t.Errorf("State = %v, want stopped", info.State)
	}
}

func TestMarkUnderrunFirstOnly(t *testing.T) {
	w := NewWriter(0, "default", fakeFactory(&fakeSink{}), Callbacks{})

	if !w.markUnderrun() {
		t.Error("first markUnderrun() = false, want true")
	}
	if w.markUnderrun() {
		t.Error("second markUnderrun() = true, want false")
	}
	if !w.Info().Underrun {
		t.Error("Info().Underrun = false after underrun")
	}
}

package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestLevelAccumulator(t *testing.T) {
	var acc LevelAccumulator

	if got := acc.Average(); got != 0 {
		t.Errorf("empty accumulator Average() = %v, want 0", got)
	}

	acc.Observe(100)
	acc.Observe(200)
	acc.Observe(300)

	if got := acc.Average(); got != 200 {
		t.Errorf("Average() = %v, want 200", got)
	}
	if acc.Peak != 300 {
		t.Errorf("Peak = %v, want 300", acc.Peak)
	}
	if acc.Count != 3 {
		t.Errorf("Count = %v, want 3", acc.Count)
	}

	acc.Reset()
	if acc.Sum != 0 || acc.Count != 0 || acc.Peak != 0 {
		t.Errorf("after Reset: Sum=%v Count=%v Peak=%v, want all zero", acc.Sum, acc.Count, acc.Peak)
	}
}

func TestLevelAccumulatorSilence(t *testing.T) {
	var acc LevelAccumulator
	acc.Observe(0)
	acc.Observe(0)

	// Silence observations still count toward the window.
	if acc.Count != 2 {
		t.Errorf("Count = %v, want 2", acc.Count)
	}
	if got := acc.Average(); got != 0 {
		t.Errorf("Average() = %v, want 0", got)
	}
}

func TestBlockPeak(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{"empty", nil, 0},
		{"all zero", []int16{0, 0, 0}, 0},
		{"positive peak", []int16{100, 2000, 50}, 2000},
		{"negative peak", []int16{100, -3000, 50}, 3000},
		{"full scale negative", []int16{-32768}, 32768},
		{"full scale positive", []int16{32767}, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, len(tt.samples)*2)
			for i, s := range tt.samples {
				binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
			}
			if got := BlockPeak(buf, len(buf)); got != tt.want {
				t.Errorf("BlockPeak() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlockPeakPartialRead(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:], uint16(100))
	binary.LittleEndian.PutUint16(buf[2:], uint16(5000))
	binary.LittleEndian.PutUint16(buf[4:], 32767)

	// Only the first two samples are within n.
	if got := BlockPeak(buf, 4); got != 5000 {
		t.Errorf("BlockPeak(buf, 4) = %v, want 5000", got)
	}

	// A trailing odd byte is ignored.
	if got := BlockPeak(buf, 5); got != 5000 {
		t.Errorf("BlockPeak(buf, 5) = %v, want 5000", got)
	}
}

func TestDecibels(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      float64
	}{
		{32768, 0},
		{16384, -6.0206},
		{3276.8, -20},
	}

	for _, tt := range tests {
		got := Decibels(tt.magnitude)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("Decibels(%v) = %v, want %v", tt.magnitude, got, tt.want)
		}
	}
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		want      string
	}{
		{"silence stays bare zero", 0, "0"},
		{"full scale", 32768, "32768 (0.0 dB)"},
		{"half scale", 16384, "16384 (-6.0 dB)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLevel(tt.magnitude); got != tt.want {
				t.Errorf("FormatLevel(%v) = %q, want %q", tt.magnitude, got, tt.want)
			}
		})
	}
}

func TestDominantLabel(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{-1, ""},
		{0, "select 1"},
		{3, "select 4"},
	}

	for _, tt := range tests {
		if got := DominantLabel(tt.index); got != tt.want {
			t.Errorf("DominantLabel(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

// Package audio provides level accumulation, dominant-channel monitoring and
// quiet detection for concurrently playing PCM channels.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// MinDB is the minimum dB level (silence).
	MinDB = -60.0
	// MaxSampleValue is the full-scale reference for 16-bit signed audio.
	MaxSampleValue = 32768.0
)

// LevelAccumulator collects absolute sample magnitudes for one channel
// within a single monitor window. Sum and Count always reset together.
type LevelAccumulator struct {
	Sum   float64 // Running sum of observed magnitudes since last reset
	Count int     // Number of observations since last reset
	Peak  float64 // Largest single magnitude since last reset
}

// Observe records one magnitude observation. Magnitude zero (silence) is valid.
func (a *LevelAccumulator) Observe(magnitude float64) {
	a.Sum += magnitude
	a.Count++
	if magnitude > a.Peak {
		a.Peak = magnitude
	}
}

// Average returns the mean magnitude of the current window.
// Returns 0 when no observations were made.
func (a *LevelAccumulator) Average() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// Reset clears the accumulator for the next window.
func (a *LevelAccumulator) Reset() {
	a.Sum = 0
	a.Count = 0
	a.Peak = 0
}

// BlockPeak returns the largest absolute sample value in an S16LE PCM block.
// Only the first n bytes of buf are examined.
func BlockPeak(buf []byte, n int) float64 {
	var peak float64
	for i := 0; i+1 < n; i += 2 {
		sample := int16(binary.LittleEndian.Uint16(buf[i:]))
		if abs := math.Abs(float64(sample)); abs > peak {
			peak = abs
		}
	}
	return peak
}

// Decibels converts an absolute sample magnitude to dBFS.
// The caller must ensure magnitude > 0; log10 of zero is undefined.
func Decibels(magnitude float64) float64 {
	return 20 * math.Log10(magnitude/MaxSampleValue)
}

// FormatLevel renders a magnitude as a display label. Positive magnitudes get
// a dB suffix to one decimal place; zero stays a bare "0" because the dB value
// of silence is undefined and must not be computed.
func FormatLevel(magnitude float64) string {
	if magnitude > 0 {
		return fmt.Sprintf("%.0f (%.1f dB)", magnitude, Decibels(magnitude))
	}
	return "0"
}

// DominantLabel renders the aggregate display string for a dominant channel
// index, using one-based numbering for the operator.
func DominantLabel(index int) string {
	if index < 0 {
		return ""
	}
	return fmt.Sprintf("select %d", index+1)
}

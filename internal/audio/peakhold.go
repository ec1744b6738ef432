package audio

import (
	"sync"
	"time"
)

// DefaultPeakHoldDuration is the default duration that peak values are held before decaying.
const DefaultPeakHoldDuration = 3000 * time.Millisecond

// PeakHolder tracks peak-hold state for a set of channel meters.
// It is safe for concurrent use.
type PeakHolder struct {
	mu           sync.Mutex
	held         []float64
	heldAt       []time.Time
	holdDuration time.Duration
}

// NewPeakHolder creates a peak holder for the given number of channels
// with the default hold duration.
func NewPeakHolder(channels int) *PeakHolder {
	return &PeakHolder{
		held:         make([]float64, channels),
		heldAt:       make([]time.Time, channels),
		holdDuration: DefaultPeakHoldDuration,
	}
}

// Update feeds a new peak magnitude for one channel and returns the held peak.
// Out-of-range channels return 0.
func (p *PeakHolder) Update(channel int, peak float64, now time.Time) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if channel < 0 || channel >= len(p.held) {
		return 0
	}
	if peak >= p.held[channel] || now.Sub(p.heldAt[channel]) > p.holdDuration {
		p.held[channel] = peak
		p.heldAt[channel] = now
	}
	return p.held[channel]
}

// SetHoldDuration updates the peak hold duration.
func (p *PeakHolder) SetHoldDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.holdDuration = d
}

// Reset clears all held peaks and resizes to the given channel count.
func (p *PeakHolder) Reset(channels int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = make([]float64, channels)
	p.heldAt = make([]time.Time, channels)
}

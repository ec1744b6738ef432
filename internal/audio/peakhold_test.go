package audio

import (
	"testing"
	"time"
)

func TestPeakHolderHoldsAndDecays(t *testing.T) {
	p := NewPeakHolder(2)
	p.SetHoldDuration(100 * time.Millisecond)
	base := time.Now()

	if got := p.Update(0, 5000, base); got != 5000 {
		t.Errorf("Update() = %v, want 5000", got)
	}

	// Lower peak within the hold window keeps the held value.
	if got := p.Update(0, 1000, base.Add(50*time.Millisecond)); got != 5000 {
		t.Errorf("Update() = %v, want held 5000", got)
	}

	// Higher peak replaces immediately.
	if got := p.Update(0, 8000, base.Add(60*time.Millisecond)); got != 8000 {
		t.Errorf("Update() = %v, want 8000", got)
	}

	// After the hold duration the lower value takes over.
	if got := p.Update(0, 1000, base.Add(300*time.Millisecond)); got != 1000 {
		t.Errorf("Update() = %v, want 1000 after hold expired", got)
	}
}

func TestPeakHolderOutOfRange(t *testing.T) {
	p := NewPeakHolder(1)
	now := time.Now()

	if got := p.Update(-1, 100, now); got != 0 {
		t.Errorf("Update(-1) = %v, want 0", got)
	}
	if got := p.Update(3, 100, now); got != 0 {
		t.Errorf("Update(3) = %v, want 0", got)
	}
}

func TestPeakHolderReset(t *testing.T) {
	p := NewPeakHolder(1)
	now := time.Now()

	p.Update(0, 5000, now)
	p.Reset(3)

	if got := p.Update(2, 100, now); got != 100 {
		t.Errorf("Update(2) after Reset(3) = %v, want 100", got)
	}
	if got := p.Update(0, 50, now.Add(time.Millisecond)); got != 50 {
		t.Errorf("Update(0) after Reset = %v, want 50 (held peak cleared)", got)
	}
}

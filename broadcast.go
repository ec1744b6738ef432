package main

import (
	"sync"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

// reportBroadcast fans window reports out to every connected WebSocket
// client. Slow subscribers drop reports instead of blocking the monitor.
type reportBroadcast struct {
	mu   sync.Mutex
	subs map[chan types.DominantReport]struct{}
}

func newReportBroadcast() *reportBroadcast {
	return &reportBroadcast{
		subs: make(map[chan types.DominantReport]struct{}),
	}
}

// subscribe registers a new report channel.
func (b *reportBroadcast) subscribe() chan types.DominantReport {
	ch := make(chan types.DominantReport, 4)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// unsubscribe removes a report channel.
func (b *reportBroadcast) unsubscribe(ch chan types.DominantReport) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// publish delivers one report to every subscriber without blocking.
func (b *reportBroadcast) publish(report types.DominantReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- report:
		default:
		}
	}
}

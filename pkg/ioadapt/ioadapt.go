// Package ioadapt provides the transport adapters that feed the driver:
// an ANSI console for single-player sessions, a telnet/TCP server and a
// websocket gateway for multi-user worlds. Each adapter implements
// driver.Connection; the driver never sees the transport underneath.
package ioadapt

import (
	"strings"
	"sync"
)

// lineBuffer is the shared input side of every adapter: a queue of
// complete lines plus the availability signal the driver selects on.
type lineBuffer struct {
	mu      sync.Mutex
	pending []string
	avail   chan struct{}
	brk     bool
}

func newLineBuffer() lineBuffer {
	return lineBuffer{avail: make(chan struct{}, 1)}
}

// push queues one input line and signals availability.
func (b *lineBuffer) push(line string) {
	b.mu.Lock()
	b.pending = append(b.pending, strings.TrimRight(line, "\r\n"))
	b.mu.Unlock()
	select {
	case b.avail <- struct{}{}:
	default:
	}
}

// PendingInput drains the queued lines.
func (b *lineBuffer) PendingInput() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// InputAvailable is signalled whenever a line is queued.
func (b *lineBuffer) InputAvailable() <-chan struct{} { return b.avail }

// Break records an interrupt. BreakPressed consumes it.
func (b *lineBuffer) Break() {
	b.mu.Lock()
	b.brk = true
	b.mu.Unlock()
	select {
	case b.avail <- struct{}{}:
	default:
	}
}

// BreakPressed reports and clears the pending interrupt flag.
func (b *lineBuffer) BreakPressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	was := b.brk
	b.brk = false
	return was
}

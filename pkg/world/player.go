package world

import (
	"sync"
	"time"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/pubsub"
)

// Player is a living with an attached connection. The driver goroutine
// writes output paragraphs; the I/O adapter goroutine queues input
// lines and drains output, so both sides carry locks.
type Player struct {
	Living

	// Brief suppresses full location descriptions for known locations.
	Brief bool
	// HintsEnabled / Recap hold the story-progress helper state.
	HintsEnabled bool
	Recap        []string

	mu             sync.Mutex
	output         []string
	input          []string
	inputAvailable chan struct{}
	lastInput      time.Time
	known          map[*Location]bool
	taps           []*pubsub.Topic
	closed         bool
}

// NewPlayer creates a player living.
func NewPlayer(name string, gender lang.Gender, race string) *Player {
	p := &Player{
		Living:         *NewLiving(name, gender, race),
		HintsEnabled:   true,
		inputAvailable: make(chan struct{}, 1),
		known:          make(map[*Location]bool),
		lastInput:      time.Now(),
	}
	p.TellHook = p.appendOutput
	return p
}

func (p *Player) appendOutput(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.output = append(p.output, msg)
	}
}

// AddRecap records a story milestone for the recap command. Duplicate
// consecutive lines are dropped.
func (p *Player) AddRecap(line string) {
	if n := len(p.Recap); n > 0 && p.Recap[n-1] == line {
		return
	}
	p.Recap = append(p.Recap, line)
}

// Tell buffers a paragraph of output for this player. One command's
// output forms one contiguous region, flushed at the end of the
// command or tick.
func (p *Player) Tell(msg string) {
	p.Living.Tell(msg)
}

// DrainOutput returns all buffered output paragraphs and clears the
// buffer. Called by the I/O adapter / driver flush.
func (p *Player) DrainOutput() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.output
	p.output = nil
	return out
}

// QueueInput adds an input line (already trimmed by the adapter) and
// signals availability. Safe to call from adapter goroutines.
func (p *Player) QueueInput(line string) {
	p.mu.Lock()
	p.input = append(p.input, line)
	p.lastInput = time.Now()
	p.mu.Unlock()
	select {
	case p.inputAvailable <- struct{}{}:
	default:
	}
}

// PendingInput drains and returns all queued input lines.
func (p *Player) PendingInput() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	in := p.input
	p.input = nil
	return in
}

// InputAvailable is a signal channel the driver can select on.
func (p *Player) InputAvailable() <-chan struct{} { return p.inputAvailable }

// HasInput reports whether input lines are queued.
func (p *Player) HasInput() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.input) > 0
}

// IdleFor returns how long ago the player last entered input.
func (p *Player) IdleFor() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.lastInput)
}

// KnowsLocation reports (and records) whether the player has seen the
// location before; used by brief mode.
func (p *Player) KnowsLocation(loc *Location) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.known[loc] {
		return true
	}
	p.known[loc] = true
	return false
}

// RememberWiretap records a wiretap subscription held by this player so
// Destroy can release it. This is the explicit-handle replacement for
// weak references: the subscriber owns the handle.
func (p *Player) RememberWiretap(t *pubsub.Topic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.taps = append(p.taps, t)
}

// Wiretaps returns the wiretap topics this player listens on.
func (p *Player) Wiretaps() []*pubsub.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*pubsub.Topic, len(p.taps))
	copy(out, p.taps)
	return out
}

// PubsubEvent implements pubsub.Listener so the player can be
// subscribed to wiretap topics directly.
func (p *Player) PubsubEvent(topic string, ev pubsub.Event) error {
	if tap, ok := ev.(WiretapEvent); ok {
		p.appendOutput("[wiretap on '" + tap.Sender + "': " + tap.Message + "]")
	}
	return nil
}

// Closed implements pubsub.Listener.
func (p *Player) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Destroy detaches the player from its wiretap subscriptions, closes
// the buffers, then destroys the underlying living.
func (p *Player) Destroy() {
	p.mu.Lock()
	taps := p.taps
	p.taps = nil
	p.closed = true
	p.output = nil
	p.input = nil
	p.mu.Unlock()
	for _, t := range taps {
		t.Unsubscribe(p)
	}
	p.Living.Destroy()
}

var _ pubsub.Listener = (*Player)(nil)

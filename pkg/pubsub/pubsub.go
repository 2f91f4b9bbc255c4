// Package pubsub implements the driver's named-topic event bus.
// Game code emits events to topics; each listener (player wiretap,
// driver queue drain, etc.) consumes them either immediately or on the
// next Sync. Listeners report Closed when their owner is destroyed and
// are pruned automatically, so a topic never keeps a dead player alive.
package pubsub

import (
	"errors"
	"sync"
)

// ErrNotYet can be returned by a listener to leave the event pending;
// it will be offered again on the next Sync.
var ErrNotYet = errors.New("pubsub: not yet")

// Event is an opaque payload published to a topic.
type Event any

// Listener receives events from topics it subscribed to.
type Listener interface {
	// PubsubEvent handles one event. Returning ErrNotYet keeps the
	// event queued for the next Sync; any other error is ignored.
	PubsubEvent(topic string, ev Event) error
	// Closed reports that the listener's owner is gone and the
	// subscription should be dropped.
	Closed() bool
}

// Topic is a named event stream. Obtain instances through a Registry so
// equal names share one Topic.
type Topic struct {
	Name string

	mu        sync.Mutex
	listeners []Listener
	pending   []Event
}

// Subscribe registers a listener. Subscribing twice is a no-op.
func (t *Topic) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.listeners {
		if existing == l {
			return
		}
	}
	t.listeners = append(t.listeners, l)
}

// Unsubscribe removes a listener.
func (t *Topic) Unsubscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.listeners {
		if existing == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of live listeners.
func (t *Topic) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, l := range t.listeners {
		if !l.Closed() {
			n++
		}
	}
	return n
}

// Send publishes an event. With synchronous set the event is delivered
// before Send returns (pending events drain first, preserving order);
// otherwise it is stored for the next Sync.
func (t *Topic) Send(ev Event, synchronous bool) {
	t.mu.Lock()
	t.pending = append(t.pending, ev)
	t.mu.Unlock()
	if synchronous {
		t.Sync()
	}
}

// Sync delivers all pending events to all live listeners. An event for
// which any listener returned ErrNotYet stays queued; everything else is
// consumed. Closed listeners are pruned.
func (t *Topic) Sync() {
	t.mu.Lock()
	events := t.pending
	t.pending = nil
	live := t.listeners[:0]
	for _, l := range t.listeners {
		if !l.Closed() {
			live = append(live, l)
		}
	}
	t.listeners = live
	listeners := make([]Listener, len(live))
	copy(listeners, live)
	t.mu.Unlock()

	var retained []Event
	for _, ev := range events {
		keep := false
		for _, l := range listeners {
			if l.Closed() {
				continue
			}
			if err := l.PubsubEvent(t.Name, ev); errors.Is(err, ErrNotYet) {
				keep = true
			}
		}
		if keep {
			retained = append(retained, ev)
		}
	}
	if len(retained) > 0 {
		t.mu.Lock()
		t.pending = append(retained, t.pending...)
		t.mu.Unlock()
	}
}

// Pending returns the number of events waiting for delivery.
func (t *Topic) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Clear drops all listeners and pending events. Used when the topic's
// owning entity is destroyed.
func (t *Topic) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = nil
	t.pending = nil
}

// Registry hands out singleton topics by name.
type Registry struct {
	mu     sync.Mutex
	topics map[string]*Topic
}

// NewRegistry creates an empty topic registry.
func NewRegistry() *Registry {
	return &Registry{topics: make(map[string]*Topic)}
}

// Topic returns the topic with the given name, creating it on first use.
func (r *Registry) Topic(name string) *Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[name]
	if !ok {
		t = &Topic{Name: name}
		r.topics[name] = t
	}
	return t
}

// Len reports the number of live topics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}

// UnsubscribeAll removes a listener from every topic in the registry.
func (r *Registry) UnsubscribeAll(l Listener) {
	r.mu.Lock()
	topics := make([]*Topic, 0, len(r.topics))
	for _, t := range r.topics {
		topics = append(topics, t)
	}
	r.mu.Unlock()
	for _, t := range topics {
		t.Unsubscribe(l)
	}
}

// SyncAll drains pending events on every topic.
func (r *Registry) SyncAll() {
	r.mu.Lock()
	topics := make([]*Topic, 0, len(r.topics))
	for _, t := range r.topics {
		topics = append(topics, t)
	}
	r.mu.Unlock()
	for _, t := range topics {
		t.Sync()
	}
}

// Remove deletes a topic from the registry after clearing it.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	t, ok := r.topics[name]
	delete(r.topics, name)
	r.mu.Unlock()
	if ok {
		t.Clear()
	}
}

// ListenerFunc adapts a function (plus a liveness check) to Listener.
type ListenerFunc struct {
	Fn     func(topic string, ev Event) error
	IsDead func() bool
}

// PubsubEvent implements Listener.
func (lf *ListenerFunc) PubsubEvent(topic string, ev Event) error {
	return lf.Fn(topic, ev)
}

// Closed implements Listener.
func (lf *ListenerFunc) Closed() bool {
	return lf.IsDead != nil && lf.IsDead()
}

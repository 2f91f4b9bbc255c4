package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []Event
	dead   bool
	err    error
}

func (r *recorder) PubsubEvent(topic string, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) Closed() bool { return r.dead }

func TestTopicSingleton(t *testing.T) {
	reg := NewRegistry()
	a := reg.Topic("wiretap-location:town square")
	b := reg.Topic("wiretap-location:town square")
	require.Same(t, a, b)
	assert.NotSame(t, a, reg.Topic("wiretap-location:tavern"))
}

func TestSendSynchronous(t *testing.T) {
	reg := NewRegistry()
	topic := reg.Topic("t")
	rec := &recorder{}
	topic.Subscribe(rec)

	topic.Send("hello", true)
	assert.Equal(t, []Event{"hello"}, rec.events)
	assert.Zero(t, topic.Pending())
}

func TestStoreAndForward(t *testing.T) {
	reg := NewRegistry()
	topic := reg.Topic("t")
	rec := &recorder{}
	topic.Subscribe(rec)

	topic.Send("one", false)
	topic.Send("two", false)
	assert.Empty(t, rec.events)
	assert.Equal(t, 2, topic.Pending())

	topic.Sync()
	assert.Equal(t, []Event{"one", "two"}, rec.events)
	assert.Zero(t, topic.Pending())
}

func TestNotYetKeepsEventPending(t *testing.T) {
	reg := NewRegistry()
	topic := reg.Topic("t")
	rec := &recorder{err: ErrNotYet}
	topic.Subscribe(rec)

	topic.Send("later", false)
	topic.Sync()
	assert.Equal(t, 1, topic.Pending(), "event must stay queued")

	rec.err = nil
	topic.Sync()
	assert.Zero(t, topic.Pending())
	// Delivered twice: once refused, once consumed.
	assert.Equal(t, []Event{"later", "later"}, rec.events)
}

func TestClosedListenerPruned(t *testing.T) {
	reg := NewRegistry()
	topic := reg.Topic("t")
	rec := &recorder{}
	topic.Subscribe(rec)
	require.Equal(t, 1, topic.Subscribers())

	rec.dead = true
	topic.Send("x", true)
	assert.Empty(t, rec.events, "closed listener must not receive")
	assert.Zero(t, topic.Subscribers())
}

func TestUnsubscribeAll(t *testing.T) {
	reg := NewRegistry()
	rec := &recorder{}
	reg.Topic("a").Subscribe(rec)
	reg.Topic("b").Subscribe(rec)

	reg.UnsubscribeAll(rec)
	reg.Topic("a").Send("x", true)
	reg.Topic("b").Send("y", true)
	assert.Empty(t, rec.events)
}

func TestDoubleSubscribeIsNoop(t *testing.T) {
	reg := NewRegistry()
	topic := reg.Topic("t")
	rec := &recorder{}
	topic.Subscribe(rec)
	topic.Subscribe(rec)
	topic.Send("once", true)
	assert.Equal(t, []Event{"once"}, rec.events)
}

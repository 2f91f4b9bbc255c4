package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAllResolver struct{}

func (allowAllResolver) ResolveAction(owner, action string) (DeferredFunc, bool) {
	return func(ctx *Context, d *Deferred) {}, true
}

func TestDeferredOrdering(t *testing.T) {
	s := NewScheduler(allowAllResolver{})
	epoch := time.Date(2015, 4, 1, 12, 0, 0, 0, time.UTC)

	a, err := s.ScheduleAt(epoch.Add(10*time.Second), "npc", "a")
	require.NoError(t, err)
	b, err := s.ScheduleAt(epoch.Add(5*time.Second), "npc", "b")
	require.NoError(t, err)
	c, err := s.ScheduleAt(epoch.Add(5*time.Second), "npc", "c")
	require.NoError(t, err)

	// nothing due before the first deadline
	assert.Empty(t, s.PopDue(epoch.Add(4*time.Second)))

	// equal due times fire in insertion order
	due := s.PopDue(epoch.Add(5 * time.Second))
	require.Len(t, due, 2)
	assert.Same(t, b, due[0])
	assert.Same(t, c, due[1])
	assert.Equal(t, 1, s.Len())

	due = s.PopDue(epoch.Add(10 * time.Second))
	require.Len(t, due, 1)
	assert.Same(t, a, due[0])
	assert.Equal(t, 0, s.Len())
}

func TestScheduleUnresolvableActionFails(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeIF)
	_, err := d.Scheduler.ScheduleAfter(d.Clock, time.Second, "nobody", "nothing")
	assert.ErrorContains(t, err, "not addressable by name")
}

func TestCancelOwner(t *testing.T) {
	s := NewScheduler(allowAllResolver{})
	now := time.Now()
	s.ScheduleAt(now.Add(time.Second), "julie", "x")
	s.ScheduleAt(now.Add(2*time.Second), "max", "y")
	s.ScheduleAt(now.Add(3*time.Second), "julie", "z")

	assert.Equal(t, 2, s.CancelOwner("julie"))
	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "max", pending[0].Owner)
}

func TestRestoreRevalidatesAndBumpsSeq(t *testing.T) {
	s := NewScheduler(allowAllResolver{})
	now := time.Now()
	err := s.Restore([]*Deferred{
		{Due: now.Add(time.Second), Owner: "npc", Action: "a", Seq: 7},
		{Due: now.Add(time.Second), Owner: "npc", Action: "b", Seq: 3},
	})
	require.NoError(t, err)

	fresh, err := s.ScheduleAt(now.Add(time.Second), "npc", "c")
	require.NoError(t, err)
	assert.Greater(t, fresh.Seq, uint64(7))

	due := s.PopDue(now.Add(time.Second))
	require.Len(t, due, 3)
	assert.Equal(t, "b", due[0].Action)
	assert.Equal(t, "a", due[1].Action)
	assert.Equal(t, "c", due[2].Action)
}

func TestDeferredFiresThroughServerTick(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeIF)
	fired := []string{}
	d.RegisterAction("fountain", "gurgle", func(ctx *Context, def *Deferred) {
		fired = append(fired, def.Args[0])
	})
	_, err := d.Scheduler.ScheduleAfter(d.Clock, 2*time.Second, "fountain", "gurgle", "blub")
	require.NoError(t, err)

	d.serverTick(time.Second)
	assert.Empty(t, fired)
	d.serverTick(time.Second)
	assert.Equal(t, []string{"blub"}, fired)
}

func TestPeriodicDeferredReschedules(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeIF)
	count := 0
	d.RegisterAction("fountain", "gurgle", func(ctx *Context, def *Deferred) {
		count++
		ctx.Driver.Scheduler.ScheduleAfter(ctx.Clock, time.Second, "fountain", "gurgle")
	})
	_, err := d.Scheduler.ScheduleAfter(d.Clock, time.Second, "fountain", "gurgle")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		d.serverTick(time.Second)
	}
	assert.Equal(t, 3, count)
}

func TestGameClock(t *testing.T) {
	epoch := time.Date(2015, 4, 1, 12, 0, 0, 0, time.UTC)
	c := NewGameClock(epoch, 5)
	assert.Equal(t, epoch, c.Now())

	c.Advance(time.Second)
	assert.Equal(t, epoch.Add(5*time.Second), c.Now())
	assert.Equal(t, epoch.Add(55*time.Second), c.AfterReal(10*time.Second))

	c.Reset(epoch)
	assert.Equal(t, epoch, c.Now())

	frozen := NewGameClock(epoch, 0)
	frozen.Advance(time.Hour)
	assert.Equal(t, epoch, frozen.Now())
}

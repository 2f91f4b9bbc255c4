package driver

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

// sweepUntil drives the reaper on its cadence from t0 to t0+total.
func sweepUntil(d *Driver, t0 time.Time, total time.Duration) {
	ctx := d.context(nil)
	for elapsed := time.Duration(0); elapsed <= total; elapsed += reaperCadence {
		d.reaper.sweepAt(ctx, t0.Add(elapsed))
	}
}

func TestReaperEvictsLingeringPlayer(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeMUD)
	s.Player.MoveTo(d.Limbo(), nil)
	t0 := time.Now()

	sweepUntil(d, t0, 29*time.Second)
	assert.NotContains(t, conn.text(), "reaper")

	sweepUntil(d, t0, 31*time.Second)
	d.flushSession(s)
	assert.Contains(t, conn.text(), "Move along, julie")

	sweepUntil(d, t0, 63*time.Second)
	d.flushSession(s)
	out := conn.text()
	assert.Contains(t, out, "Your time here grows short")
	assert.Contains(t, out, "Last warning")
	assert.Contains(t, out, "bony finger")
	_, alive := d.Session("julie")
	assert.True(t, alive)

	// the next sweep on the 3s cadence falls at t0+66s
	sweepUntil(d, t0, 66*time.Second)
	_, alive = d.Session("julie")
	assert.False(t, alive)
	assert.True(t, conn.destroyed)
	assert.Contains(t, conn.text(), "Everything goes dark.")
}

func TestReaperLeavesWizardsAlone(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeMUD)
	s.Player.Privileges["wizard"] = true
	s.Player.MoveTo(d.Limbo(), nil)
	t0 := time.Now()

	sweepUntil(d, t0, 120*time.Second)
	d.flushSession(s)
	_, alive := d.Session("julie")
	assert.True(t, alive)

	notices := strings.Count(conn.text(), "mighty one")
	assert.Equal(t, 1, notices)
}

func TestReaperResetsWhenPlayerLeavesLimbo(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeMUD)
	square, _ := d.FindLocation("square")
	ctx := d.context(nil)
	t0 := time.Now()

	s.Player.MoveTo(d.Limbo(), nil)
	d.reaper.sweepAt(ctx, t0)
	d.reaper.sweepAt(ctx, t0.Add(30*time.Second))

	s.Player.MoveTo(square, nil)
	d.reaper.sweepAt(ctx, t0.Add(33*time.Second))

	// back in limbo; residency restarts from the next sweep
	s.Player.MoveTo(d.Limbo(), nil)
	d.reaper.sweepAt(ctx, t0.Add(36*time.Second))
	d.reaper.sweepAt(ctx, t0.Add(70*time.Second))

	_, alive := d.Session("julie")
	assert.True(t, alive)
}

func TestReaperReturnsToLimbo(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeMUD)
	square, _ := d.FindLocation("square")
	d.reaper.npc.MoveTo(square, nil)

	d.reaper.sweepAt(d.context(nil), time.Now())
	assert.Equal(t, d.Limbo(), d.reaper.npc.Location())
}

func TestReaperDestroysLingeringNPC(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeMUD)
	stray := world.NewLiving("stray", lang.Neuter, "dog")
	stray.MoveTo(d.Limbo(), nil)
	t0 := time.Now()

	sweepUntil(d, t0, 66*time.Second)
	assert.True(t, stray.Destroyed())
}

func TestReaperSweepIsScheduledAtStartup(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeMUD)
	found := false
	for _, def := range d.Scheduler.Pending() {
		if def.Owner == "reaper" && def.Action == "sweep" {
			found = true
		}
	}
	require.True(t, found)
}

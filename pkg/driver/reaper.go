package driver

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

const (
	reaperCadence = 3 * time.Second
	reaperEvictAt = 64 * time.Second
)

// reaperWarnings are the residency thresholds at which the reaper
// addresses a lingering soul, in order.
var reaperWarnings = []struct {
	after   time.Duration
	message string
}{
	{30 * time.Second, "The reaper whispers: \"You are lingering between worlds. Move along, %s.\""},
	{50 * time.Second, "The reaper rasps: \"Your time here grows short, %s.\""},
	{60 * time.Second, "The reaper hisses: \"Last warning, %s. Leave, or be removed.\""},
	{63 * time.Second, "The reaper raises a bony finger and points at you."},
}

type limboStay struct {
	firstSeen time.Time
	warnings  int
}

// reaper is the sole permanent resident of Limbo. A periodic deferred
// sweeps Limbo for lingering livings and evicts those who overstay.
// Wizards get one polite notice and are left alone.
type reaper struct {
	npc    *world.Living
	driver *Driver
	stays  map[*world.Living]*limboStay
}

// startReaper creates the reaper NPC in Limbo and schedules its sweep.
func startReaper(d *Driver) *reaper {
	npc := world.NewLiving("reaper", lang.Neuter, "elemental")
	npc.Title = "the reaper"
	npc.Description = "A tall, thin figure in a black robe. It carries a scythe and smells faintly of dust."
	npc.MoveTo(d.limbo, nil)
	r := &reaper{npc: npc, driver: d, stays: make(map[*world.Living]*limboStay)}
	d.RegisterAction(npc.Name, "sweep", func(ctx *Context, _ *Deferred) {
		r.sweepAt(ctx, time.Now())
		r.reschedule(ctx)
	})
	if _, err := d.Scheduler.ScheduleAfter(d.Clock, reaperCadence, npc.Name, "sweep"); err != nil {
		d.Log.Error("scheduling reaper sweep", zap.Error(err))
	}
	return r
}

func (r *reaper) reschedule(ctx *Context) {
	if _, err := ctx.Driver.Scheduler.ScheduleAfter(ctx.Clock, reaperCadence, r.npc.Name, "sweep"); err != nil {
		ctx.Driver.Log.Error("rescheduling reaper sweep", zap.Error(err))
	}
}

// sweepAt inspects Limbo's residents at the given wall-clock instant.
// Split off from the deferred wrapper so the eviction timeline can be
// driven with synthetic times.
func (r *reaper) sweepAt(ctx *Context, now time.Time) {
	limbo := ctx.Driver.Limbo()

	// Someone may have dragged the reaper out of Limbo. It goes back.
	if r.npc.Location() != limbo {
		if loc := r.npc.Location(); loc != nil {
			loc.Broadcast(r.npc.Title+" dissolves into gray mist.", r.npc)
		}
		r.npc.MoveTo(limbo, nil)
	}

	present := make(map[*world.Living]bool)
	for _, lv := range limbo.Livings() {
		if lv == r.npc {
			continue
		}
		present[lv] = true
		stay, ok := r.stays[lv]
		if !ok {
			stay = &limboStay{firstSeen: now}
			r.stays[lv] = stay
		}
		r.visit(ctx, lv, stay, now.Sub(stay.firstSeen))
	}
	for lv := range r.stays {
		if !present[lv] {
			delete(r.stays, lv)
		}
	}
}

func (r *reaper) visit(ctx *Context, lv *world.Living, stay *limboStay, residency time.Duration) {
	if lv.IsWizard() {
		if stay.warnings == 0 {
			stay.warnings = 1
			lv.Tell("The reaper bows. \"Apologies for the mist, mighty one. Stay as long as you wish.\"")
		}
		return
	}
	for stay.warnings < len(reaperWarnings) && residency >= reaperWarnings[stay.warnings].after {
		msg := reaperWarnings[stay.warnings].message
		stay.warnings++
		if strings.Contains(msg, "%s") {
			lv.Tell(fmt.Sprintf(msg, lv.Name))
		} else {
			lv.Tell(msg)
		}
	}
	if residency >= reaperEvictAt {
		r.evict(ctx, lv)
	}
}

func (r *reaper) evict(ctx *Context, lv *world.Living) {
	delete(r.stays, lv)
	if s, ok := ctx.Driver.Session(lv.Name); ok {
		s.Player.Tell("The reaper swings its scythe. Everything goes dark.")
		ctx.Driver.Detach(s, true)
		return
	}
	lv.Tell("The reaper swings its scythe.")
	lv.Destroy()
}

// Package demo ships the engine's built-in example story, a small
// lighthouse vignette that exercises the driver end to end: locked
// doors, item carrying, an NPC heartbeat, a scheduled deferred and a
// custom verb that completes the story.
package demo

import (
	"time"

	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/driver"
	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/soul"
	"github.com/storyloom/storyloom/pkg/world"
)

// Story is the demo story state.
type Story struct {
	cfg *driver.StoryConfig

	jetty    *world.Location
	tower    *world.Location
	lampRoom *world.Location
	lamp     *world.Item
}

// New creates the demo story with its default config.
func New() *Story {
	cfg := driver.DefaultStoryConfig()
	cfg.Name = "The Dark Lighthouse"
	cfg.Author = "Storyloom"
	cfg.AuthorAddress = "hello@storyloom.example"
	cfg.Version = "1.2"
	cfg.SupportedModes = []driver.Mode{driver.ModeIF, driver.ModeMUD}
	cfg.MoneyType = driver.MoneyModern
	cfg.ServerTickMethod = driver.TickCommand
	cfg.GametimeToRealtime = 5
	cfg.DisplayGametime = true
	cfg.Epoch = time.Date(2012, 4, 19, 14, 0, 0, 0, time.UTC)
	cfg.StartLocationPlayer = "Jetty"
	cfg.StartLocationWizard = "Lamp room"
	return &Story{cfg: cfg}
}

// SetConfig replaces the story config, for a story.yaml override.
func (st *Story) SetConfig(cfg *driver.StoryConfig) { st.cfg = cfg }

// Config implements driver.Story.
func (st *Story) Config() *driver.StoryConfig { return st.cfg }

// Init implements driver.Story.
func (st *Story) Init(d *driver.Driver) error {
	st.jetty = world.NewLocation("Jetty",
		"A weathered jetty juts into the cold sea. Spray hits the boards with every wave. "+
			"The lighthouse rises to the north, its lamp dark.")
	st.tower = world.NewLocation("Lighthouse",
		"The ground floor of the lighthouse. A spiral staircase coils upward into gloom.")
	st.lampRoom = world.NewLocation("Lamp room",
		"Glass on all sides. The great lamp sits cold in its cradle, wick trimmed and waiting.")

	door := world.NewDoor([]string{"north", "lighthouse"}, st.tower,
		"the lighthouse door", "A salt-bleached oak door, iron bound.", false, true)
	door.KeyCode = "brass key"
	st.jetty.AddExit(door)
	st.tower.AddExit(world.NewExit([]string{"south", "out"}, st.jetty,
		"the jetty", "Back out to the jetty."))
	st.tower.AddExit(world.NewExit([]string{"up", "stairs"}, st.lampRoom,
		"the staircase", "The spiral staircase to the lamp room."))
	st.lampRoom.AddExit(world.NewExit([]string{"down"}, st.tower,
		"the staircase", "Down the spiral staircase."))

	key := world.NewItem("brass key", "a brass key",
		"A heavy brass key, green with verdigris. Stamped: LAMP ROOM.")
	if err := st.jetty.Insert(key, nil); err != nil {
		return err
	}
	st.lamp = world.NewItem("lamp", "the great lamp",
		"A first-order lens around an oil lamp. It only wants a flame.")
	st.lamp.Takeable = false
	if err := st.lampRoom.Insert(st.lamp, nil); err != nil {
		return err
	}

	gull := world.NewLiving("gull", lang.Neuter, "bird")
	gull.Title = "a herring gull"
	gull.Description = "A fat herring gull with an insolent stare."
	gull.Aliases["bird"] = true
	gull.Aliases["seagull"] = true
	gull.MoveTo(st.jetty, nil)
	var beats int
	gull.Heartbeat = func(_ any) {
		beats++
		if beats%12 == 0 {
			if loc := gull.Location(); loc != nil {
				loc.Broadcast("The gull screams at the sea.", gull)
			}
		}
	}
	d.RegisterHeartbeat(gull)

	d.AddLocation(st.jetty)
	d.AddLocation(st.tower)
	d.AddLocation(st.lampRoom)

	d.RegisterAction("lighthouse", "foghorn", func(ctx *driver.Context, def *driver.Deferred) {
		st.jetty.Broadcast("A foghorn moans somewhere across the water.", nil)
		if _, err := ctx.Driver.Scheduler.ScheduleAfter(ctx.Clock, 90*time.Second, "lighthouse", "foghorn"); err != nil {
			ctx.Driver.Log.Error("rescheduling foghorn", zap.Error(err))
		}
	})
	_, err := d.Scheduler.ScheduleAfter(d.Clock, 90*time.Second, "lighthouse", "foghorn")
	return err
}

// InitPlayer implements driver.Story.
func (st *Story) InitPlayer(p *world.Player) {
	p.Money = 8.50
	p.AddRecap("The keeper is gone and the lamp is out; ships are due before morning.")
}

// Welcome implements driver.Story.
func (st *Story) Welcome(p *world.Player) string {
	return "Welcome to \"The Dark Lighthouse\". The keeper is gone and the lamp is out; " +
		"ships are due before morning. Press enter to begin."
}

// WelcomeSavegame implements driver.Story.
func (st *Story) WelcomeSavegame(p *world.Player) string {
	return "The sea has waited for you. Press enter to continue."
}

// Goodbye implements driver.Story.
func (st *Story) Goodbye(p *world.Player) {
	p.Tell("The waves keep their own counsel. Goodbye.")
}

// Completion implements driver.Story.
func (st *Story) Completion(p *world.Player) {
	p.Tell("The beam sweeps out over the water. Somewhere out there, a helmsman breathes easier.")
	p.Tell("You have finished the story. Congratulations!")
}

// Hint implements driver.HintSource, nudging toward the next step.
func (st *Story) Hint(p *world.Player) string {
	carriesKey := false
	for _, it := range p.Inventory() {
		if it.Name == "brass key" {
			carriesKey = true
			break
		}
	}
	switch {
	case p.Location() == st.lampRoom:
		return "The lamp wants a flame. Try lighting it."
	case p.Location() == st.tower:
		return "The lamp room is at the top of the stairs."
	case !carriesKey:
		return "The keeper must have dropped his key somewhere on the jetty."
	default:
		return "That key stamped LAMP ROOM should open the lighthouse door."
	}
}

// VerbHandlers implements driver.CustomVerbs.
func (st *Story) VerbHandlers() map[string]driver.CommandFunc {
	return map[string]driver.CommandFunc{
		"light": st.cmdLight,
	}
}

// cmdLight lights the great lamp and ends the story.
func (st *Story) cmdLight(ctx *driver.Context, p *world.Player, parsed *soul.ParseResult) (*driver.Dialog, error) {
	if len(parsed.Args) == 0 {
		return nil, world.Refuse("Light what?")
	}
	if p.Location() != st.lampRoom || st.lampRoom.FindItem(parsed.Args[0]) != st.lamp {
		return nil, world.Refuse("There is nothing here to light.")
	}
	p.Tell("You touch a match to the wick. The flame catches, steadies, and the lens wakes blazing.")
	p.AddRecap("You lit the great lamp of the lighthouse.")
	st.lampRoom.Broadcast(p.Title+" lights the great lamp.", &p.Living)
	return nil, driver.ErrStoryCompleted
}

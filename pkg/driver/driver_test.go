package driver

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/pubsub"
	"github.com/storyloom/storyloom/pkg/soul"
	"github.com/storyloom/storyloom/pkg/world"
)

// testConn is an in-memory Connection.
type testConn struct {
	mu        sync.Mutex
	out       []string
	in        []string
	ch        chan struct{}
	destroyed bool
}

func newTestConn() *testConn { return &testConn{ch: make(chan struct{}, 1)} }

func (c *testConn) Output(paragraphs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, paragraphs...)
}

func (c *testConn) WriteInputPrompt() {}

func (c *testConn) PendingInput() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	in := c.in
	c.in = nil
	return in
}

func (c *testConn) InputAvailable() <-chan struct{} { return c.ch }
func (c *testConn) ClearScreen()                    {}
func (c *testConn) BreakPressed() bool              { return false }
func (c *testConn) Destroy()                        { c.destroyed = true }

func (c *testConn) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.out, "\n")
}

func (c *testConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = nil
}

// testStory is a two-room world: a square with a bar to the north.
type testStory struct {
	cfg       *StoryConfig
	completed bool
}

func newTestStory() *testStory {
	cfg := DefaultStoryConfig()
	cfg.Name = "Driver Test World"
	cfg.SupportedModes = []Mode{ModeIF, ModeMUD}
	cfg.StartLocationPlayer = "square"
	cfg.Epoch = time.Date(2015, 4, 1, 12, 0, 0, 0, time.UTC)
	cfg.GametimeToRealtime = 1
	return &testStory{cfg: cfg}
}

func (st *testStory) Config() *StoryConfig { return st.cfg }

func (st *testStory) Init(d *Driver) error {
	square := world.NewLocation("square", "The town square. A fountain gurgles.")
	bar := world.NewLocation("bar", "A dim bar with sticky tables.")
	square.AddExit(world.NewExit([]string{"north"}, bar, "north", "The bar entrance is north."))
	bar.AddExit(world.NewExit([]string{"south"}, square, "south", "The square lies south."))
	square.Insert(world.NewItem("coin", "a shiny coin", ""), nil)
	d.AddLocation(square)
	d.AddLocation(bar)
	return nil
}

func (st *testStory) InitPlayer(p *world.Player)             {}
func (st *testStory) Welcome(p *world.Player) string         { return "" }
func (st *testStory) WelcomeSavegame(p *world.Player) string { return "" }
func (st *testStory) Goodbye(p *world.Player)                {}
func (st *testStory) Completion(p *world.Player)             { st.completed = true }

func newTestDriver(t *testing.T, mode Mode) (*Driver, *Session, *testConn) {
	t.Helper()
	d, err := New(newTestStory(), mode, zap.NewNop())
	require.NoError(t, err)
	d.SaveDir = t.TempDir()
	conn := newTestConn()
	p := world.NewPlayer("julie", lang.Female, "human")
	square, ok := d.FindLocation("square")
	require.True(t, ok)
	p.MoveTo(square, nil)
	s := d.Attach(p, conn, nil)
	return d, s, conn
}

// addNPC puts an NPC with a capture buffer into the player's location.
func addNPC(s *Session, name string, gender lang.Gender) (*world.Living, *[]string) {
	npc := world.NewLiving(name, gender, "human")
	npc.Title = name
	var heard []string
	npc.TellHook = func(msg string) { heard = append(heard, msg) }
	npc.MoveTo(s.Player.Location(), nil)
	return npc, &heard
}

func TestDispatchSoulEmote(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "smile")
	assert.Contains(t, conn.text(), "You smile.")
}

func TestGazeDispatchesAsSoulEmote(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "gaze")
	assert.Contains(t, conn.text(), "You gaze around.")
}

func TestDispatchEmoteReachesTarget(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	_, heard := addNPC(s, "max", lang.Male)
	d.handleLine(s, "smile at max")
	assert.Contains(t, conn.text(), "You smile at max.")
	require.NotEmpty(t, *heard)
	assert.Contains(t, *heard, "Julie smiles at you.")
}

func TestNotifyEventReachesRoomListeners(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	square, ok := d.FindLocation("square")
	require.True(t, ok)

	var notified []NotifyEvent
	square.Wiretap().Subscribe(&pubsub.ListenerFunc{
		Fn: func(_ string, ev pubsub.Event) error {
			if ne, ok := ev.(NotifyEvent); ok {
				notified = append(notified, ne)
			}
			return nil
		},
	})

	d.handleLine(s, "look")
	square.Wiretap().Sync()
	require.Len(t, notified, 1)
	assert.Same(t, &s.Player.Living, notified[0].Actor)
	assert.Equal(t, "look", notified[0].Parsed.Verb)
}

func TestAbbreviatedDirectionWithoutExit(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "e")
	assert.Contains(t, conn.text(), "The verb east is unrecognized. (You can't go that way.)")
}

func TestDispatchUnknownVerb(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "frobnicate")
	assert.Contains(t, conn.text(), "The verb frobnicate is unrecognized.")
}

func TestMovementThroughExit(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "north")
	assert.Equal(t, "bar", s.Player.Location().Name)
	assert.Contains(t, conn.text(), "bar")

	conn.reset()
	d.handleLine(s, "s")
	assert.Equal(t, "square", s.Player.Location().Name)
}

func TestMovementVerbWithDirection(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	d.handleLine(s, "go north")
	assert.Equal(t, "bar", s.Player.Location().Name)
}

func TestQualifierRejectedOnCommand(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "fail take coin")
	assert.Contains(t, conn.text(), "You can't use a qualifier with that.")
	assert.Empty(t, s.Player.Inventory())
}

func TestTakeAndInventory(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "take coin")
	require.Len(t, s.Player.Inventory(), 1)
	conn.reset()
	d.handleLine(s, "i")
	assert.Contains(t, conn.text(), "a shiny coin")
}

func TestSayIsRawCommand(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	_, heard := addNPC(s, "max", lang.Male)
	d.handleLine(s, "'hello there, don't mind me")
	assert.Contains(t, conn.text(), "hello there, don't mind me")
	require.NotEmpty(t, *heard)
	assert.Contains(t, (*heard)[0], "hello there, don't mind me")
}

func TestWizardCommandHiddenFromMortals(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "teleport bar")
	assert.Contains(t, conn.text(), "The verb teleport is unrecognized.")
	assert.Equal(t, "square", s.Player.Location().Name)
}

func TestWizardTeleport(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	s.Player.Privileges["wizard"] = true
	d.handleLine(s, "teleport bar")
	assert.Equal(t, "bar", s.Player.Location().Name)
}

func TestDialogChaining(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	var answers []string
	d.StartDialog(s, &Dialog{
		Prompt: "First question?",
		Resume: func(ctx *Context, answer string) (*Dialog, error) {
			answers = append(answers, answer)
			return &Dialog{
				Prompt: "Second question?",
				Resume: func(ctx *Context, answer string) (*Dialog, error) {
					answers = append(answers, answer)
					return nil, nil
				},
			}, nil
		},
	})
	d.drainAsyncDialogs()
	require.True(t, s.AwaitingInput())
	assert.Contains(t, conn.text(), "First question?")

	d.handleLine(s, "one")
	require.True(t, s.AwaitingInput())
	assert.Contains(t, conn.text(), "Second question?")

	d.handleLine(s, "two")
	assert.False(t, s.AwaitingInput())
	assert.Equal(t, []string{"one", "two"}, answers)
}

func TestYesNoDialogRepromptsOnGibberish(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	var got bool
	d.StartDialog(s, YesNoDialog("Sure?", func(ctx *Context, yes bool) (*Dialog, error) {
		got = yes
		return nil, nil
	}))
	d.drainAsyncDialogs()

	d.handleLine(s, "maybe")
	assert.True(t, s.AwaitingInput())
	assert.Contains(t, conn.text(), "Please answer yes or no.")

	d.handleLine(s, "y")
	assert.False(t, s.AwaitingInput())
	assert.True(t, got)
}

func TestQuitConfirms(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "quit")
	d.drainAsyncDialogs()
	require.True(t, s.AwaitingInput())

	d.handleLine(s, "no")
	assert.False(t, s.AwaitingInput())
	_, stillThere := d.Session("julie")
	assert.True(t, stillThere)

	d.handleLine(s, "quit")
	d.drainAsyncDialogs()
	d.handleLine(s, "yes")
	_, stillThere = d.Session("julie")
	assert.False(t, stillThere)
	assert.True(t, conn.destroyed)
}

func TestDeferTellArrivesAtEndOfTick(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.DeferTell(&s.Player.Living, "a voice from nowhere")
	assert.NotContains(t, conn.text(), "a voice from nowhere")
	d.drainPendingTells()
	d.flushSession(s)
	assert.Contains(t, conn.text(), "a voice from nowhere")
}

func TestAfterPlayerActionRunsOnTick(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeIF)
	ran := false
	d.AfterPlayerAction(func(ctx *Context) { ran = true })
	assert.False(t, ran)
	d.drainPendingActions()
	assert.True(t, ran)
}

func TestDetachBroadcastsAndCancelsDeferreds(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	_, heard := addNPC(s, "max", lang.Male)
	d.RegisterAction("julie", "ping", func(ctx *Context, def *Deferred) {})
	_, err := d.Scheduler.ScheduleAfter(d.Clock, time.Minute, "julie", "ping")
	require.NoError(t, err)

	before := d.Scheduler.Len()
	d.Detach(s, true)
	assert.Equal(t, before-1, d.Scheduler.Len())
	assert.Contains(t, *heard, "Julie suddenly shimmers and fades from sight.")
}

func TestHeartbeatFanOut(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	npc, _ := addNPC(s, "max", lang.Male)
	beats := 0
	npc.Heartbeat = func(ctx any) { beats++ }
	d.RegisterHeartbeat(npc)

	d.serverTick(time.Second)
	d.serverTick(time.Second)
	assert.Equal(t, 2, beats)

	d.UnregisterHeartbeat(npc)
	d.serverTick(time.Second)
	assert.Equal(t, 2, beats)
}

func TestCommandPanicIsContained(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	require.NoError(t, d.Registry.Register(&Command{
		Verb: "explode",
		Func: func(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
			panic("boom")
		},
	}))
	d.handleLine(s, "explode")
	assert.Contains(t, conn.text(), "An internal error occurred.")
	_, alive := d.Session("julie")
	assert.True(t, alive)
}

func TestWhoDisabledInSinglePlayer(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "who")
	assert.Contains(t, conn.text(), "unrecognized")
}

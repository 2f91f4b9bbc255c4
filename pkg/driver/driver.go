// Package driver runs the game: the main loop, the deferred scheduler,
// command dispatch, sessions and dialogs, and the limbo reaper.
package driver

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/accounts"
	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/pubsub"
	"github.com/storyloom/storyloom/pkg/soul"
	"github.com/storyloom/storyloom/pkg/world"
)

// Well-known pubsub topics.
const (
	TopicAsyncDialogs   = "driver-async-dialogs"
	TopicPendingTells   = "driver-pending-tells"
	TopicPendingActions = "driver-pending-actions"
)

// TellEvent is a message deferred to end-of-tick delivery.
type TellEvent struct {
	Target  *world.Living
	Message string
}

// ActionEvent is an action queued to run after the current player
// command returns.
type ActionEvent struct {
	Fn func(ctx *Context)
}

// Connection is the I/O adapter contract. Implementations live in
// pkg/ioadapt; the driver only ever sees this interface.
type Connection interface {
	// Output delivers one rendered output region.
	Output(paragraphs []string)
	// WriteInputPrompt draws the turn prompt.
	WriteInputPrompt()
	// PendingInput drains queued input lines, each trimmed.
	PendingInput() []string
	// InputAvailable is signalled when input arrives.
	InputAvailable() <-chan struct{}
	ClearScreen()
	BreakPressed() bool
	Destroy()
}

// Context is handed to every command, dialog resume and deferred.
type Context struct {
	Driver *Driver
	Clock  *GameClock
	Config *StoryConfig
	Player *world.Player
	Conn   Connection
}

// Session pairs a connected player with its transport.
type Session struct {
	Player  *world.Player
	Conn    Connection
	Account *accounts.Account

	dialog      *Dialog
	connectedAt time.Time
}

// AwaitingInput reports whether the session is suspended in a dialog.
func (s *Session) AwaitingInput() bool { return s.dialog != nil }

// Driver owns the world clock, scheduler, registries and sessions.
type Driver struct {
	Log    *zap.Logger
	Story  Story
	Config *StoryConfig
	Mode   Mode

	Clock     *GameClock
	Scheduler *Scheduler
	Registry  *Registry
	Topics    *pubsub.Registry
	Accounts  *accounts.Store
	Metrics   *Metrics

	// SaveDir is the directory savegame databases are written to.
	// Empty means the working directory.
	SaveDir string

	limbo      *world.Location
	locations  map[string]*world.Location
	storyVerbs map[string]CommandFunc
	reaper     *reaper

	mu       sync.Mutex
	sessions map[string]*Session

	heartbeats map[*world.Living]bool
	actions    map[string]DeferredFunc

	startedAt time.Time
	lastTick  time.Time
	stopping  bool
	exitCode  int
	completed bool
}

// Uptime reports how long the driver has been running.
func (d *Driver) Uptime() time.Duration { return time.Since(d.startedAt) }

// New constructs a driver for a story in the given mode. The story
// config is validated here; failures are fatal to startup.
func New(story Story, mode Mode, log *zap.Logger) (*Driver, error) {
	cfg := story.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Supports(mode) {
		return nil, fmt.Errorf("story %q does not support %s mode", cfg.Name, mode)
	}
	if log == nil {
		log = zap.NewNop()
	}

	d := &Driver{
		Log:        log,
		Story:      story,
		Config:     cfg,
		Mode:       mode,
		Clock:      NewGameClock(cfg.Epoch, cfg.GametimeToRealtime),
		Registry:   NewRegistry(),
		Topics:     pubsub.NewRegistry(),
		limbo:      world.NewLocation("Limbo", limboDescription),
		locations:  map[string]*world.Location{},
		storyVerbs: map[string]CommandFunc{},
		sessions:   map[string]*Session{},
		heartbeats: map[*world.Living]bool{},
		actions:    map[string]DeferredFunc{},
		startedAt:  time.Now(),
		lastTick:   time.Now(),
	}
	d.Scheduler = NewScheduler(d)
	d.locations[d.limbo.Name] = d.limbo

	registerBuiltins(d.Registry)
	registerWizardBuiltins(d.Registry)

	if cv, ok := story.(CustomVerbs); ok {
		for verb, fn := range cv.VerbHandlers() {
			d.storyVerbs[verb] = fn
		}
	}
	if err := story.Init(d); err != nil {
		return nil, fmt.Errorf("story init: %w", err)
	}
	d.reaper = startReaper(d)
	return d, nil
}

const limboDescription = "The intermission between a stay in this world and your departure from it. " +
	"Gray mist surrounds you. It is extremely quiet here."

// Limbo is the sentinel location disembodied livings wait in.
func (d *Driver) Limbo() *world.Location { return d.limbo }

// AddLocation registers a location under its name so savegames, exits
// and teleports can address it.
func (d *Driver) AddLocation(loc *world.Location) {
	d.locations[loc.Name] = loc
}

// FindLocation resolves a location by name.
func (d *Driver) FindLocation(name string) (*world.Location, bool) {
	loc, ok := d.locations[name]
	return loc, ok
}

// RegisterAction makes a deferred action addressable as owner:action.
func (d *Driver) RegisterAction(owner, action string, fn DeferredFunc) {
	d.actions[owner+":"+action] = fn
}

// ResolveAction implements ActionResolver.
func (d *Driver) ResolveAction(owner, action string) (DeferredFunc, bool) {
	fn, ok := d.actions[owner+":"+action]
	return fn, ok
}

// RegisterHeartbeat subscribes a living to the per-tick heartbeat
// fan-out.
func (d *Driver) RegisterHeartbeat(lv *world.Living) {
	d.heartbeats[lv] = true
}

// UnregisterHeartbeat removes a living from the heartbeat set.
func (d *Driver) UnregisterHeartbeat(lv *world.Living) {
	delete(d.heartbeats, lv)
}

// Attach registers a connected player session. The connection map is
// only mutated at login/logout.
func (d *Driver) Attach(player *world.Player, conn Connection, account *accounts.Account) *Session {
	s := &Session{Player: player, Conn: conn, Account: account, connectedAt: time.Now()}
	d.mu.Lock()
	d.sessions[player.Name] = s
	d.mu.Unlock()
	d.Log.Info("player attached", zap.String("player", player.Name))
	return s
}

// Detach removes a session, runs the goodbye hook and tears the
// connection down.
func (d *Driver) Detach(s *Session, goodbye bool) {
	d.mu.Lock()
	delete(d.sessions, s.Player.Name)
	d.mu.Unlock()
	if goodbye {
		d.Story.Goodbye(s.Player)
	}
	d.flushSession(s)
	if loc := s.Player.Location(); loc != nil {
		loc.Broadcast(s.Player.Title+" suddenly shimmers and fades from sight.", &s.Player.Living)
	}
	d.Scheduler.CancelOwner(s.Player.Name)
	d.UnregisterHeartbeat(&s.Player.Living)
	d.Topics.UnsubscribeAll(s.Player)
	s.Player.Destroy()
	s.Conn.Destroy()
	d.Log.Info("player detached", zap.String("player", s.Player.Name))
}

// Session finds a session by player name. Readers tolerate a missing
// entry.
func (d *Driver) Session(name string) (*Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[name]
	return s, ok
}

// Sessions snapshots the session list.
func (d *Driver) Sessions() []*Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player.Name < out[j].Player.Name })
	return out
}

// Stop ends the main loop after the current iteration.
func (d *Driver) Stop(exitCode int) {
	d.stopping = true
	d.exitCode = exitCode
}

// ExitCode is the process exit code chosen during shutdown.
func (d *Driver) ExitCode() int { return d.exitCode }

// AfterPlayerAction queues fn to run after the current command
// returns, before the next tick completes.
func (d *Driver) AfterPlayerAction(fn func(ctx *Context)) {
	d.Topics.Topic(TopicPendingActions).Send(ActionEvent{Fn: fn}, false)
}

// DeferTell queues a message for end-of-tick delivery.
func (d *Driver) DeferTell(target *world.Living, msg string) {
	d.Topics.Topic(TopicPendingTells).Send(TellEvent{Target: target, Message: msg}, false)
}

// StartDialog suspends the session in a dialog; the prompt is written
// when the async-dialog topic drains at the top of the next iteration.
func (d *Driver) StartDialog(s *Session, dlg *Dialog) {
	d.Topics.Topic(TopicAsyncDialogs).Send(pendingDialog{player: s.Player, dialog: dlg}, false)
}

func (d *Driver) context(s *Session) *Context {
	ctx := &Context{Driver: d, Clock: d.Clock, Config: d.Config}
	if s != nil {
		ctx.Player = s.Player
		ctx.Conn = s.Conn
	}
	return ctx
}

// MainLoop runs the driver until Stop is called or, in IF mode, the
// single session ends. Command-paced mode blocks on player input;
// timer-paced mode polls connections on the tick interval.
func (d *Driver) MainLoop() int {
	tick := d.Config.TickInterval()
	d.lastTick = time.Now()
	for !d.stopping {
		d.iterate(tick)
		if d.Mode == ModeIF && len(d.Sessions()) == 0 {
			break
		}
	}
	d.Log.Info("driver stopped", zap.Int("exit_code", d.exitCode))
	return d.exitCode
}

// iterate is the shared loop body of both pacing variants.
func (d *Driver) iterate(tick time.Duration) {
	d.drainAsyncDialogs()

	sessions := d.Sessions()
	for _, s := range sessions {
		d.flushSession(s)
		if !s.AwaitingInput() {
			s.Conn.WriteInputPrompt()
		}
	}

	d.waitForInput(sessions, tick)

	for _, s := range d.Sessions() {
		for _, line := range s.Conn.PendingInput() {
			s.Player.QueueInput(line)
		}
		for s.Player.HasInput() {
			lines := s.Player.PendingInput()
			for _, line := range lines {
				d.handleLine(s, line)
			}
		}
	}

	d.drainPendingTells()

	if time.Since(d.lastTick) >= tick {
		d.serverTick(tick)
	}
	if d.Config.ServerTickMethod == TickCommand {
		d.Topics.SyncAll()
	}
}

// waitForInput blocks until any connection has input or the tick
// interval elapses.
func (d *Driver) waitForInput(sessions []*Session, tick time.Duration) {
	if len(sessions) == 0 {
		time.Sleep(tick)
		return
	}
	timer := time.NewTimer(tick)
	defer timer.Stop()
	cases := make([]<-chan struct{}, len(sessions))
	for i, s := range sessions {
		cases[i] = s.Conn.InputAvailable()
	}
	// Short-poll across connections; a dedicated goroutine per
	// connection would race the single-writer world model.
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-timer.C:
			return
		case <-poll.C:
			for i, s := range sessions {
				select {
				case <-cases[i]:
					return
				default:
				}
				if s.Player.HasInput() {
					return
				}
			}
		}
	}
}

// serverTick advances the clock, fans out heartbeats, fires due
// deferreds, drains the after-action queue and flushes output.
func (d *Driver) serverTick(tick time.Duration) {
	d.lastTick = time.Now()
	d.Clock.Advance(tick)
	if d.Metrics != nil {
		d.Metrics.ticksTotal.Inc()
		d.Metrics.Update(len(d.Sessions()), d.Scheduler.Len())
	}

	// Snapshot: heartbeat handlers may register or unregister.
	targets := make([]*world.Living, 0, len(d.heartbeats))
	for lv := range d.heartbeats {
		targets = append(targets, lv)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	ctx := d.context(nil)
	for _, lv := range targets {
		if lv.Heartbeat != nil {
			d.runProtected("heartbeat "+lv.Name, func() { lv.Heartbeat(ctx) })
		}
	}

	for _, def := range d.Scheduler.PopDue(d.Clock.Now()) {
		def := def
		fn, ok := d.ResolveAction(def.Owner, def.Action)
		if !ok {
			d.Log.Warn("deferred no longer resolves",
				zap.String("owner", def.Owner), zap.String("action", def.Action))
			continue
		}
		if d.Metrics != nil {
			d.Metrics.deferredsFired.Inc()
		}
		d.runProtected(def.String(), func() { fn(ctx, def) })
	}

	d.drainPendingActions()
	d.checkIdleSessions()

	for _, s := range d.Sessions() {
		d.flushSession(s)
	}
}

// runProtected isolates one heartbeat or deferred; a panic is logged
// and the tick continues.
func (d *Driver) runProtected(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.Log.Error("recovered panic",
				zap.String("in", what),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	fn()
}

func (d *Driver) drainAsyncDialogs() {
	topic := d.Topics.Topic(TopicAsyncDialogs)
	lf := &pubsub.ListenerFunc{Fn: func(_ string, ev pubsub.Event) error {
		pd, ok := ev.(pendingDialog)
		if !ok {
			return nil
		}
		if s, ok := d.Session(pd.player.Name); ok {
			s.dialog = pd.dialog
			s.Conn.Output([]string{pd.dialog.Prompt})
		}
		return nil
	}}
	topic.Subscribe(lf)
	topic.Sync()
	topic.Unsubscribe(lf)
}

func (d *Driver) drainPendingTells() {
	topic := d.Topics.Topic(TopicPendingTells)
	lf := &pubsub.ListenerFunc{Fn: func(_ string, ev pubsub.Event) error {
		if te, ok := ev.(TellEvent); ok {
			te.Target.Tell(te.Message)
		}
		return nil
	}}
	topic.Subscribe(lf)
	topic.Sync()
	topic.Unsubscribe(lf)
}

func (d *Driver) drainPendingActions() {
	topic := d.Topics.Topic(TopicPendingActions)
	ctx := d.context(nil)
	lf := &pubsub.ListenerFunc{Fn: func(_ string, ev pubsub.Event) error {
		if ae, ok := ev.(ActionEvent); ok {
			d.runProtected("after-player-action", func() { ae.Fn(ctx) })
		}
		return nil
	}}
	topic.Subscribe(lf)
	topic.Sync()
	topic.Unsubscribe(lf)
}

// flushSession moves the player's buffered output to the connection as
// one contiguous region.
func (d *Driver) flushSession(s *Session) {
	if out := s.Player.DrainOutput(); len(out) > 0 {
		s.Conn.Output(out)
	}
}

// idle thresholds for normal players and wizards.
const (
	idleLimit       = 30 * time.Minute
	idleLimitWizard = 3 * time.Hour
)

func (d *Driver) checkIdleSessions() {
	if d.Mode != ModeMUD {
		return
	}
	for _, s := range d.Sessions() {
		limit := idleLimit
		if s.Player.IsWizard() {
			limit = idleLimitWizard
		}
		if s.Player.IdleFor() > limit {
			s.Player.Tell("You have been idle for too long, and are disconnected.")
			d.Log.Info("idle disconnect", zap.String("player", s.Player.Name))
			d.Detach(s, true)
		}
	}
}

// handleLine processes one raw input line: dialog resume first,
// otherwise command dispatch.
func (d *Driver) handleLine(s *Session, line string) {
	line = strings.TrimSpace(line)
	if s.dialog != nil {
		d.resumeDialog(s, line)
		return
	}
	if line == "" {
		return
	}
	if d.Metrics != nil {
		d.Metrics.commandsTotal.Inc()
	}
	d.Dispatch(s, line)
	d.flushSession(s)
}

func (d *Driver) resumeDialog(s *Session, answer string) {
	dlg := s.dialog
	if dlg.Validate != nil {
		if err := dlg.Validate(answer); err != nil {
			// re-prompt, dialog stays pending
			s.Conn.Output([]string{err.Error(), dlg.Prompt})
			return
		}
	}
	s.dialog = nil
	next, err := dlg.Resume(d.context(s), answer)
	if err != nil {
		switch {
		case err == ErrSessionExit:
			d.Detach(s, true)
		case err == ErrStoryCompleted:
			d.storyCompleted(s)
		default:
			var retry *RetryCommandError
			if errors.As(err, &retry) {
				d.Dispatch(s, retry.Command)
				return
			}
			d.reportError(s, err, nil)
		}
		return
	}
	if next != nil {
		s.dialog = next
		s.Conn.Output([]string{next.Prompt})
	}
	d.flushSession(s)
}

// Dispatch expands abbreviations, parses and routes one command line.
func (d *Driver) Dispatch(s *Session, line string) {
	line = ExpandAbbreviation(line)
	first, remainder, _ := strings.Cut(line, " ")
	first = strings.ToLower(first)
	wizard := s.Player.IsWizard()

	// Raw commands bypass the parser entirely.
	if cmd, ok := d.Registry.Lookup(first, wizard); ok && cmd.NoSoulParse && cmd.DisabledInMode != d.Mode {
		parsed := &soul.ParseResult{Verb: first, Args: []string{remainder}, Unparsed: line}
		d.invoke(s, cmd, parsed)
		return
	}

	parsed, err := soul.Parse(&s.Player.Living, line, d.externalVerbs(s))
	if err != nil {
		var unknown *soul.UnknownVerbError
		if errors.As(err, &unknown) {
			d.handleUnknownVerb(s, unknown)
			return
		}
		d.reportError(s, err, nil)
		return
	}
	d.run(s, parsed)
}

// run routes a successful parse: command, story verb, movement or
// pure soul emote.
func (d *Driver) run(s *Session, parsed *soul.ParseResult) {
	wizard := s.Player.IsWizard()

	if cmd, ok := d.Registry.Lookup(parsed.Verb, wizard); ok && cmd.DisabledInMode != d.Mode {
		if soul.IsVerb(parsed.Verb) && !cmd.OverridesSoul {
			// soul verb wins unless the command claims it
			d.socialize(s, parsed)
			return
		}
		if parsed.Qualifier != "" {
			d.reportError(s, &soul.ParseError{Msg: "You can't use a qualifier with that."}, parsed)
			return
		}
		d.invoke(s, cmd, parsed)
		return
	}

	if fn, ok := d.storyVerbs[parsed.Verb]; ok {
		d.invoke(s, &Command{Verb: parsed.Verb, Func: fn, EnableNotify: true}, parsed)
		return
	}

	if loc := s.Player.Location(); loc != nil {
		if way, ok := loc.Exits[parsed.Verb]; ok {
			d.traverse(s, way)
			return
		}
	}

	if soul.IsVerb(parsed.Verb) {
		d.socialize(s, parsed)
		return
	}

	s.Player.Tell(fmt.Sprintf("The verb %s is unrecognized.", parsed.Verb))
}

// invoke runs a command function with the full recovery policy.
func (d *Driver) invoke(s *Session, cmd *Command, parsed *soul.ParseResult) {
	if cmd.Wizard && !s.Player.IsWizard() {
		d.reportError(s, &SecurityError{Msg: "You are not allowed to do that."}, parsed)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.internalError(s, r)
		}
	}()

	dlg, err := cmd.Func(d.context(s), s.Player, parsed)
	if err != nil {
		switch {
		case err == ErrRetrySoul:
			d.socialize(s, parsed)
		case err == ErrSessionExit:
			d.Detach(s, true)
		case err == ErrStoryCompleted:
			d.storyCompleted(s)
		default:
			var retry *RetryCommandError
			if errors.As(err, &retry) {
				d.Dispatch(s, retry.Command)
				return
			}
			d.reportError(s, err, parsed)
		}
		return
	}
	if dlg != nil {
		d.StartDialog(s, dlg)
	}
	if cmd.EnableNotify {
		if loc := s.Player.Location(); loc != nil {
			loc.Wiretap().Send(world.WiretapEvent{Sender: s.Player.Name, Message: parsed.Unparsed}, false)
			loc.Wiretap().Send(NotifyEvent{Actor: &s.Player.Living, Parsed: parsed}, false)
		}
	}
}

// socialize renders a soul emote and broadcasts the three messages.
func (d *Driver) socialize(s *Session, parsed *soul.ParseResult) {
	msgs, err := soul.Render(&s.Player.Living, parsed)
	if err != nil {
		d.reportError(s, err, parsed)
		return
	}
	s.Player.Tell(msgs.Player)
	if loc := s.Player.Location(); loc != nil {
		targets := parsed.WhoLivings()
		loc.Tell(msgs.Room, &s.Player.Living, targets, msgs.Target)
	}
}

// traverse moves the player through an exit, honoring its Allow hook.
func (d *Driver) traverse(s *Session, way world.Way) {
	if err := way.Allow(&s.Player.Living); err != nil {
		d.reportError(s, err, nil)
		return
	}
	target := way.Target()
	if target == nil {
		s.Player.Tell("That way is closed.")
		return
	}
	origin := s.Player.Location()
	if origin != nil {
		origin.Broadcast(s.Player.Title+" leaves.", &s.Player.Living)
	}
	s.Player.MoveTo(target, &s.Player.Living)
	target.Broadcast(s.Player.Title+" arrives.", &s.Player.Living)
	lookAround(d.context(s), s.Player, s.Player.KnowsLocation(target))
}

func (d *Driver) handleUnknownVerb(s *Session, unknown *soul.UnknownVerbError) {
	verb := strings.ToLower(unknown.Verb)
	if loc := s.Player.Location(); loc != nil {
		if way, ok := loc.Exits[verb]; ok {
			d.traverse(s, way)
			return
		}
	}
	if soul.MovementVerbs[verb] && len(unknown.Words) > 0 {
		if loc := s.Player.Location(); loc != nil {
			if way, ok := loc.Exits[strings.ToLower(unknown.Words[0])]; ok {
				d.traverse(s, way)
				return
			}
		}
	}
	hint := ""
	if DirectionNames[verb] {
		hint = " (You can't go that way.)"
	}
	s.Player.Tell(fmt.Sprintf("The verb %s is unrecognized.%s", unknown.Verb, hint))
}

// reportError surfaces a user-facing failure. Parse errors and
// refusals do not advance the turn.
func (d *Driver) reportError(s *Session, err error, parsed *soul.ParseResult) {
	var refused *world.ActionRefused
	var parseErr *soul.ParseError
	var security *SecurityError
	switch {
	case errors.As(err, &refused):
		verb := ""
		if parsed != nil {
			verb = parsed.QualifiedVerb()
		}
		if verb != "" && strings.Contains(refused.Msg, "%s") {
			s.Player.Tell(fmt.Sprintf(refused.Msg, verb))
		} else {
			s.Player.Tell(refused.Msg)
		}
	case errors.As(err, &parseErr):
		if d.Metrics != nil {
			d.Metrics.parseErrorsTotal.Inc()
		}
		s.Player.Tell(parseErr.Msg)
	case errors.As(err, &security):
		s.Player.Tell(security.Msg)
	default:
		s.Player.Tell(lang.FullStop(lang.Capitalize(err.Error())))
	}
	d.flushSession(s)
}

// internalError tells the player something broke, with the traceback
// in a monospaced block, and keeps the loop running.
func (d *Driver) internalError(s *Session, r any) {
	stack := debug.Stack()
	d.Log.Error("internal error in command",
		zap.String("player", s.Player.Name),
		zap.Any("panic", r),
		zap.ByteString("stack", stack))
	s.Player.Tell("An internal error occurred. The error has been logged.")
	s.Player.Tell("<monospaced>" + fmt.Sprintf("%v\n%s", r, stack) + "</monospaced>")
}

func (d *Driver) storyCompleted(s *Session) {
	if d.Mode == ModeMUD {
		return
	}
	d.completed = true
	d.Story.Completion(s.Player)
	d.flushSession(s)
	d.StartDialog(s, &Dialog{
		Prompt: "Press enter to exit.",
		Resume: func(ctx *Context, _ string) (*Dialog, error) {
			d.Detach(s, false)
			d.Stop(0)
			return nil, nil
		},
	})
}

// externalVerbs is the parser's non-emote vocabulary: registered
// commands, story verbs and the exits of the player's location.
func (d *Driver) externalVerbs(s *Session) map[string]bool {
	set := d.Registry.VerbSet(s.Player.IsWizard(), d.Mode)
	for v := range d.storyVerbs {
		set[v] = true
	}
	if loc := s.Player.Location(); loc != nil {
		for dir := range loc.Exits {
			set[dir] = true
		}
	}
	return set
}

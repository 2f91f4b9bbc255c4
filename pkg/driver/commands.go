package driver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/savegame"
	"github.com/storyloom/storyloom/pkg/soul"
	"github.com/storyloom/storyloom/pkg/world"
)

// registerBuiltins fills the normal command table.
func registerBuiltins(r *Registry) {
	r.MustRegister(&Command{Verb: "look", Func: cmdLook, EnableNotify: true,
		Help: "Look around in the surroundings."})
	r.MustRegister(&Command{Verb: "examine", Aliases: []string{"inspect"}, Func: cmdExamine, EnableNotify: true,
		Help: "Examine an item or creature in detail."})
	r.MustRegister(&Command{Verb: "inventory", Func: cmdInventory,
		Help: "Show what you are carrying."})
	r.MustRegister(&Command{Verb: "take", Aliases: []string{"get"}, Func: cmdTake, EnableNotify: true,
		Help: "Pick up an item."})
	r.MustRegister(&Command{Verb: "drop", Func: cmdDrop, EnableNotify: true,
		Help: "Drop an item you are carrying."})
	r.MustRegister(&Command{Verb: "put", Aliases: []string{"place"}, Func: cmdPut, EnableNotify: true,
		Help: "Put an item into a container."})
	r.MustRegister(&Command{Verb: "give", Func: cmdGive, EnableNotify: true,
		Help: "Give an item to someone."})
	r.MustRegister(&Command{Verb: "open", Func: cmdOpen, EnableNotify: true,
		Help: "Open a door."})
	r.MustRegister(&Command{Verb: "close", Func: cmdClose, EnableNotify: true,
		Help: "Close a door."})
	r.MustRegister(&Command{Verb: "unlock", Func: cmdUnlock, EnableNotify: true,
		Help: "Unlock a door with a key you carry."})
	r.MustRegister(&Command{Verb: "lock", Func: cmdLock, EnableNotify: true,
		Help: "Lock a door with a key you carry."})
	r.MustRegister(&Command{Verb: "say", Func: cmdSay, NoSoulParse: true,
		Help: "Say something out loud."})
	r.MustRegister(&Command{Verb: "tell", Func: cmdTell, NoSoulParse: true, DisabledInMode: ModeIF,
		Help: "Send a private message to another player."})
	r.MustRegister(&Command{Verb: "emote", Func: cmdEmote, NoSoulParse: true,
		Help: "Express a free-form action."})
	r.MustRegister(&Command{Verb: "search", Func: cmdSearch, OverridesSoul: true, EnableNotify: true,
		Help: "Search the area for something hidden."})
	r.MustRegister(&Command{Verb: "who", Func: cmdWho, DisabledInMode: ModeIF,
		Help: "Show who is connected."})
	r.MustRegister(&Command{Verb: "help", Func: cmdHelp,
		Help: "Show available commands."})
	r.MustRegister(&Command{Verb: "quit", Func: cmdQuit,
		Help: "Leave the game."})
	r.MustRegister(&Command{Verb: "save", Func: cmdSave, DisabledInMode: ModeMUD,
		Help: "Save your progress."})
	r.MustRegister(&Command{Verb: "load", Func: cmdLoad, DisabledInMode: ModeMUD,
		Help: "Return to your saved progress."})
	r.MustRegister(&Command{Verb: "wait", Func: cmdWait,
		Help: "Let game time pass."})
	r.MustRegister(&Command{Verb: "brief", Func: cmdBrief,
		Help: "Toggle short location descriptions."})
	r.MustRegister(&Command{Verb: "motd", Func: cmdMotd,
		Help: "Show the message of the day."})
	r.MustRegister(&Command{Verb: "stats", Aliases: []string{"score"}, Func: cmdStats,
		Help: "Show your character sheet."})
	r.MustRegister(&Command{Verb: "hint", Aliases: []string{"hints"}, Func: cmdHint, NoSoulParse: true,
		Help: "Get a hint about how to proceed, or turn hints on/off."})
	r.MustRegister(&Command{Verb: "recap", Func: cmdRecap,
		Help: "Recap the story so far."})
}

// lookAround renders the player's location; brief shows only the title
// of already-known locations.
func lookAround(ctx *Context, p *world.Player, known bool) {
	loc := p.Location()
	if loc == nil {
		return
	}
	p.Tell("<location>" + loc.Name + "</>")
	if !p.Brief || !known {
		p.Tell(loc.Description)
		for _, it := range loc.Items() {
			p.Tell("There is " + it.Title + " here.")
		}
		for _, lv := range loc.Livings() {
			if lv != &p.Living {
				p.Tell(lang.Capitalize(lv.Title) + " is here.")
			}
		}
	}
	if ctx.Config.ShowExitsInLook && len(loc.Exits) > 0 {
		seen := map[world.Way]bool{}
		var names []string
		for _, way := range loc.Exits {
			if seen[way] {
				continue
			}
			seen[way] = true
			names = append(names, strings.Join(way.ExitDirections(), "/"))
		}
		p.Tell("You can go " + lang.Join(names) + ".")
	}
}

func cmdLook(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if len(parsed.Who) > 0 {
		return cmdExamine(ctx, p, parsed)
	}
	lookAround(ctx, p, false)
	return nil, nil
}

// singleTarget pulls the one parse target or complains.
func singleTarget(parsed *soul.ParseResult) (soul.Who, error) {
	if len(parsed.Who) == 0 {
		return soul.Who{}, &soul.ParseError{Msg: lang.Capitalize(parsed.Verb) + " what?"}
	}
	if len(parsed.Who) > 1 {
		return soul.Who{}, &soul.ParseError{Msg: "Please be more specific; one thing at a time."}
	}
	return parsed.Who[0], nil
}

func cmdExamine(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	w, err := singleTarget(parsed)
	if err != nil {
		return nil, err
	}
	switch {
	case w.Living != nil:
		p.Tell("This is " + w.Living.Title + ".")
		if w.Living.Description != "" {
			p.Tell(w.Living.Description)
		}
	case w.Item != nil:
		p.Tell("You see " + w.Item.Title + ".")
		if w.Item.Description != "" {
			p.Tell(w.Item.Description)
		}
		if c := w.Item.AsContainer(); c != nil {
			inside := c.Inventory()
			if len(inside) == 0 {
				p.Tell("It is empty.")
			} else {
				var names []string
				for _, it := range inside {
					names = append(names, it.Title)
				}
				p.Tell("It contains " + lang.Join(names) + ".")
			}
		}
	case w.Way != nil:
		if w.Way.ExitDescription() != "" {
			p.Tell(w.Way.ExitDescription())
		} else {
			p.Tell("It looks like you can go that way.")
		}
	}
	return nil, nil
}

func cmdInventory(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	items := p.Inventory()
	if len(items) == 0 {
		p.Tell("You are carrying nothing.")
	} else {
		var names []string
		for _, it := range items {
			names = append(names, it.Title)
		}
		p.Tell("You are carrying " + lang.Join(names) + ".")
	}
	if ctx.Config.MoneyType != MoneyNone {
		p.Tell("You have " + ctx.Config.MoneyName(p.Money) + ".")
	}
	return nil, nil
}

func cmdTake(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	w, err := singleTarget(parsed)
	if err != nil {
		return nil, err
	}
	if w.Item == nil {
		if w.Living != nil {
			return nil, world.Refuse("%s is not an item you can pick up.", lang.Capitalize(w.Living.Title))
		}
		return nil, world.Refuse("You can't take that.")
	}
	if err := w.Item.MoveTo(&p.Living, &p.Living); err != nil {
		return nil, err
	}
	p.Tell("You take " + w.Item.Title + ".")
	if loc := p.Location(); loc != nil {
		loc.Broadcast(p.Title+" takes "+w.Item.Title+".", &p.Living)
	}
	return nil, nil
}

func cmdDrop(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	w, err := singleTarget(parsed)
	if err != nil {
		return nil, err
	}
	if w.Item == nil {
		return nil, world.Refuse("You can't drop that.")
	}
	loc := p.Location()
	if loc == nil {
		return nil, world.Refuse("There is nowhere to drop it.")
	}
	if err := w.Item.MoveTo(loc, &p.Living); err != nil {
		return nil, err
	}
	p.Tell("You drop " + w.Item.Title + ".")
	loc.Broadcast(p.Title+" drops "+w.Item.Title+".", &p.Living)
	return nil, nil
}

func cmdPut(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if len(parsed.Who) != 2 {
		return nil, &soul.ParseError{Msg: "Put what where?"}
	}
	item := parsed.Who[0].Item
	dest := parsed.Who[1].Item
	if item == nil || dest == nil {
		return nil, &soul.ParseError{Msg: "Put what where?"}
	}
	container := dest.AsContainer()
	if container == nil {
		return nil, world.Refuse("%s can't hold things.", lang.Capitalize(dest.Title))
	}
	if err := item.MoveTo(container, &p.Living); err != nil {
		return nil, err
	}
	p.Tell("You put " + item.Title + " in " + dest.Title + ".")
	if loc := p.Location(); loc != nil {
		loc.Broadcast(p.Title+" puts "+item.Title+" in "+dest.Title+".", &p.Living)
	}
	return nil, nil
}

func cmdGive(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	var item *world.Item
	var receiver *world.Living
	for _, w := range parsed.Who {
		if w.Item != nil && item == nil {
			item = w.Item
		}
		if w.Living != nil && receiver == nil {
			receiver = w.Living
		}
	}
	if item == nil || receiver == nil {
		return nil, &soul.ParseError{Msg: "Give what to whom?"}
	}
	if receiver == &p.Living {
		return nil, world.Refuse("You already have it.")
	}
	if err := item.MoveTo(receiver, &p.Living); err != nil {
		return nil, err
	}
	p.Tell("You give " + item.Title + " to " + receiver.Title + ".")
	receiver.Tell(p.Title + " gives you " + item.Title + ".")
	if loc := p.Location(); loc != nil {
		loc.Tell(p.Title+" gives "+item.Title+" to "+receiver.Title+".",
			&p.Living, []*world.Living{receiver}, "")
	}
	return nil, nil
}

// findDoor resolves the door a door command refers to: the named exit
// or, with no argument, the only door here.
func findDoor(p *world.Player, parsed *soul.ParseResult) (*world.Door, error) {
	loc := p.Location()
	if loc == nil {
		return nil, world.Refuse("There is no door here.")
	}
	for _, w := range parsed.Who {
		if d, ok := w.Way.(*world.Door); ok {
			return d, nil
		}
	}
	var only *world.Door
	seen := map[world.Way]bool{}
	for _, way := range loc.Exits {
		if seen[way] {
			continue
		}
		seen[way] = true
		if d, ok := way.(*world.Door); ok {
			if only != nil {
				return nil, &soul.ParseError{Msg: "Which door do you mean?"}
			}
			only = d
		}
	}
	if only == nil {
		return nil, world.Refuse("There is no door here.")
	}
	return only, nil
}

func cmdOpen(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	door, err := findDoor(p, parsed)
	if err != nil {
		return nil, err
	}
	if err := door.Open(&p.Living); err != nil {
		return nil, err
	}
	p.Tell("You open the " + door.ExitTitle() + ".")
	if loc := p.Location(); loc != nil {
		loc.Broadcast(p.Title+" opens the "+door.ExitTitle()+".", &p.Living)
	}
	return nil, nil
}

func cmdClose(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	door, err := findDoor(p, parsed)
	if err != nil {
		return nil, err
	}
	if err := door.Close(&p.Living); err != nil {
		return nil, err
	}
	p.Tell("You close the " + door.ExitTitle() + ".")
	if loc := p.Location(); loc != nil {
		loc.Broadcast(p.Title+" closes the "+door.ExitTitle()+".", &p.Living)
	}
	return nil, nil
}

// carriedKey finds a key on the player matching the door's key code.
func carriedKey(p *world.Player, door *world.Door) *world.Item {
	if door.KeyCode == "" {
		return nil
	}
	for _, it := range p.Inventory() {
		if it.Name == door.KeyCode {
			return it
		}
	}
	return nil
}

func cmdUnlock(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	door, err := findDoor(p, parsed)
	if err != nil {
		return nil, err
	}
	key := carriedKey(p, door)
	if key == nil {
		return nil, world.Refuse("You don't have the key for that.")
	}
	if err := door.Unlock(&p.Living, key); err != nil {
		return nil, err
	}
	p.Tell("You unlock the " + door.ExitTitle() + " with " + key.Title + ".")
	return nil, nil
}

func cmdLock(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	door, err := findDoor(p, parsed)
	if err != nil {
		return nil, err
	}
	key := carriedKey(p, door)
	if key == nil {
		return nil, world.Refuse("You don't have the key for that.")
	}
	if err := door.Lock(&p.Living, key); err != nil {
		return nil, err
	}
	p.Tell("You lock the " + door.ExitTitle() + " with " + key.Title + ".")
	return nil, nil
}

func cmdSay(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	text := strings.TrimSpace(rawArg(parsed))
	if text == "" {
		return nil, &soul.ParseError{Msg: "Say what?"}
	}
	p.Tell("You say: " + text)
	if loc := p.Location(); loc != nil {
		loc.Broadcast(lang.Capitalize(p.Title)+" says: "+text, &p.Living)
	}
	return nil, nil
}

func cmdEmote(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	text := strings.TrimSpace(rawArg(parsed))
	if text == "" {
		return nil, &soul.ParseError{Msg: "Emote what?"}
	}
	msg := lang.FullStop(lang.Capitalize(p.Title) + " " + text)
	p.Tell(msg)
	if loc := p.Location(); loc != nil {
		loc.Broadcast(msg, &p.Living)
	}
	return nil, nil
}

func cmdSearch(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	p.Tell("You search the area, but find nothing of interest.")
	if loc := p.Location(); loc != nil {
		loc.Broadcast(p.Title+" searches the area.", &p.Living)
	}
	return nil, nil
}

func cmdWho(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	sessions := ctx.Driver.Sessions()
	p.Tell(fmt.Sprintf("There %s %d player%s connected:",
		pluralIs(len(sessions)), len(sessions), pluralS(len(sessions))))
	for _, s := range sessions {
		mark := ""
		if s.Player.IsWizard() {
			mark = " (wizard)"
		}
		where := "nowhere"
		if loc := s.Player.Location(); loc != nil {
			where = loc.Name
		}
		p.Tell(" <player>" + s.Player.Title + "</>" + mark + " - " + where)
	}
	return nil, nil
}

func pluralIs(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func cmdHelp(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	reg := ctx.Driver.Registry
	if len(parsed.Args) > 0 {
		verb := strings.ToLower(parsed.Args[0])
		if cmd, ok := reg.Lookup(verb, p.IsWizard()); ok && cmd.Help != "" {
			p.Tell(cmd.Help)
			return nil, nil
		}
		if soul.IsVerb(verb) {
			p.Tell("That is an emote; try it and see.")
			return nil, nil
		}
		p.Tell("No help available for that.")
		return nil, nil
	}
	p.Tell("Available commands:")
	p.Tell("<monospaced>" + strings.Join(reg.Verbs(p.IsWizard(), ctx.Driver.Mode), ", ") + "</monospaced>")
	p.Tell("Most common emote verbs also work; try 'smile' or 'wave'.")
	return nil, nil
}

func cmdQuit(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	return YesNoDialog("Are you sure you want to quit?", func(ctx *Context, yes bool) (*Dialog, error) {
		if !yes {
			ctx.Player.Tell("Good, because giving up is no fun.")
			return nil, nil
		}
		return nil, ErrSessionExit
	}), nil
}

func cmdSave(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if !ctx.Config.SavegamesEnabled {
		p.Tell("Sorry, saving is not supported in this story.")
		return nil, nil
	}
	if err := ctx.Driver.SaveSnapshot(p); err != nil {
		return nil, fmt.Errorf("saving game: %w", err)
	}
	p.Tell("Game saved.")
	if ctx.Config.DisplayGametime {
		p.Tell("Game time: " + ctx.Clock.String())
	}
	return nil, nil
}

func cmdLoad(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if !ctx.Config.SavegamesEnabled {
		p.Tell("Sorry, saving is not supported in this story.")
		return nil, nil
	}
	if !ctx.Driver.hasSavegame() {
		return nil, world.Refuse("There is no saved game.")
	}
	return YesNoDialog("This will discard your current progress and return to the saved game. Continue?",
		func(ctx *Context, yes bool) (*Dialog, error) {
			if !yes {
				return nil, nil
			}
			if err := ctx.Driver.LoadSnapshot(ctx.Player); err != nil {
				if errors.Is(err, savegame.ErrVersionMismatch) {
					ctx.Player.Tell("This saved game was written by a different version and cannot be loaded.")
					if s, ok := ctx.Driver.Session(ctx.Player.Name); ok {
						ctx.Driver.Detach(s, false)
					}
					ctx.Driver.Stop(exitCodeSaveMismatch)
					return nil, nil
				}
				return nil, fmt.Errorf("loading game: %w", err)
			}
			if msg := ctx.Driver.Story.WelcomeSavegame(ctx.Player); msg != "" {
				ctx.Player.Tell(msg)
			}
			lookAround(ctx, ctx.Player, true)
			return nil, nil
		}), nil
}

func cmdTell(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	fields := strings.Fields(rawArg(parsed))
	if len(fields) < 2 {
		return nil, &soul.ParseError{Msg: "Tell whom what?"}
	}
	name := strings.ToLower(fields[0])
	text := strings.Join(fields[1:], " ")
	other, ok := ctx.Driver.Session(name)
	if !ok {
		return nil, world.Refuse("%s is not connected.", lang.Capitalize(name))
	}
	if other.Player == p {
		return nil, world.Refuse("Talking to yourself is the first sign of madness.")
	}
	other.Player.Tell(p.Title + " tells you: " + text)
	p.Tell("You tell " + other.Player.Title + ": " + text)
	return nil, nil
}

func cmdMotd(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	motd, err := ctx.Driver.ReadMOTD()
	if err != nil || motd == "" {
		p.Tell("There is no message of the day.")
		return nil, nil
	}
	p.Tell(motd)
	return nil, nil
}

func cmdStats(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	p.Tell("You are " + p.Title + ", " + lang.Article(p.Gender.Adjective()) + " " +
		p.Gender.Adjective() + " " + p.Race + ".")
	if p.Stats.Level > 0 {
		p.Tell(fmt.Sprintf("Level %d, %d XP, %d HP.", p.Stats.Level, p.Stats.XP, p.Stats.HP))
	}
	if ctx.Config.MoneyType != MoneyNone {
		p.Tell("You have " + ctx.Config.MoneyName(p.Money) + ".")
	}
	if ctx.Config.DisplayGametime {
		p.Tell("It is " + ctx.Clock.String() + ".")
	}
	return nil, nil
}

func cmdHint(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	switch strings.ToLower(strings.TrimSpace(rawArg(parsed))) {
	case "off":
		p.HintsEnabled = false
		p.Tell("Hints are off.")
		return nil, nil
	case "on":
		p.HintsEnabled = true
		p.Tell("Hints are on.")
		return nil, nil
	}
	if !p.HintsEnabled {
		p.Tell("Hints are turned off. Type 'hint on' to enable them.")
		return nil, nil
	}
	if hs, ok := ctx.Driver.Story.(HintSource); ok {
		if hint := hs.Hint(p); hint != "" {
			p.Tell(hint)
			return nil, nil
		}
	}
	p.Tell("You're on your own for now; no hints are available.")
	return nil, nil
}

func cmdRecap(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if len(p.Recap) == 0 {
		p.Tell("There is nothing to recap yet.")
		return nil, nil
	}
	p.Tell("The story so far:")
	for _, line := range p.Recap {
		p.Tell(line)
	}
	return nil, nil
}

func cmdWait(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	// waiting advances the game clock by one tick per wait
	d := ctx.Config.TickInterval()
	maxWait := time.Duration(ctx.Config.MaxWaitHours) * time.Hour
	if ctx.Config.MaxWaitHours > 0 && ctx.Clock.AfterReal(d).Sub(ctx.Clock.Now()) > maxWait {
		return nil, world.Refuse("You can't wait that long.")
	}
	ctx.Clock.Advance(d)
	p.Tell("Time passes.")
	if ctx.Config.DisplayGametime {
		p.Tell("It is now " + ctx.Clock.String() + ".")
	}
	return nil, nil
}

func cmdBrief(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	p.Brief = !p.Brief
	if p.Brief {
		p.Tell("Brief mode on. Locations you know are shown by name only.")
	} else {
		p.Tell("Brief mode off.")
	}
	return nil, nil
}

// rawArg returns the unparsed remainder a NoSoulParse command gets.
func rawArg(parsed *soul.ParseResult) string {
	if len(parsed.Args) > 0 {
		return strings.Join(parsed.Args, " ")
	}
	return parsed.Message
}

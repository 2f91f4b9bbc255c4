package driver

import (
	"fmt"
	"strings"
	"time"

	"github.com/storyloom/storyloom/pkg/soul"
	"github.com/storyloom/storyloom/pkg/world"
)

// registerWizardBuiltins fills the wizard command table. Notify is off
// for these; NPCs have no business reacting to admin actions.
func registerWizardBuiltins(r *Registry) {
	r.MustRegister(&Command{Verb: "teleport", Aliases: []string{"tp"}, Wizard: true, Func: wizTeleport,
		Help: "Teleport to a location by name, or teleport a player to you."})
	r.MustRegister(&Command{Verb: "zap", Wizard: true, Func: wizZap,
		Help: "Destroy an item or creature."})
	r.MustRegister(&Command{Verb: "clone", Wizard: true, Func: wizClone,
		Help: "Duplicate an item into your inventory."})
	r.MustRegister(&Command{Verb: "force", Wizard: true, Func: wizForce, DisabledInMode: ModeIF, NoSoulParse: true,
		Help: "Make a player execute a command."})
	r.MustRegister(&Command{Verb: "server", Wizard: true, Func: wizServer,
		Help: "Show server uptime and queue statistics."})
	r.MustRegister(&Command{Verb: "reload", Wizard: true, Func: wizReload, NoSoulParse: true,
		Help: "Re-read the story configuration texts from disk."})
	r.MustRegister(&Command{Verb: "accounts", Wizard: true, Func: wizAccounts, DisabledInMode: ModeIF,
		Help: "List registered accounts."})
	r.MustRegister(&Command{Verb: "ban", Wizard: true, Func: wizBan, DisabledInMode: ModeIF, NoSoulParse: true,
		Help: "Ban an account from logging in."})
	r.MustRegister(&Command{Verb: "unban", Wizard: true, Func: wizUnban, DisabledInMode: ModeIF, NoSoulParse: true,
		Help: "Lift an account ban."})
	r.MustRegister(&Command{Verb: "promote", Wizard: true, Func: wizPromote, DisabledInMode: ModeIF, NoSoulParse: true,
		Help: "Grant the wizard privilege to an account."})
	r.MustRegister(&Command{Verb: "demote", Wizard: true, Func: wizDemote, DisabledInMode: ModeIF, NoSoulParse: true,
		Help: "Revoke the wizard privilege from an account."})
	r.MustRegister(&Command{Verb: "wiretap", Wizard: true, Func: wizWiretap,
		Help: "Listen in on a location or creature."})
	r.MustRegister(&Command{Verb: "clock", Wizard: true, Func: wizClock, NoSoulParse: true,
		Help: "Show or advance the game clock."})
	r.MustRegister(&Command{Verb: "pending", Wizard: true, Func: wizPending,
		Help: "Show the pending deferred actions."})
	r.MustRegister(&Command{Verb: "shutdown", Wizard: true, Func: wizShutdown, DisabledInMode: ModeIF,
		Help: "Stop the server."})
}

func wizTeleport(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if len(parsed.Args) == 0 {
		return nil, &soul.ParseError{Msg: "Teleport where, or whom?"}
	}
	name := strings.Join(parsed.Args, " ")

	if loc, ok := ctx.Driver.FindLocation(name); ok {
		origin := p.Location()
		if origin != nil {
			origin.Broadcast(p.Title+" vanishes in a puff of smoke.", &p.Living)
		}
		p.MoveTo(loc, &p.Living)
		loc.Broadcast(p.Title+" appears out of thin air.", &p.Living)
		lookAround(ctx, p, false)
		return nil, nil
	}
	if other, ok := ctx.Driver.Session(strings.ToLower(name)); ok {
		dest := p.Location()
		if dest == nil {
			return nil, world.Refuse("You are nowhere; nobody can join you there.")
		}
		other.Player.Tell("You are summoned by " + p.Title + ".")
		other.Player.MoveTo(dest, &p.Living)
		dest.Broadcast(other.Player.Title+" appears out of thin air.", &other.Player.Living)
		return nil, nil
	}
	return nil, world.Refuse("No such location or player: %s.", name)
}

func wizZap(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if len(parsed.Who) == 0 {
		return nil, &soul.ParseError{Msg: "Zap what?"}
	}
	for _, w := range parsed.Who {
		switch {
		case w.Item != nil:
			w.Item.Destroy()
			p.Tell("You destroy " + w.Item.Title + ".")
		case w.Living == &p.Living:
			return nil, world.Refuse("That would be a bad idea.")
		case w.Living != nil:
			name := w.Living.Title
			if other, ok := ctx.Driver.Session(w.Living.Name); ok {
				other.Player.Tell("You are banished from this world by " + p.Title + ".")
				ctx.Driver.Detach(other, true)
			} else {
				w.Living.MoveTo(ctx.Driver.Limbo(), &p.Living)
			}
			p.Tell("You banish " + name + ".")
		}
	}
	return nil, nil
}

func wizClone(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if len(parsed.Who) == 0 {
		return nil, &soul.ParseError{Msg: "Clone what?"}
	}
	w := parsed.Who[0]
	if w.Item == nil {
		return nil, world.Refuse("You can only clone items.")
	}
	src := w.Item
	dup := world.NewItem(src.Name, src.Title, src.Description)
	dup.Takeable = src.Takeable
	for a := range src.Aliases {
		dup.Aliases[a] = true
	}
	for kw, text := range src.Extras {
		dup.Extras[kw] = text
	}
	if err := dup.MoveTo(p, &p.Living); err != nil {
		return nil, err
	}
	p.Tell("You now have a copy of " + src.Title + ".")
	loc := p.Location()
	if loc != nil {
		loc.Broadcast(p.Title+" conjures up "+dup.Title+", and quickly pockets it.", &p.Living)
	}
	return nil, nil
}

func wizForce(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	fields := strings.Fields(rawArg(parsed))
	if len(fields) < 2 {
		return nil, &soul.ParseError{Msg: "Force whom to do what?"}
	}
	name := strings.ToLower(fields[0])
	command := strings.Join(fields[1:], " ")
	other, ok := ctx.Driver.Session(name)
	if !ok {
		return nil, world.Refuse("There is no player called %s.", name)
	}
	if other.AwaitingInput() {
		return nil, world.Refuse("%s is busy answering a question.", other.Player.Title)
	}
	other.Player.Tell("An irresistible force compels you.")
	ctx.Driver.Dispatch(other, command)
	ctx.Driver.flushSession(other)
	p.Tell("You force " + other.Player.Title + " to: " + command)
	return nil, nil
}

func wizServer(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	d := ctx.Driver
	sessions := d.Sessions()
	p.Tell("Server status:")
	p.Tell(fmt.Sprintf("<monospaced>  uptime:    %s</monospaced>", d.Uptime().Round(time.Second)))
	p.Tell(fmt.Sprintf("<monospaced>  game time: %s</monospaced>", d.Clock.String()))
	p.Tell(fmt.Sprintf("<monospaced>  sessions:  %d</monospaced>", len(sessions)))
	p.Tell(fmt.Sprintf("<monospaced>  deferreds: %d pending</monospaced>", d.Scheduler.Len()))
	p.Tell(fmt.Sprintf("<monospaced>  topics:    %d</monospaced>", d.Topics.Len()))
	for _, s := range sessions {
		p.Tell(fmt.Sprintf("<monospaced>    %-16s connected %s</monospaced>",
			s.Player.Name, time.Since(s.connectedAt).Round(time.Second)))
	}
	return nil, nil
}

// wizReload re-reads story.yaml and adopts the presentation fields.
// Identity and networking settings are pinned for the life of the
// process: savegames are checked against name and version, and the
// listen sockets are already bound.
func wizReload(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	d := ctx.Driver
	path := "story.yaml"
	if d.SaveDir != "" {
		path = d.SaveDir + "/story.yaml"
	}
	cfg, err := LoadStoryConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d.Config.Author = cfg.Author
	d.Config.AuthorAddress = cfg.AuthorAddress
	d.Config.DisplayGametime = cfg.DisplayGametime
	d.Config.ShowExitsInLook = cfg.ShowExitsInLook
	d.Config.LicenseFile = cfg.LicenseFile
	p.Tell("Story texts reloaded from " + path + ".")
	return nil, nil
}

func wizAccounts(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	store := ctx.Driver.Accounts
	if store == nil {
		return nil, world.Refuse("There is no account store in this mode.")
	}
	all, err := store.All("")
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	p.Tell(fmt.Sprintf("%d account%s registered:", len(all), pluralS(len(all))))
	for _, a := range all {
		flags := ""
		if a.IsWizard() {
			flags += " wizard"
		}
		if a.Banned {
			flags += " BANNED"
		}
		last := "never"
		if !a.LoggedIn.IsZero() {
			last = a.LoggedIn.Format("2006-01-02 15:04")
		}
		p.Tell(fmt.Sprintf("<monospaced>%-16s %-24s last: %s%s</monospaced>", a.Name, a.Email, last, flags))
	}
	return nil, nil
}

func accountArg(parsed *soul.ParseResult) (string, error) {
	name := strings.ToLower(strings.TrimSpace(rawArg(parsed)))
	if name == "" {
		return "", &soul.ParseError{Msg: "Which account?"}
	}
	return name, nil
}

func wizBan(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	name, err := accountArg(parsed)
	if err != nil {
		return nil, err
	}
	if err := ctx.Driver.Accounts.Ban(name); err != nil {
		return nil, err
	}
	p.Tell("Account " + name + " is banned.")
	if other, ok := ctx.Driver.Session(name); ok {
		other.Player.Tell("You have been banned from this world.")
		ctx.Driver.Detach(other, false)
	}
	return nil, nil
}

func wizUnban(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	name, err := accountArg(parsed)
	if err != nil {
		return nil, err
	}
	if err := ctx.Driver.Accounts.Unban(name); err != nil {
		return nil, err
	}
	p.Tell("Account " + name + " may log in again.")
	return nil, nil
}

// setWizard grants or revokes the wizard privilege. A change forces
// the affected player to reconnect so the new privileges apply.
func setWizard(ctx *Context, p *world.Player, parsed *soul.ParseResult, grant bool) error {
	name, err := accountArg(parsed)
	if err != nil {
		return err
	}
	store := ctx.Driver.Accounts
	a, err := store.Get(name)
	if err != nil {
		return err
	}
	privs := map[string]bool{}
	for pr := range a.Privileges {
		privs[pr] = true
	}
	if grant {
		privs["wizard"] = true
	} else {
		delete(privs, "wizard")
	}
	changed, err := store.UpdatePrivileges(name, privs)
	if err != nil {
		return err
	}
	if !changed {
		p.Tell("No change.")
		return nil
	}
	p.Tell("Privileges of " + name + " updated.")
	if other, ok := ctx.Driver.Session(name); ok {
		other.Player.Tell("Your privileges changed; please reconnect.")
		ctx.Driver.Detach(other, true)
	}
	return nil
}

func wizPromote(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	return nil, setWizard(ctx, p, parsed, true)
}

func wizDemote(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	return nil, setWizard(ctx, p, parsed, false)
}

func wizWiretap(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	if len(parsed.Args) == 0 {
		for _, t := range p.Wiretaps() {
			t.Unsubscribe(p)
		}
		p.Tell("All wiretaps removed.")
		return nil, nil
	}
	if parsed.Args[0] == "here" {
		loc := p.Location()
		if loc == nil {
			return nil, world.Refuse("You are nowhere.")
		}
		loc.Wiretap().Subscribe(p)
		p.RememberWiretap(loc.Wiretap())
		p.Tell("You put a wiretap on " + loc.Name + ".")
		return nil, nil
	}
	if len(parsed.Who) == 0 {
		return nil, &soul.ParseError{Msg: "Wiretap whom, or what?"}
	}
	w := parsed.Who[0]
	switch {
	case w.Living != nil:
		w.Living.Wiretap().Subscribe(p)
		p.RememberWiretap(w.Living.Wiretap())
		p.Tell("You put a wiretap on " + w.Living.Title + ".")
	default:
		return nil, world.Refuse("You can only wiretap locations and creatures.")
	}
	return nil, nil
}

func wizClock(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	arg := strings.TrimSpace(rawArg(parsed))
	if arg == "" {
		p.Tell("Game clock: " + ctx.Clock.String())
		return nil, nil
	}
	d, err := time.ParseDuration(arg)
	if err != nil {
		return nil, &soul.ParseError{Msg: "Give a duration like 30m or 2h."}
	}
	ctx.Clock.Advance(d)
	p.Tell("Game clock advanced to " + ctx.Clock.String() + ".")
	return nil, nil
}

func wizPending(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	pending := ctx.Driver.Scheduler.Pending()
	if len(pending) == 0 {
		p.Tell("Nothing is scheduled.")
		return nil, nil
	}
	p.Tell(fmt.Sprintf("%d deferred action%s pending:", len(pending), pluralS(len(pending))))
	for _, def := range pending {
		p.Tell("<monospaced>" + def.String() + "</monospaced>")
	}
	return nil, nil
}

func wizShutdown(ctx *Context, p *world.Player, parsed *soul.ParseResult) (*Dialog, error) {
	return YesNoDialog("Really shut the server down?", func(ctx *Context, yes bool) (*Dialog, error) {
		if !yes {
			return nil, nil
		}
		for _, s := range ctx.Driver.Sessions() {
			s.Player.Tell("The world is shutting down. Goodbye.")
			ctx.Driver.Detach(s, true)
		}
		ctx.Driver.Stop(0)
		return nil, nil
	}), nil
}

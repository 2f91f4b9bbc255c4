package driver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/storyloom/storyloom/pkg/soul"
	"github.com/storyloom/storyloom/pkg/world"
)

// CommandFunc is the uniform command shape. A non-nil Dialog return
// suspends the player in a multi-step prompt sequence.
type CommandFunc func(ctx *Context, player *world.Player, parsed *soul.ParseResult) (*Dialog, error)

// Command is one registered verb with its dispatch metadata.
type Command struct {
	Verb    string
	Aliases []string
	Func    CommandFunc
	Help    string

	// Wizard restricts the command to privileged players.
	Wizard bool
	// EnableNotify lets NPCs in the room observe that the action
	// happened. Defaults on for normal commands, off for wizard ones.
	EnableNotify bool
	// DisabledInMode hides the command in one server mode.
	DisabledInMode Mode
	// OverridesSoul removes the same-name soul emote.
	OverridesSoul bool
	// NoSoulParse passes the raw remainder of the line instead of a
	// parse result.
	NoSoulParse bool
}

// Registry holds the command tables for both privilege scopes.
type Registry struct {
	normal map[string]*Command
	wizard map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{
		normal: make(map[string]*Command),
		wizard: make(map[string]*Command),
	}
}

// Register adds a command under its verb and aliases. Registering the
// same verb twice in the same privilege scope is a configuration
// error.
func (r *Registry) Register(cmd *Command) error {
	table := r.normal
	if cmd.Wizard {
		table = r.wizard
	}
	for _, verb := range append([]string{cmd.Verb}, cmd.Aliases...) {
		if _, dup := table[verb]; dup {
			return fmt.Errorf("duplicate command registration: %q", verb)
		}
		table[verb] = cmd
	}
	return nil
}

// MustRegister is Register for the built-in command tables, where a
// duplicate is a programming error.
func (r *Registry) MustRegister(cmd *Command) {
	if err := r.Register(cmd); err != nil {
		panic(err)
	}
}

// Lookup finds a command by verb. Wizards see both tables; the wizard
// table wins on a clash.
func (r *Registry) Lookup(verb string, wizard bool) (*Command, bool) {
	if wizard {
		if cmd, ok := r.wizard[verb]; ok {
			return cmd, true
		}
	}
	cmd, ok := r.normal[verb]
	return cmd, ok
}

// Verbs returns the sorted verb names visible at a privilege level,
// filtered by mode.
func (r *Registry) Verbs(wizard bool, mode Mode) []string {
	seen := map[string]bool{}
	collect := func(table map[string]*Command) {
		for verb, cmd := range table {
			if cmd.DisabledInMode == mode {
				continue
			}
			seen[verb] = true
		}
	}
	collect(r.normal)
	if wizard {
		collect(r.wizard)
	}
	verbs := make([]string, 0, len(seen))
	for v := range seen {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return verbs
}

// VerbSet returns the visible verbs as a lookup set for the parser.
func (r *Registry) VerbSet(wizard bool, mode Mode) map[string]bool {
	set := map[string]bool{}
	for _, v := range r.Verbs(wizard, mode) {
		set[v] = true
	}
	return set
}

// Abbreviations is the process-wide shorthand map, expanded before
// parsing.
var Abbreviations = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
	"l":  "look",
	"x":  "examine",
	"i":  "inventory",
	"inv": "inventory",
	"'":  "say",
	";":  "emote",
	"?":  "help",
}

// DirectionNames are the compass and vertical exit names the movement
// shorthands expand to.
var DirectionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"up": true, "down": true,
}

// ExpandAbbreviation rewrites a command line's leading shorthand.
// The say and emote sigils work without a following space.
func ExpandAbbreviation(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return line
	}
	if full, ok := Abbreviations[string(line[0])]; ok && (line[0] == '\'' || line[0] == ';' || line[0] == '?') {
		return full + " " + strings.TrimSpace(line[1:])
	}
	first, rest, found := strings.Cut(line, " ")
	if full, ok := Abbreviations[strings.ToLower(first)]; ok {
		if found {
			return full + " " + rest
		}
		return full
	}
	return line
}

// NotifyEvent is published on the room wiretap after a command with
// EnableNotify completes, so NPCs can react to what happened.
type NotifyEvent struct {
	Actor  *world.Living
	Parsed *soul.ParseResult
}

package driver

import (
	"github.com/storyloom/storyloom/pkg/world"
)

// Story is the contract a game implements to run on the driver.
type Story interface {
	// Config returns the story's declared configuration. Called once,
	// before Init.
	Config() *StoryConfig

	// Init builds the story world: locations, items, NPCs, custom
	// verbs, zones. The driver is fully constructed but not looping.
	Init(d *Driver) error

	// InitPlayer applies story-specific setup to a fresh player.
	InitPlayer(p *world.Player)

	// Welcome greets a new player. A non-empty return is shown as a
	// press-enter prompt before play starts.
	Welcome(p *world.Player) string

	// WelcomeSavegame greets a player restored from a snapshot.
	WelcomeSavegame(p *world.Player) string

	// Goodbye is called when the player quits.
	Goodbye(p *world.Player)

	// Completion is called when the player finishes the story.
	Completion(p *world.Player)
}

// CustomVerbs is implemented by stories that add their own verbs on
// top of the built-in commands and emotes.
type CustomVerbs interface {
	// VerbHandlers maps story verb names to command functions.
	VerbHandlers() map[string]CommandFunc
}

// HintSource is implemented by stories that offer progress hints. Hint
// returns the most relevant hint for the player's current progress, or
// empty when there is nothing to say.
type HintSource interface {
	Hint(p *world.Player) string
}

package driver

import "errors"

// Control-flow signals between command functions and the dispatcher.
// They travel as errors but only RefusedError and parse errors are
// ever shown to a player.

// ErrRetrySoul tells the dispatcher to re-run the current parse as a
// pure soul emote. Raised by commands that only sometimes apply.
var ErrRetrySoul = errors.New("retry as soul emote")

// RetryCommandError tells the dispatcher to re-dispatch a different
// command line in place of the current one.
type RetryCommandError struct {
	Command string
}

func (e *RetryCommandError) Error() string { return "retry with: " + e.Command }

// ErrSessionExit is a clean termination request from a command. The
// driver runs the goodbye hook and closes the connection.
var ErrSessionExit = errors.New("session exit")

// ErrStoryCompleted signals the player reached the end of the story.
// Single-player mode runs the completion hook and stops; multi-user
// mode ignores it.
var ErrStoryCompleted = errors.New("story completed")

// SecurityError reports a privilege violation. Shown to the player
// like an action refusal.
type SecurityError struct {
	Msg string
}

func (e *SecurityError) Error() string { return e.Msg }

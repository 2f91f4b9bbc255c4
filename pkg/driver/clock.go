package driver

import (
	"fmt"
	"time"
)

// GameClock tracks in-game time. Game time advances faster than real
// time by an integer factor; a factor of 0 freezes the clock.
type GameClock struct {
	current time.Time
	factor  int
}

// NewGameClock starts the clock at the story's epoch.
func NewGameClock(epoch time.Time, factor int) *GameClock {
	if factor < 0 {
		factor = 1
	}
	return &GameClock{current: epoch, factor: factor}
}

// Now returns the current game time.
func (c *GameClock) Now() time.Time { return c.current }

// Factor returns the game-to-real-time multiplier.
func (c *GameClock) Factor() int { return c.factor }

// Advance moves the clock forward by a real-time duration, scaled by
// the game-time factor.
func (c *GameClock) Advance(real time.Duration) {
	c.current = c.current.Add(real * time.Duration(c.factor))
}

// Reset sets the clock to an absolute game time. Used when a saved
// game is loaded.
func (c *GameClock) Reset(to time.Time) { c.current = to }

// AfterReal converts a real-time duration into the game timestamp at
// which it elapses.
func (c *GameClock) AfterReal(real time.Duration) time.Time {
	return c.current.Add(real * time.Duration(c.factor))
}

// String renders the clock for the status line.
func (c *GameClock) String() string {
	return fmt.Sprintf("%s (x%d)", c.current.Format("Mon 2 Jan 2006 15:04:05"), c.factor)
}

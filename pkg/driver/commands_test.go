package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

func TestTellBetweenPlayers(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeMUD)

	other := world.NewPlayer("max", lang.Male, "human")
	square, ok := d.FindLocation("square")
	require.True(t, ok)
	other.MoveTo(square, nil)
	oconn := newTestConn()
	d.Attach(other, oconn, nil)

	d.handleLine(s, "tell max meet me at the bar")
	assert.Contains(t, conn.text(), "You tell Max: meet me at the bar")
	assert.Contains(t, other.DrainOutput(), "Julie tells you: meet me at the bar")
}

func TestTellDisconnectedPlayer(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeMUD)
	d.handleLine(s, "tell max hello")
	assert.Contains(t, conn.text(), "Max is not connected.")
}

func TestTakeRefusesNonTakeable(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	square, ok := d.FindLocation("square")
	require.True(t, ok)
	fountain := world.NewItem("fountain", "the fountain", "It gurgles.")
	fountain.Takeable = false
	require.NoError(t, fountain.MoveTo(square, nil))

	d.handleLine(s, "take fountain")
	assert.Contains(t, conn.text(), "You can't take the fountain.")
	assert.Contains(t, square.Items(), fountain)
	assert.Empty(t, s.Player.Inventory())
}

func TestMotd(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "motd")
	assert.Contains(t, conn.text(), "There is no message of the day.")

	conn.reset()
	require.NoError(t, os.WriteFile(filepath.Join(d.SaveDir, "motd.txt"),
		[]byte("Maintenance tonight at nine.\n"), 0o644))
	d.handleLine(s, "motd")
	assert.Contains(t, conn.text(), "Maintenance tonight at nine.")
}

func TestStats(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "stats")
	assert.Contains(t, conn.text(), "You are Julie, a female human.")

	conn.reset()
	d.handleLine(s, "score")
	assert.Contains(t, conn.text(), "You are Julie, a female human.")
}

func TestHintWithoutSource(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "hint")
	assert.Contains(t, conn.text(), "no hints are available")
}

func TestHintToggle(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "hint off")
	assert.False(t, s.Player.HintsEnabled)

	conn.reset()
	d.handleLine(s, "hint")
	assert.Contains(t, conn.text(), "Hints are turned off.")

	d.handleLine(s, "hint on")
	assert.True(t, s.Player.HintsEnabled)
}

func TestRecap(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "recap")
	assert.Contains(t, conn.text(), "There is nothing to recap yet.")

	conn.reset()
	s.Player.AddRecap("You found the cellar door.")
	s.Player.AddRecap("You found the cellar door.") // dedup
	d.handleLine(s, "recap")
	assert.Contains(t, conn.text(), "The story so far:")
	assert.Contains(t, conn.text(), "You found the cellar door.")
	assert.Len(t, s.Player.Recap, 1)
}

func TestLoadWithoutSavedGame(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "load")
	assert.Contains(t, conn.text(), "There is no saved game.")
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	d, s, conn := newTestDriver(t, ModeIF)
	d.handleLine(s, "take coin")
	require.Len(t, s.Player.Inventory(), 1)
	d.handleLine(s, "save")
	require.Contains(t, conn.text(), "Game saved.")

	d.handleLine(s, "drop coin")
	require.Empty(t, s.Player.Inventory())

	conn.reset()
	d.handleLine(s, "load")
	d.handleLine(s, "yes")
	assert.Len(t, s.Player.Inventory(), 1)
}

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

func newWizardDriver(t *testing.T, mode Mode) (*Driver, *Session, *testConn) {
	t.Helper()
	d, s, conn := newTestDriver(t, mode)
	s.Player.Privileges["wizard"] = true
	return d, s, conn
}

func TestWizardClone(t *testing.T) {
	d, s, conn := newWizardDriver(t, ModeIF)
	d.handleLine(s, "clone coin")
	require.Len(t, s.Player.Inventory(), 1)
	assert.Equal(t, "coin", s.Player.Inventory()[0].Name)
	assert.Contains(t, conn.text(), "You now have a copy of a shiny coin.")

	// The original stays where it was.
	square, _ := d.FindLocation("square")
	assert.NotNil(t, square.FindItem("coin"))
}

func TestWizardCloneRefusesLivings(t *testing.T) {
	d, s, conn := newWizardDriver(t, ModeIF)
	addNPC(s, "max", lang.Male)
	d.handleLine(s, "clone max")
	assert.Contains(t, conn.text(), "You can only clone items.")
	assert.Empty(t, s.Player.Inventory())
}

func TestWizardForce(t *testing.T) {
	d, s, _ := newWizardDriver(t, ModeMUD)

	other := world.NewPlayer("max", lang.Male, "human")
	square, ok := d.FindLocation("square")
	require.True(t, ok)
	other.MoveTo(square, nil)
	oconn := newTestConn()
	d.Attach(other, oconn, nil)

	d.handleLine(s, "force max north")
	assert.Equal(t, "bar", other.Location().Name)
	assert.Contains(t, oconn.text(), "An irresistible force compels you.")
}

func TestWizardForceUnknownPlayer(t *testing.T) {
	d, s, conn := newWizardDriver(t, ModeMUD)
	d.handleLine(s, "force bogus north")
	assert.Contains(t, conn.text(), "There is no player called bogus.")
}

func TestWizardServerStats(t *testing.T) {
	d, s, conn := newWizardDriver(t, ModeIF)
	d.handleLine(s, "server")
	out := conn.text()
	assert.Contains(t, out, "uptime:")
	assert.Contains(t, out, "sessions:  1")
	assert.Contains(t, out, "julie")
}

func TestWizardReload(t *testing.T) {
	d, s, conn := newWizardDriver(t, ModeIF)
	yaml := "name: Driver Test World\nauthor: Someone Else\nstartlocation_player: square\n"
	require.NoError(t, os.WriteFile(filepath.Join(d.SaveDir, "story.yaml"), []byte(yaml), 0o644))

	d.handleLine(s, "reload")
	assert.Contains(t, conn.text(), "Story texts reloaded")
	assert.Equal(t, "Someone Else", d.Config.Author)
}

func TestWizardReloadMissingFile(t *testing.T) {
	d, s, conn := newWizardDriver(t, ModeIF)
	d.handleLine(s, "reload")
	assert.Contains(t, conn.text(), "story.yaml")
	assert.Equal(t, "", d.Config.Author)
}

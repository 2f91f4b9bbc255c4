package driver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/accounts"
	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

func newMUDDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := New(newTestStory(), ModeMUD, zap.NewNop())
	require.NoError(t, err)
	store, err := accounts.Open(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	d.Accounts = store
	return d
}

func TestMUDLoginExistingAccount(t *testing.T) {
	d := newMUDDriver(t)
	_, err := d.Accounts.Create("julie", "hunter12", "julie@example.com", lang.Female, "human", world.Stats{}, nil)
	require.NoError(t, err)

	conn := newTestConn()
	s := d.NewConnection(conn)
	d.drainAsyncDialogs()
	assert.Contains(t, conn.text(), "Please type in your name.")

	d.handleLine(s, "julie")
	assert.Contains(t, conn.text(), "Please type in your password.")

	d.handleLine(s, "hunter12")
	sess, ok := d.Session("julie")
	require.True(t, ok)
	assert.Equal(t, "square", sess.Player.Location().Name)
	require.NotNil(t, sess.Account)
	assert.Equal(t, "julie", sess.Account.Name)
	assert.Equal(t, lang.Female, sess.Player.Gender)

	// the placeholder session is gone
	for _, other := range d.Sessions() {
		assert.Equal(t, "julie", other.Player.Name)
	}
}

func TestMUDLoginBadPasswordRunsOutOfAttempts(t *testing.T) {
	d := newMUDDriver(t)
	_, err := d.Accounts.Create("julie", "hunter12", "julie@example.com", lang.Female, "human", world.Stats{}, nil)
	require.NoError(t, err)

	conn := newTestConn()
	s := d.NewConnection(conn)
	d.drainAsyncDialogs()

	for i := 0; i < loginAttempts; i++ {
		d.handleLine(s, "julie")
		d.handleLine(s, "wrong99")
	}
	assert.Contains(t, conn.text(), "Invalid name or password.")
	assert.Contains(t, conn.text(), "Too many failed attempts.")
	assert.True(t, conn.destroyed)
	assert.Empty(t, d.Sessions())
}

func TestMUDLoginCreatesAccount(t *testing.T) {
	d := newMUDDriver(t)
	conn := newTestConn()
	s := d.NewConnection(conn)
	d.drainAsyncDialogs()

	d.handleLine(s, "newbie")
	assert.Contains(t, conn.text(), "Do you want to create a new character?")
	d.handleLine(s, "yes")
	d.handleLine(s, "secret42")
	d.handleLine(s, "secret42")
	d.handleLine(s, "newbie@example.com")
	d.handleLine(s, "f")

	sess, ok := d.Session("newbie")
	require.True(t, ok)
	assert.Equal(t, "square", sess.Player.Location().Name)

	acct, err := d.Accounts.Get("newbie")
	require.NoError(t, err)
	assert.Equal(t, "newbie@example.com", acct.Email)
	assert.NoError(t, d.Accounts.ValidPassword("newbie", "secret42"))
}

func TestMUDLoginRejectsWeakPassword(t *testing.T) {
	d := newMUDDriver(t)
	conn := newTestConn()
	s := d.NewConnection(conn)
	d.drainAsyncDialogs()

	d.handleLine(s, "newbie")
	d.handleLine(s, "yes")
	d.handleLine(s, "short")
	// validator re-prompts; the dialog is still pending
	assert.True(t, s.AwaitingInput())
	assert.Contains(t, conn.text(), "password")
}

func TestMUDLoginWizardEntersWizardStart(t *testing.T) {
	d := newMUDDriver(t)
	d.Config.StartLocationWizard = "bar"
	_, err := d.Accounts.Create("irmen", "hunter12", "w@example.com", lang.Male, "human", world.Stats{},
		map[string]bool{"wizard": true})
	require.NoError(t, err)

	conn := newTestConn()
	s := d.NewConnection(conn)
	d.drainAsyncDialogs()
	d.handleLine(s, "irmen")
	d.handleLine(s, "hunter12")

	sess, ok := d.Session("irmen")
	require.True(t, ok)
	assert.True(t, sess.Player.IsWizard())
	assert.Equal(t, "bar", sess.Player.Location().Name)
}

func TestIFCharacterBuilder(t *testing.T) {
	d, err := New(newTestStory(), ModeIF, zap.NewNop())
	require.NoError(t, err)
	d.SaveDir = t.TempDir()

	conn := newTestConn()
	s := d.NewConnection(conn)
	d.drainAsyncDialogs()
	assert.Contains(t, conn.text(), "What shall you be known as?")

	d.handleLine(s, "julie")
	d.handleLine(s, "f")
	d.handleLine(s, "")
	assert.Contains(t, conn.text(), "You will be Julie, a female human.")
	d.handleLine(s, "yes")

	sess, ok := d.Session("julie")
	require.True(t, ok)
	assert.Equal(t, "square", sess.Player.Location().Name)
	assert.Equal(t, lang.Female, sess.Player.Gender)
}

func TestIFPresetCharacterSkipsBuilder(t *testing.T) {
	st := newTestStory()
	st.cfg.PlayerName = "zed"
	st.cfg.PlayerGender = "m"
	st.cfg.PlayerRace = "human"
	d, err := New(st, ModeIF, zap.NewNop())
	require.NoError(t, err)
	d.SaveDir = t.TempDir()

	conn := newTestConn()
	d.NewConnection(conn)
	sess, ok := d.Session("zed")
	require.True(t, ok)
	assert.Equal(t, "square", sess.Player.Location().Name)
	assert.Equal(t, lang.Male, sess.Player.Gender)
}
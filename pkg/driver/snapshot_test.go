package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/pkg/savegame"
	"github.com/storyloom/storyloom/pkg/world"
)

func TestSaveAndLoadSnapshot(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	p := s.Player

	// some progress worth keeping
	d.handleLine(s, "take coin")
	require.Len(t, p.Inventory(), 1)
	d.Clock.Advance(90 * time.Second)
	d.RegisterAction("fountain", "gurgle", func(ctx *Context, def *Deferred) {})
	_, err := d.Scheduler.ScheduleAfter(d.Clock, time.Minute, "fountain", "gurgle")
	require.NoError(t, err)
	p.Brief = true

	require.NoError(t, d.SaveSnapshot(p))
	savedClock := d.Clock.Now()
	savedPending := d.Scheduler.Len()

	// a fresh driver for the same story, as after a restart
	d2, s2, _ := newTestDriver(t, ModeIF)
	d2.SaveDir = d.SaveDir
	d2.RegisterAction("fountain", "gurgle", func(ctx *Context, def *Deferred) {})
	p2 := s2.Player
	bar, _ := d2.FindLocation("bar")
	p2.MoveTo(bar, nil)

	require.NoError(t, d2.LoadSnapshot(p2))
	assert.Equal(t, savedClock, d2.Clock.Now())
	assert.Equal(t, savedPending, d2.Scheduler.Len())
	assert.Equal(t, "square", p2.Location().Name)
	assert.True(t, p2.Brief)
	require.Len(t, p2.Inventory(), 1)
	assert.Equal(t, "coin", p2.Inventory()[0].Name)
}

func TestSaveRefusedInMultiUserMode(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeMUD)
	err := d.SaveSnapshot(s.Player)
	require.Error(t, err)
	var refused *world.ActionRefused
	assert.ErrorAs(t, err, &refused)
}

func TestLoadRejectsOtherStoryVersion(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	require.NoError(t, d.SaveSnapshot(s.Player))

	d2, s2, _ := newTestDriver(t, ModeIF)
	d2.SaveDir = d.SaveDir
	d2.Config.Version = "99.0"
	err := d2.LoadSnapshot(s2.Player)
	assert.ErrorIs(t, err, savegame.ErrVersionMismatch)
}

func TestLoadWithoutSnapshot(t *testing.T) {
	d, s, _ := newTestDriver(t, ModeIF)
	err := d.LoadSnapshot(s.Player)
	assert.ErrorIs(t, err, savegame.ErrNoSnapshot)
}

func TestSavegameStoreRoundTrip(t *testing.T) {
	store, err := savegame.Open(t.TempDir() + "/x.save")
	require.NoError(t, err)
	defer store.Close()

	snap := &savegame.Snapshot{
		Story:        "t",
		StoryVersion: "1",
		GameTime:     time.Date(2015, 4, 1, 12, 0, 0, 0, time.UTC),
		Player:       savegame.PlayerState{Name: "julie", Location: "square"},
		Deferreds: []savegame.DeferredRecord{
			{Owner: "npc", Action: "a", Seq: 2},
		},
	}
	require.NoError(t, store.Put(snap))

	got, err := store.Get("julie", "t", "1")
	require.NoError(t, err)
	assert.Equal(t, snap.Player, got.Player)
	assert.Equal(t, snap.Deferreds, got.Deferreds)
	assert.True(t, snap.GameTime.Equal(got.GameTime))

	players, err := store.Players()
	require.NoError(t, err)
	assert.Equal(t, []string{"julie"}, players)

	_, err = store.Get("julie", "other", "1")
	assert.ErrorIs(t, err, savegame.ErrVersionMismatch)

	require.NoError(t, store.Delete("julie"))
	_, err = store.Get("julie", "t", "1")
	assert.ErrorIs(t, err, savegame.ErrNoSnapshot)
}

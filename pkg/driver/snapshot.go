package driver

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/storyloom/storyloom/pkg/savegame"
	"github.com/storyloom/storyloom/pkg/world"
)

// savegamePath derives the savegame database filename from the story
// name.
func (d *Driver) savegamePath() string {
	name := strings.ToLower(d.Config.Name)
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, name)
	return filepath.Join(d.SaveDir, name+".save")
}

// SaveSnapshot persists the player's session. Single-user stories only;
// a shared world cannot be rolled back for one player.
func (d *Driver) SaveSnapshot(p *world.Player) error {
	if d.Mode != ModeIF {
		return world.Refuse("You cannot save your progress in a multi-user world.")
	}
	if !d.Config.SavegamesEnabled {
		return world.Refuse("It is not possible to save your progress in this story.")
	}
	store, err := savegame.Open(d.savegamePath())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Put(d.buildSnapshot(p))
}

func (d *Driver) buildSnapshot(p *world.Player) *savegame.Snapshot {
	snap := &savegame.Snapshot{
		Version:      savegame.Version,
		Story:        d.Config.Name,
		StoryVersion: d.Config.Version,
		SavedAt:      time.Now(),
		GameTime:     d.Clock.Now(),
		ClockFactor:  float64(d.Clock.Factor()),
		Player: savegame.PlayerState{
			Name:         p.Name,
			Title:        p.Title,
			Gender:       byte(p.Gender),
			Race:         p.Race,
			Stats:        p.Stats,
			Brief:        p.Brief,
			HintsEnabled: p.HintsEnabled,
			Recap:        append([]string(nil), p.Recap...),
		},
	}
	if loc := p.Location(); loc != nil {
		snap.Player.Location = loc.Name
	}
	for _, it := range p.Inventory() {
		snap.Player.Inventory = append(snap.Player.Inventory, it.Name)
	}
	for _, def := range d.Scheduler.Pending() {
		snap.Deferreds = append(snap.Deferreds, savegame.DeferredRecord{
			Due: def.Due, Owner: def.Owner, Action: def.Action,
			Args: append([]string(nil), def.Args...), Seq: def.Seq,
		})
	}
	return snap
}

// LoadSnapshot restores a saved session into the freshly initialized
// world: clock, deferred queue, player placement and inventory. The
// story graph itself is rebuilt by story init before this runs.
// A version mismatch is a hard failure; the caller must not continue
// with a half-restored world.
func (d *Driver) LoadSnapshot(p *world.Player) error {
	store, err := savegame.Open(d.savegamePath())
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Get(p.Name, d.Config.Name, d.Config.Version)
	if err != nil {
		return err
	}

	d.Clock.Reset(snap.GameTime)

	deferreds := make([]*Deferred, 0, len(snap.Deferreds))
	for _, rec := range snap.Deferreds {
		deferreds = append(deferreds, &Deferred{
			Due: rec.Due, Owner: rec.Owner, Action: rec.Action,
			Args: rec.Args, Seq: rec.Seq,
		})
	}
	if err := d.Scheduler.Restore(deferreds); err != nil {
		return fmt.Errorf("%w: %v", savegame.ErrVersionMismatch, err)
	}

	p.Title = snap.Player.Title
	p.Stats = snap.Player.Stats
	p.Brief = snap.Player.Brief
	p.HintsEnabled = snap.Player.HintsEnabled
	p.Recap = snap.Player.Recap

	loc, ok := d.FindLocation(snap.Player.Location)
	if !ok {
		return fmt.Errorf("%w: saved location %q no longer exists", savegame.ErrVersionMismatch, snap.Player.Location)
	}
	p.MoveTo(loc, nil)
	p.KnowsLocation(loc)

	for _, name := range snap.Player.Inventory {
		if it := d.findWorldItem(name); it != nil {
			if err := it.MoveTo(&p.Living, nil); err != nil {
				d.Log.Warn("could not restore carried item: " + name)
			}
		}
	}
	return nil
}

// VerifySavegame checks all stored snapshots against the current story
// without applying them. Used by the --verify entry point.
func (d *Driver) VerifySavegame() error {
	store, err := savegame.Open(d.savegamePath())
	if err != nil {
		return err
	}
	defer store.Close()

	players, err := store.Players()
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return savegame.ErrNoSnapshot
	}
	for _, name := range players {
		if _, err := store.Get(name, d.Config.Name, d.Config.Version); err != nil {
			return fmt.Errorf("snapshot for %q: %w", name, err)
		}
	}
	return nil
}

// findWorldItem locates an item anywhere in the registered locations,
// including inside livings and open containers.
func (d *Driver) findWorldItem(name string) *world.Item {
	for _, loc := range d.locations {
		if it := loc.FindItem(name); it != nil {
			return it
		}
		for _, lv := range loc.Livings() {
			if it := lv.FindCarried(name); it != nil {
				return it
			}
		}
	}
	return nil
}

// Package savegame persists story snapshots in a bbolt database, one
// file per story, one snapshot per player name.
package savegame

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/storyloom/storyloom/pkg/world"
)

// Version is the snapshot format version. A snapshot written by a
// different version does not load.
const Version = 1

// ErrVersionMismatch reports a snapshot written by an incompatible
// format or story version. Loading must not proceed past it.
var ErrVersionMismatch = errors.New("savegame: incompatible snapshot version")

// ErrNoSnapshot reports that no snapshot exists for the player.
var ErrNoSnapshot = errors.New("savegame: no saved game")

// Snapshot is the persisted state of a single-player story session.
type Snapshot struct {
	Version      int
	Story        string
	StoryVersion string
	SavedAt      time.Time

	GameTime    time.Time
	ClockFactor float64

	Player    PlayerState
	Deferreds []DeferredRecord
}

// PlayerState captures the player fields worth restoring. Entities are
// recorded by name; the story graph itself is rebuilt by story init.
type PlayerState struct {
	Name         string
	Title        string
	Gender       byte
	Race         string
	Stats        world.Stats
	Location     string
	Inventory    []string
	Known        []string
	Brief        bool
	HintsEnabled bool
	Recap        []string
}

// DeferredRecord mirrors one pending deferred action.
type DeferredRecord struct {
	Due    time.Time
	Owner  string
	Action string
	Args   []string
	Seq    uint64
}

var (
	bucketMeta  = []byte("meta")
	bucketSaves = []byte("saves")

	keyVersion = []byte("version")
	keyStory   = []byte("story")
)

// Store wraps one story's savegame database.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates a savegame database file and ensures the
// buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("savegame: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketSaves} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("savegame: create buckets: %w", err)
	}
	return &Store{bolt: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

func saveKey(player string) []byte {
	return []byte(strings.ToLower(player))
}

// Put writes a snapshot, replacing any earlier one for the same
// player. The store's meta bucket records the format version and story
// name of the last write.
func (s *Store) Put(snap *Snapshot) error {
	if snap.Version == 0 {
		snap.Version = Version
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("savegame: encode snapshot for %s: %w", snap.Player.Name, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyVersion, intToKey(snap.Version)); err != nil {
			return err
		}
		if err := meta.Put(keyStory, []byte(snap.Story)); err != nil {
			return err
		}
		return tx.Bucket(bucketSaves).Put(saveKey(snap.Player.Name), data)
	})
}

// Get loads the snapshot for a player. A snapshot with a different
// format or story version fails with ErrVersionMismatch.
func (s *Store) Get(player, story, storyVersion string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSaves).Get(saveKey(player))
		if data == nil {
			return ErrNoSnapshot
		}
		var err error
		snap, err = decodeSnapshot(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	if snap.Version != Version {
		return nil, fmt.Errorf("%w: snapshot format %d, want %d", ErrVersionMismatch, snap.Version, Version)
	}
	if snap.Story != story || snap.StoryVersion != storyVersion {
		return nil, fmt.Errorf("%w: saved for %s %s, running %s %s",
			ErrVersionMismatch, snap.Story, snap.StoryVersion, story, storyVersion)
	}
	return snap, nil
}

// Delete removes a player's snapshot.
func (s *Store) Delete(player string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSaves).Delete(saveKey(player))
	})
}

// Players lists the player names with a stored snapshot.
func (s *Store) Players() ([]string, error) {
	var names []string
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSaves).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Backup creates a hot copy of the database using tx.WriteTo().
func (s *Store) Backup(path string) error {
	return s.bolt.View(func(tx *bbolt.Tx) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("savegame: create backup %s: %w", path, err)
		}
		defer f.Close()
		if _, err := tx.WriteTo(f); err != nil {
			return fmt.Errorf("savegame: write backup: %w", err)
		}
		return nil
	})
}

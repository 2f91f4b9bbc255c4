package world

import (
	"strings"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/pubsub"
)

// Stats holds a living's character sheet numbers.
type Stats struct {
	Level      int
	XP         int
	HP         int
	MaxHPDice  string
	AC         int
	AttackDice string
	Agi        int
	Cha        int
	Int        int
	Lck        int
	Spd        int
	Sta        int
	Str        int
	Wis        int
	Alignment  int
}

// Living is an animate entity: an NPC, or (as Player) a connected user.
// A living is in exactly one location at any time; destroying its home
// sends it to the limbo sentinel.
type Living struct {
	Name        string
	Title       string
	Description string
	Gender      lang.Gender
	Race        string
	Aliases     map[string]bool
	Stats       Stats
	Privileges  map[string]bool
	Aggressive  bool
	Money       float64

	location  *Location
	inventory []*Item
	wiretap   pubsub.Topic
	destroyed bool

	// TellHook, when set, receives every message told to this living.
	// Player installs its output buffer here; NPC behaviors can react
	// to what they hear.
	TellHook func(msg string)

	// Heartbeat, when set, is called once per server tick after the
	// living has been registered with the driver's heartbeat set.
	Heartbeat func(ctx any)
}

// NewLiving creates a living. Names are stored lowercased; the title
// defaults to the capitalized name.
func NewLiving(name string, gender lang.Gender, race string) *Living {
	name = strings.ToLower(name)
	lv := &Living{
		Name:       name,
		Title:      lang.Capitalize(name),
		Gender:     gender,
		Race:       race,
		Aliases:    make(map[string]bool),
		Privileges: make(map[string]bool),
	}
	lv.wiretap.Name = "wiretap-living:" + name
	return lv
}

// Wiretap returns the living's wiretap topic.
func (lv *Living) Wiretap() *pubsub.Topic { return &lv.wiretap }

// IsWizard reports whether the living carries the wizard privilege.
func (lv *Living) IsWizard() bool { return lv.Privileges["wizard"] }

// Location returns the living's current location (nil only before the
// living has been placed into the world, or after destruction).
func (lv *Living) Location() *Location { return lv.location }

// Destroyed reports whether Destroy has run.
func (lv *Living) Destroyed() bool { return lv.destroyed }

// Tell delivers a message to the living. The wiretap topic hears it
// too. NPCs without a TellHook silently discard.
func (lv *Living) Tell(msg string) {
	lv.wiretap.Send(WiretapEvent{Sender: lv.Name, Message: msg}, true)
	if lv.TellHook != nil {
		lv.TellHook(msg)
	}
}

// MoveTo moves the living to a new location, maintaining the both-ways
// invariant between Living.location and Location.livings. The actor is
// the living that caused the move (nil for driver-internal moves).
func (lv *Living) MoveTo(dest *Location, actor *Living) {
	if lv.location != nil {
		lv.location.removeLiving(lv)
	}
	lv.location = dest
	if dest != nil {
		dest.addLiving(lv)
	}
}

// Inventory returns a snapshot of the carried items.
func (lv *Living) Inventory() []*Item {
	inv := make([]*Item, len(lv.inventory))
	copy(inv, lv.inventory)
	return inv
}

// Insert implements ItemHolder: the living carries the item. Taking is
// subject to the item's AllowTake hook; wizards and system moves (nil
// actor) bypass it.
func (lv *Living) Insert(item *Item, actor *Living) error {
	if actor == lv || (actor != nil && actor.IsWizard()) || actor == nil {
		if actor == lv && !lv.IsWizard() {
			if err := item.AllowTake(actor); err != nil {
				return err
			}
		}
		lv.inventory = insertItem(lv.inventory, item)
		item.holder = lv
		return nil
	}
	return Refuse("You can't do that.")
}

// Remove implements ItemHolder.
func (lv *Living) Remove(item *Item, actor *Living) error {
	if actor != lv && actor != nil && !actor.IsWizard() {
		return Refuse("You can't take %s from %s.", item.Title, lv.Title)
	}
	var ok bool
	lv.inventory, ok = removeItem(lv.inventory, item)
	if !ok {
		return Refuse("%s doesn't have %s.", lang.Capitalize(lv.Title), item.Title)
	}
	item.holder = nil
	return nil
}

// HolderName implements ItemHolder.
func (lv *Living) HolderName() string { return lv.Name }

// FindCarried locates a carried item by name, alias, or title.
func (lv *Living) FindCarried(name string) *Item {
	name = strings.ToLower(name)
	for _, it := range lv.inventory {
		if it.Name == name {
			return it
		}
	}
	for _, it := range lv.inventory {
		if it.Matches(name) {
			return it
		}
	}
	return nil
}

// Destroy removes the living from the world. Carried items are
// destroyed, the wiretap is cleared.
func (lv *Living) Destroy() {
	if lv.destroyed {
		return
	}
	lv.destroyed = true
	if lv.location != nil {
		lv.location.removeLiving(lv)
		lv.location = nil
	}
	for _, it := range append([]*Item(nil), lv.inventory...) {
		it.holder = nil
		it.Destroy()
	}
	lv.inventory = nil
	lv.wiretap.Clear()
}

func (l *Location) addLiving(lv *Living) {
	for _, existing := range l.livings {
		if existing == lv {
			return
		}
	}
	l.livings = append(l.livings, lv)
}

func (l *Location) removeLiving(lv *Living) {
	for i, existing := range l.livings {
		if existing == lv {
			l.livings = append(l.livings[:i], l.livings[i+1:]...)
			return
		}
	}
}

package world

import (
	"strings"

	"github.com/storyloom/storyloom/pkg/pubsub"
)

// Location is a named place holding livings and items, with directional
// exits to other locations and a wiretap topic wizards can listen on.
type Location struct {
	Name        string
	Description string
	Exits       map[string]Way

	livings []*Living
	items   []*Item
	wiretap pubsub.Topic
}

// NewLocation creates an empty location.
func NewLocation(name, description string) *Location {
	l := &Location{
		Name:        name,
		Description: description,
		Exits:       make(map[string]Way),
	}
	l.wiretap.Name = "wiretap-location:" + name
	return l
}

// Wiretap returns the location's wiretap topic.
func (l *Location) Wiretap() *pubsub.Topic { return &l.wiretap }

// Livings returns a snapshot of the livings present, in arrival order.
func (l *Location) Livings() []*Living {
	out := make([]*Living, len(l.livings))
	copy(out, l.livings)
	return out
}

// Items returns a snapshot of the items lying here.
func (l *Location) Items() []*Item {
	out := make([]*Item, len(l.items))
	copy(out, l.items)
	return out
}

// Insert implements ItemHolder.
func (l *Location) Insert(item *Item, actor *Living) error {
	l.items = insertItem(l.items, item)
	item.holder = l
	return nil
}

// Remove implements ItemHolder.
func (l *Location) Remove(item *Item, actor *Living) error {
	var ok bool
	l.items, ok = removeItem(l.items, item)
	if !ok {
		return Refuse("There's no %s here.", item.Name)
	}
	item.holder = nil
	return nil
}

// HolderName implements ItemHolder.
func (l *Location) HolderName() string { return l.Name }

// AddExit registers an exit under each of its direction names.
// Registering a duplicate direction replaces the earlier exit.
func (l *Location) AddExit(w Way) {
	for _, dir := range w.ExitDirections() {
		l.Exits[dir] = w
	}
}

// Tell sends roomMsg to every living here except exclude and the
// specific targets, and targetMsg to the specific targets. Delivery is
// synchronous: every living has received the message when Tell returns.
// The wiretap topic sees the room message.
func (l *Location) Tell(roomMsg string, exclude *Living, targets []*Living, targetMsg string) {
	if roomMsg != "" {
		l.wiretap.Send(WiretapEvent{Sender: l.Name, Message: roomMsg}, true)
	}
	isTarget := func(lv *Living) bool {
		for _, t := range targets {
			if t == lv {
				return true
			}
		}
		return false
	}
	for _, lv := range l.livings {
		if lv == exclude {
			continue
		}
		if isTarget(lv) {
			if targetMsg != "" {
				lv.Tell(targetMsg)
			}
		} else if roomMsg != "" {
			lv.Tell(roomMsg)
		}
	}
}

// Broadcast sends a message to everyone here except one living.
func (l *Location) Broadcast(msg string, exclude *Living) {
	l.Tell(msg, exclude, nil, "")
}

// FindLiving locates a living by (lowercased) name, alias, or title.
func (l *Location) FindLiving(name string) *Living {
	name = strings.ToLower(name)
	for _, lv := range l.livings {
		if lv.Name == name {
			return lv
		}
	}
	for _, lv := range l.livings {
		if lv.Aliases[name] || strings.ToLower(lv.Title) == name {
			return lv
		}
	}
	return nil
}

// FindItem locates an item lying here by name, alias, or title.
func (l *Location) FindItem(name string) *Item {
	name = strings.ToLower(name)
	for _, it := range l.items {
		if it.Name == name {
			return it
		}
	}
	for _, it := range l.items {
		if it.Matches(name) {
			return it
		}
	}
	return nil
}

// Destroy empties the location: items are destroyed, livings are sent
// to limbo, the wiretap is cleared, exits are dropped.
func (l *Location) Destroy(limbo *Location) {
	for _, lv := range append([]*Living(nil), l.livings...) {
		if limbo != nil && limbo != l {
			lv.MoveTo(limbo, nil)
		} else {
			lv.location = nil
		}
	}
	l.livings = nil
	for _, it := range append([]*Item(nil), l.items...) {
		it.holder = nil
		it.Destroy()
	}
	l.items = nil
	l.Exits = make(map[string]Way)
	l.wiretap.Clear()
}

// Way is the traversable edge seen by the parser and movement commands.
// *Exit and *Door implement it; Allow dispatches dynamically so doors
// can refuse when closed.
type Way interface {
	ExitDirections() []string
	ExitTitle() string
	ExitDescription() string
	Target() *Location
	TargetPath() string
	Bind(target *Location)
	Allow(actor *Living) error
}

// Exit is a one-way edge from a location toward a target. The target
// may be bound (a *Location) or unbound (a textual path resolved by the
// story at world-load time).
type Exit struct {
	Directions  []string
	Title       string
	Description string

	target     *Location
	targetPath string
}

// NewExit creates a bound exit.
func NewExit(directions []string, target *Location, title, description string) *Exit {
	return &Exit{Directions: directions, Title: title, Description: description, target: target}
}

// NewUnboundExit creates an exit whose target is a textual path,
// resolved later via Bind.
func NewUnboundExit(directions []string, targetPath, title, description string) *Exit {
	return &Exit{Directions: directions, Title: title, Description: description, targetPath: targetPath}
}

// ExitDirections implements Way.
func (e *Exit) ExitDirections() []string { return e.Directions }

// ExitTitle implements Way.
func (e *Exit) ExitTitle() string { return e.Title }

// ExitDescription implements Way.
func (e *Exit) ExitDescription() string { return e.Description }

// Target returns the bound target location (nil if still unbound).
func (e *Exit) Target() *Location { return e.target }

// TargetPath returns the unresolved textual target, if any.
func (e *Exit) TargetPath() string { return e.targetPath }

// Bind resolves an unbound exit to its target location.
func (e *Exit) Bind(target *Location) {
	e.target = target
	e.targetPath = ""
}

// Allow reports whether the actor may traverse the exit. The base exit
// allows everyone; Door refuses when closed.
func (e *Exit) Allow(actor *Living) error {
	if e.target == nil {
		return Refuse("You can't go there.")
	}
	return nil
}

// Door is an exit with open/locked state.
type Door struct {
	Exit
	Opened bool
	Locked bool
	// KeyCode pairs the door with the keys that unlock it.
	KeyCode string
}

// NewDoor creates a door exit.
func NewDoor(directions []string, target *Location, title, description string, opened, locked bool) *Door {
	return &Door{
		Exit:   Exit{Directions: directions, Title: title, Description: description, target: target},
		Opened: opened,
		Locked: locked,
	}
}

// Allow refuses traversal when the door is closed.
func (d *Door) Allow(actor *Living) error {
	if !d.Opened {
		return Refuse("You can't go there; the door is closed.")
	}
	return d.Exit.Allow(actor)
}

// Open opens the door, refusing if it is locked.
func (d *Door) Open(actor *Living) error {
	if d.Opened {
		return Refuse("It's already open.")
	}
	if d.Locked {
		return Refuse("It's locked.")
	}
	d.Opened = true
	return nil
}

// Close closes the door.
func (d *Door) Close(actor *Living) error {
	if !d.Opened {
		return Refuse("It's already closed.")
	}
	d.Opened = false
	return nil
}

// Unlock unlocks the door with a matching key item.
func (d *Door) Unlock(actor *Living, key *Item) error {
	if !d.Locked {
		return Refuse("It's not locked.")
	}
	if d.KeyCode != "" && (key == nil || key.Name != d.KeyCode) {
		return Refuse("You don't have the right key.")
	}
	d.Locked = false
	return nil
}

// Lock locks the door with a matching key item.
func (d *Door) Lock(actor *Living, key *Item) error {
	if d.Locked {
		return Refuse("It's already locked.")
	}
	if d.KeyCode != "" && (key == nil || key.Name != d.KeyCode) {
		return Refuse("You don't have the right key.")
	}
	d.Locked = true
	return nil
}

var (
	_ Way = (*Exit)(nil)
	_ Way = (*Door)(nil)
)

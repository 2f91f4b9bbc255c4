// Package world holds the entity graph of the simulated world:
// locations connected by exits, items (some of which are containers or
// doors), and livings (some of which are players with an attached
// connection). All mutation happens on the driver loop goroutine; the
// only concurrent access points are player output buffers and input
// queues, which carry their own locks.
package world

import "fmt"

// ActionRefused is the world rejecting an action: a locked door, an
// item that cannot be taken, a container that will not accept the item.
// The message is surfaced to the player verbatim.
type ActionRefused struct {
	Msg string
}

func (e *ActionRefused) Error() string { return e.Msg }

// Refuse builds an ActionRefused error.
func Refuse(format string, args ...any) error {
	return &ActionRefused{Msg: fmt.Sprintf(format, args...)}
}

// WiretapEvent is published on an entity's wiretap topic for every
// message that entity hears. Wizards subscribe to these.
type WiretapEvent struct {
	Sender  string
	Message string
}

// ItemHolder is anything that can hold items: a location (items on the
// ground), a living (carried) or a container item.
type ItemHolder interface {
	// Insert adds the item, or returns ActionRefused.
	Insert(item *Item, actor *Living) error
	// Remove takes the item out, or returns ActionRefused.
	Remove(item *Item, actor *Living) error
	// HolderName names the holder in messages.
	HolderName() string
}

func insertItem(items []*Item, item *Item) []*Item {
	for _, it := range items {
		if it == item {
			return items
		}
	}
	return append(items, item)
}

func removeItem(items []*Item, item *Item) ([]*Item, bool) {
	for i, it := range items {
		if it == item {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

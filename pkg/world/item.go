package world

import (
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/pkg/lang"
)

// Item is an inanimate object. It sits in exactly one holder at a time:
// a location, a living's inventory, or a container item.
type Item struct {
	Name        string
	Title       string
	Description string
	Aliases     map[string]bool
	// Extras maps keywords to extra description text ("look at <kw>").
	Extras map[string]string
	// Takeable governs whether livings may pick the item up.
	Takeable bool

	holder    ItemHolder
	container *Container
}

// NewItem creates an item. The title defaults to the name prefixed with
// its article.
func NewItem(name, title, description string) *Item {
	if title == "" {
		title = lang.WithArticle(name)
	}
	return &Item{
		Name:        name,
		Title:       title,
		Description: description,
		Aliases:     make(map[string]bool),
		Extras:      make(map[string]string),
		Takeable:    true,
	}
}

// Holder returns the item's current holder (nil if nowhere).
func (i *Item) Holder() ItemHolder { return i.holder }

// AsContainer returns the Container this item heads, or nil for plain
// items. Item lists store the embedded *Item; this is the way back.
func (i *Item) AsContainer() *Container { return i.container }

// Location returns the location the item is in, walking up through
// containers and carriers. Nil if the item is nowhere.
func (i *Item) Location() *Location {
	switch h := i.holder.(type) {
	case *Location:
		return h
	case *Living:
		return h.location
	case *Container:
		return h.Item.Location()
	}
	return nil
}

// MoveTo moves the item to a new holder atomically: if insertion at the
// destination is refused, the item is restored to its origin before the
// error surfaces.
func (i *Item) MoveTo(dest ItemHolder, actor *Living) error {
	origin := i.holder
	if origin != nil {
		if err := origin.Remove(i, actor); err != nil {
			return err
		}
	}
	if err := dest.Insert(i, actor); err != nil {
		if origin != nil {
			origin.Insert(i, actor) //nolint:errcheck // restoring the invariant
		}
		return err
	}
	return nil
}

// Matches reports whether the item answers to the given (lowercased)
// name: exact name first, then alias, then lowercased title.
func (i *Item) Matches(name string) bool {
	if i.Name == name {
		return true
	}
	if i.Aliases[name] {
		return true
	}
	return strings.ToLower(i.Title) == name
}

// Destroy removes the item from its holder. Contained items of a
// Container are destroyed transitively by Container.Destroy.
func (i *Item) Destroy() {
	if i.holder != nil {
		i.holder.Remove(i, nil) //nolint:errcheck
		i.holder = nil
	}
}

// AllowTake is the hook a story can use to refuse picking up the item.
// The base implementation refuses only non-takeable items.
func (i *Item) AllowTake(actor *Living) error {
	if !i.Takeable {
		return Refuse("You can't take %s.", i.Title)
	}
	return nil
}

// Container is an item that holds other items.
type Container struct {
	Item
	inventory []*Item
}

// NewContainer creates an empty container item.
func NewContainer(name, title, description string) *Container {
	c := &Container{Item: *NewItem(name, title, description)}
	c.Item.container = c
	return c
}

// Inventory returns a snapshot of the contained items.
func (c *Container) Inventory() []*Item {
	inv := make([]*Item, len(c.inventory))
	copy(inv, c.inventory)
	return inv
}

// Insert implements ItemHolder.
func (c *Container) Insert(item *Item, actor *Living) error {
	c.inventory = insertItem(c.inventory, item)
	item.holder = c
	return nil
}

// Remove implements ItemHolder.
func (c *Container) Remove(item *Item, actor *Living) error {
	var ok bool
	c.inventory, ok = removeItem(c.inventory, item)
	if !ok {
		return Refuse("There's no %s in %s.", item.Name, c.Title)
	}
	item.holder = nil
	return nil
}

// HolderName implements ItemHolder.
func (c *Container) HolderName() string { return c.Name }

// Destroy destroys the container and, transitively, its contents.
func (c *Container) Destroy() {
	for _, it := range c.Inventory() {
		it.holder = nil
		it.Destroy()
	}
	c.inventory = nil
	c.Item.Destroy()
}

// FindInside locates a contained item by name.
func (c *Container) FindInside(name string) *Item {
	name = strings.ToLower(name)
	for _, it := range c.inventory {
		if it.Name == name {
			return it
		}
	}
	for _, it := range c.inventory {
		if it.Matches(name) {
			return it
		}
	}
	return nil
}

func (c *Container) String() string {
	return fmt.Sprintf("container %q (%d items)", c.Name, len(c.inventory))
}

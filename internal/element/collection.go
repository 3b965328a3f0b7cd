// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"fmt"
	"slices"
)

// Collection is the ordered, duplicate-free value of a multi-valued
// association slot. It belongs to exactly one (element, association) pair
// for its whole life.
type Collection struct {
	owner *Element
	prop  *Association
	ids   []string
}

func (c *Collection) Owner() *Element { return c.owner }
func (c *Collection) Property() *Association { return c.prop }
func (c *Collection) Len() int { return len(c.ids) }

// Items returns a copy of the members in order.
func (c *Collection) Items() []*Element {
	out := make([]*Element, 0, len(c.ids))
	for _, id := range c.ids {
		if e := c.owner.factory.resolve(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// At returns the member at position i, or nil when i is out of range.
func (c *Collection) At(i int) *Element {
	if i < 0 || i >= len(c.ids) {
		return nil
	}
	return c.owner.factory.resolve(c.ids[i])
}

// Index returns the position of e.
func (c *Collection) Index(e *Element) (int, error) {
	if e != nil {
		if i := slices.Index(c.ids, e.id); i >= 0 {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s does not hold %s", ErrNotFound, c.prop.qualified(), e)
}

func (c *Collection) Contains(e *Element) bool {
	return e != nil && c.contains(e.id)
}

// Append links e through the owning association. Appending a present
// member changes nothing.
func (c *Collection) Append(e *Element) error {
	return c.prop.Set(c.owner, e)
}

// Remove unlinks e through the owning association.
func (c *Collection) Remove(e *Element) error {
	if e == nil {
		return fmt.Errorf("%w: %s: nil member", ErrNotFound, c.prop.qualified())
	}
	return c.prop.Delete(c.owner, e)
}

// Swap exchanges the positions of a and b and publishes AssociationSwapped
// on the owner. It returns false, changing nothing, if either is absent.
func (c *Collection) Swap(a, b *Element) bool {
	i, errA := c.Index(a)
	j, errB := c.Index(b)
	if errA != nil || errB != nil {
		return false
	}
	if i == j {
		return true
	}
	c.ids[i], c.ids[j] = c.ids[j], c.ids[i]
	c.owner.emit(Event{Kind: AssociationSwapped, Element: c.owner, Property: c.prop, Old: a, New: b})
	return true
}

func (c *Collection) contains(id string) bool {
	return slices.Contains(c.ids, id)
}

// insert places id at position at, appending when at is negative or past
// the end. It returns the position used.
func (c *Collection) insert(id string, at int) int {
	if at < 0 || at > len(c.ids) {
		at = len(c.ids)
	}
	c.ids = slices.Insert(c.ids, at, id)
	return at
}

// remove deletes id and returns the position it held, or -1.
func (c *Collection) remove(id string) int {
	i := slices.Index(c.ids, id)
	if i >= 0 {
		c.ids = slices.Delete(c.ids, i, i+1)
	}
	return i
}

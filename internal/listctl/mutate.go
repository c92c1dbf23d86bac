package listctl

import (
	"context"

	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/requestid"
)

// ReplaceItem swaps in an updated copy of an item already in the list.
// It reports whether the id was found.
func (c *Controller[T]) ReplaceItem(item T) bool {
	c.mu.Lock()
	idx := c.indexLocked(item.ItemID())
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.items[idx] = item
	state := c.stateLocked()
	c.mu.Unlock()

	c.notify(state)
	return true
}

func (c *Controller[T]) RemoveItem(id string) bool {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	delete(c.origin, id)
	state := c.stateLocked()
	c.mu.Unlock()

	c.notify(state)
	return true
}

func (c *Controller[T]) indexLocked(id string) int {
	if _, ok := c.origin[id]; !ok {
		return -1
	}
	for i, it := range c.items {
		if it.ItemID() == id {
			return i
		}
	}
	return -1
}

// RefreshItemPage refetches the page the item with id was loaded from.
func (c *Controller[T]) RefreshItemPage(ctx context.Context, id string) models.Envelope[models.ListPage[T]] {
	c.mu.Lock()
	cursor, ok := c.origin[id]
	c.mu.Unlock()
	if !ok {
		return models.Fail[models.ListPage[T]]("item " + id + " is not in the list")
	}
	return c.RefreshPage(ctx, cursor)
}

// RefreshPage refetches the page loaded with cursor and merges it into
// the accumulated list: known ids are updated in place, ids from that
// page that are no longer returned are dropped, and new ids are
// inserted after the page's last surviving row. Other pages, the next
// cursor and the scroll position are left alone. The result is
// discarded if a LoadInitial started meanwhile.
func (c *Controller[T]) RefreshPage(ctx context.Context, cursor string) models.Envelope[models.ListPage[T]] {
	c.mu.Lock()
	if c.closed || !c.started {
		c.mu.Unlock()
		return models.Fail[models.ListPage[T]]("list is not loaded")
	}
	gen, q := c.gen, c.query.Clone()
	c.mu.Unlock()

	env := c.fetch(requestid.Ensure(ctx), q, cursor)
	if !env.Success {
		c.mu.Lock()
		if gen == c.gen {
			c.message = env.Message
		}
		state := c.stateLocked()
		c.mu.Unlock()
		c.notify(state)
		return env
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return env
	}
	c.mergePageLocked(env.Results.Items, cursor)
	c.message = ""
	state := c.stateLocked()
	c.mu.Unlock()

	c.notify(state)
	return env
}

func (c *Controller[T]) mergePageLocked(fresh []T, cursor string) {
	byID := make(map[string]T, len(fresh))
	var order []string
	for _, it := range fresh {
		id := it.ItemID()
		if _, dup := byID[id]; dup {
			continue
		}
		byID[id] = it
		order = append(order, id)
	}

	merged := make([]T, 0, len(c.items)+len(fresh))
	insertAt := -1
	for _, it := range c.items {
		id := it.ItemID()
		if c.origin[id] != cursor {
			merged = append(merged, it)
			continue
		}
		updated, ok := byID[id]
		if !ok {
			delete(c.origin, id)
			continue
		}
		merged = append(merged, updated)
		delete(byID, id)
		insertAt = len(merged)
	}
	if insertAt < 0 {
		insertAt = len(merged)
	}

	var added []T
	for _, id := range order {
		it, ok := byID[id]
		if !ok {
			continue
		}
		if _, elsewhere := c.origin[id]; elsewhere {
			continue
		}
		c.origin[id] = cursor
		added = append(added, it)
	}

	c.items = append(merged[:insertAt:insertAt], append(added, merged[insertAt:]...)...)
}

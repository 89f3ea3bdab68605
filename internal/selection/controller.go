// Package selection holds the palette session: the query, the ranked result
// list and a cursor that stays inside it.
package selection

import (
	"github.com/abelbrown/palette/internal/catalog"
	"github.com/abelbrown/palette/internal/ranking"
)

// NoCursor is reported by Cursor when the ranked list is empty or the
// palette is closed.
const NoCursor = -1

// Controller is the palette state machine. It is not safe for concurrent
// use; the UI update loop owns it.
type Controller struct {
	index    *ranking.Index
	dispatch catalog.Dispatcher

	open   bool
	query  string
	ranked []catalog.Item
	cursor int
}

// New returns a closed controller over items. dispatch runs confirmed
// invocations and may be nil.
func New(items []catalog.Item, dispatch catalog.Dispatcher) *Controller {
	return &Controller{
		index:    ranking.NewIndex(items),
		dispatch: dispatch,
		cursor:   NoCursor,
	}
}

// Open starts a fresh session: empty query, catalog order, cursor on top.
func (c *Controller) Open() {
	c.open = true
	c.query = ""
	c.rerank()
}

// Close ends the session and discards the query and cursor.
func (c *Controller) Close() {
	c.open = false
	c.query = ""
	c.ranked = nil
	c.cursor = NoCursor
}

// Dismiss closes without invoking anything.
func (c *Controller) Dismiss() { c.Close() }

// IsOpen reports whether a session is active.
func (c *Controller) IsOpen() bool { return c.open }

// SetQuery replaces the query, re-ranks and snaps the cursor to the top.
func (c *Controller) SetQuery(q string) {
	if !c.open {
		return
	}
	c.query = q
	c.rerank()
}

// SetCatalog swaps in a new item snapshot. An open session is re-ranked
// with its current query and the cursor returns to the top.
func (c *Controller) SetCatalog(items []catalog.Item) {
	c.index = ranking.NewIndex(items)
	if c.open {
		c.rerank()
	}
}

// MoveNext advances the cursor, stopping at the last item.
func (c *Controller) MoveNext() bool {
	if c.cursor == NoCursor || c.cursor >= len(c.ranked)-1 {
		return false
	}
	c.cursor++
	return true
}

// MovePrevious moves the cursor up, stopping at the first item.
func (c *Controller) MovePrevious() bool {
	if c.cursor == NoCursor || c.cursor == 0 {
		return false
	}
	c.cursor--
	return true
}

// SetCursor moves the cursor to i, as when the pointer hovers a row.
// Out-of-range positions are ignored.
func (c *Controller) SetCursor(i int) bool {
	if i < 0 || i >= len(c.ranked) {
		return false
	}
	c.cursor = i
	return true
}

// Confirm dispatches the selected item's invocation and closes the
// palette. With nothing selected it does nothing and returns false.
func (c *Controller) Confirm() (catalog.Invocation, bool) {
	item, ok := c.Selected()
	if !ok {
		return catalog.Invocation{}, false
	}
	if c.dispatch != nil {
		c.dispatch(item.Invocation)
	}
	c.Close()
	return item.Invocation, true
}

// ConfirmAt selects row i and confirms it, as for a pointer click.
func (c *Controller) ConfirmAt(i int) (catalog.Invocation, bool) {
	if !c.SetCursor(i) {
		return catalog.Invocation{}, false
	}
	return c.Confirm()
}

// Query returns the current query.
func (c *Controller) Query() string { return c.query }

// Cursor returns the selected position or NoCursor.
func (c *Controller) Cursor() int { return c.cursor }

// Len returns the number of ranked items.
func (c *Controller) Len() int { return len(c.ranked) }

// Items returns a copy of the ranked list.
func (c *Controller) Items() []catalog.Item {
	return append([]catalog.Item(nil), c.ranked...)
}

// CatalogItems returns the current snapshot in catalog order.
func (c *Controller) CatalogItems() []catalog.Item {
	return c.index.Items()
}

// Selected returns the item under the cursor.
func (c *Controller) Selected() (catalog.Item, bool) {
	if c.cursor < 0 || c.cursor >= len(c.ranked) {
		return catalog.Item{}, false
	}
	return c.ranked[c.cursor], true
}

func (c *Controller) rerank() {
	c.ranked = c.index.Rank(c.query)
	if len(c.ranked) > 0 {
		c.cursor = 0
	} else {
		c.cursor = NoCursor
	}
}

// Package entry memoizes where each item of a staggered grid was placed.
//
// A [Cache] maps item positions to an [Entry]: the lane the item was assigned
// to and the size it measured at. Entries are write-once. The first placement
// recorded for a position is canonical and later layout passes never alter it,
// which is what keeps a replay from position 0 stable no matter which way the
// user scrolled to get there. Entries go away only when the dataset changes
// ([Cache.Clear], [Cache.InvalidateFrom]).
//
// [Cache.Records] and [Cache.Load] move the whole cache in and out as ordered
// (position, lane, width, height) tuples for persistence.
package entry

import (
	"sort"

	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/lanes"
)

// Entry is the placement record for one item position.
type Entry struct {
	Lane   int
	Width  int
	Height int
}

// Record is an Entry together with its position, the unit of export/import.
type Record struct {
	Position int `json:"position"`
	Lane     int `json:"lane"`
	Width    int `json:"width"`
	Height   int `json:"height"`
}

// Entry returns the record without its position.
func (r Record) Entry() Entry { return Entry{Lane: r.Lane, Width: r.Width, Height: r.Height} }

// Cache is a position-indexed store of entries. The zero value is ready to
// use. A Cache is not safe for concurrent use.
type Cache struct {
	entries map[int]Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[int]Entry)}
}

// Get returns the entry for position, if one was recorded.
func (c *Cache) Get(position int) (Entry, bool) {
	e, ok := c.entries[position]
	return e, ok
}

// Set records e for position unless an entry already exists. It reports
// whether e was stored.
func (c *Cache) Set(position int, e Entry) bool {
	if _, ok := c.entries[position]; ok {
		return false
	}
	if c.entries == nil {
		c.entries = make(map[int]Entry)
	}
	c.entries[position] = e
	return true
}

// CreateOrGet returns the entry for position, creating it from lane and the
// measured frame when the position has none yet.
func (c *Cache) CreateOrGet(position, lane int, frame lanes.Rect) Entry {
	if e, ok := c.entries[position]; ok {
		return e
	}
	e := Entry{Lane: lane, Width: frame.Width(), Height: frame.Height()}
	c.Set(position, e)
	return e
}

// Len returns the number of recorded positions.
func (c *Cache) Len() int { return len(c.entries) }

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
}

// InvalidateFrom drops the entries of position and everything after it and
// returns how many were removed. Any change to an item shifts the lane
// assignment of every later item, so nothing past it can be kept.
func (c *Cache) InvalidateFrom(position int) int {
	n := 0
	for p := range c.entries {
		if p >= position {
			delete(c.entries, p)
			n++
		}
	}
	return n
}

// Records returns every entry ordered by position.
func (c *Cache) Records() []Record {
	out := make([]Record, 0, len(c.entries))
	for p, e := range c.entries {
		out = append(out, Record{Position: p, Lane: e.Lane, Width: e.Width, Height: e.Height})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Load bulk-inserts records. Write-once semantics still apply: positions that
// already have an entry, or that appear twice in records, keep the first
// value. All records are validated before any is inserted, so a bad batch
// leaves the cache untouched. Load returns how many records were stored.
func (c *Cache) Load(records []Record) (int, error) {
	for _, r := range records {
		if err := validateRecord(r); err != nil {
			return 0, err
		}
	}
	n := 0
	for _, r := range records {
		if c.Set(r.Position, r.Entry()) {
			n++
		}
	}
	return n, nil
}

func validateRecord(r Record) error {
	switch {
	case r.Position < 0:
		return errs.New(errs.ErrCodeInvalidSnapshot, "negative position %d", r.Position)
	case r.Lane < 0:
		return errs.New(errs.ErrCodeInvalidSnapshot, "position %d: negative lane %d", r.Position, r.Lane)
	case r.Width < 0 || r.Height < 0:
		return errs.New(errs.ErrCodeInvalidSnapshot, "position %d: negative size %dx%d", r.Position, r.Width, r.Height)
	}
	return nil
}

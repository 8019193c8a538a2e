package classification

import (
	"context"

	"github.com/growthlab/atlas/errors"
)

// InMemory is a Classification backed by an in-memory entry table. It is the
// lookup of choice for tests and for small classifications loaded from
// configuration files.
type InMemory struct {
	levels  []string
	entries map[int]Entry
	byLevel map[string][]Entry
	ordered []Entry
}

// NewInMemory builds an in-memory classification from an ordered level list
// (coarsest first) and a set of entries. Entries on unknown levels are
// rejected.
func NewInMemory(levels []string, entries []Entry) (*InMemory, error) {
	c := &InMemory{
		levels:  append([]string(nil), levels...),
		entries: make(map[int]Entry, len(entries)),
		byLevel: make(map[string][]Entry, len(levels)),
		ordered: append([]Entry(nil), entries...),
	}

	known := make(map[string]bool, len(levels))
	for _, level := range levels {
		known[level] = true
	}

	for _, entry := range entries {
		if !known[entry.Level] {
			return nil, errors.Wrapf(newUnknownLevel(entry.Level, levels),
				"entry %d (%s)", entry.ID, entry.Code)
		}
		if _, dup := c.entries[entry.ID]; dup {
			return nil, errors.Newf("duplicate entry id %d", entry.ID)
		}
		c.entries[entry.ID] = entry
		c.byLevel[entry.Level] = append(c.byLevel[entry.Level], entry)
	}

	return c, nil
}

// Levels returns the level names ordered coarsest first.
func (c *InMemory) Levels() []string {
	return append([]string(nil), c.levels...)
}

// GetByID returns the entry with the given id, or (nil, nil) if absent.
func (c *InMemory) GetByID(_ context.Context, id int) (*Entry, error) {
	entry, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// GetAll returns all entries, filtered to one level when level != "".
func (c *InMemory) GetAll(_ context.Context, level string) ([]Entry, error) {
	if level == "" {
		return append([]Entry(nil), c.ordered...), nil
	}
	return append([]Entry(nil), c.byLevel[level]...), nil
}

// GetLevelByID returns the level of the given id, or ("", nil) if unknown.
func (c *InMemory) GetLevelByID(_ context.Context, id int) (string, error) {
	entry, ok := c.entries[id]
	if !ok {
		return "", nil
	}
	return entry.Level, nil
}

// AggregationMapping walks each entry at fromLevel up the parent chain the
// exact number of hops separating the two levels. This is the in-memory
// equivalent of the SQL self-join chain: ids whose chain breaks early are
// silently absent from the result.
func (c *InMemory) AggregationMapping(_ context.Context, fromLevel, toLevel string) (map[int]int, error) {
	k, err := hops(c.levels, fromLevel, toLevel)
	if err != nil {
		return nil, err
	}

	mapping := make(map[int]int, len(c.byLevel[fromLevel]))
	for _, entry := range c.byLevel[fromLevel] {
		current := entry
		reached := true
		for hop := 0; hop < k; hop++ {
			if current.ParentID == nil {
				reached = false
				break
			}
			parent, ok := c.entries[*current.ParentID]
			if !ok {
				reached = false
				break
			}
			current = parent
		}
		if reached {
			mapping[entry.ID] = current.ID
		}
	}

	return mapping, nil
}

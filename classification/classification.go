// Package classification models hierarchical coding schemes (product codes,
// geographic regions) and answers level and ancestor questions about them.
//
// A classification is an ordered list of levels, coarsest first, plus a table
// of entries forming a tree: every non-root entry points at a parent on a
// strictly coarser level. The table is loaded once at startup and treated as
// immutable for the process lifetime, so lookups may be cached indefinitely
// (see Cached).
package classification

import (
	"context"
	"slices"
)

// Entry is one row of a classification table.
type Entry struct {
	ID       int    `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	ParentID *int   `json:"parent_id"`
}

// Classification answers hierarchy questions about one coding scheme.
//
// Point lookups report a missing id as an absent result, not an error:
// GetByID returns (nil, nil) and GetLevelByID returns ("", nil). Errors are
// reserved for caller mistakes (bad level names or ordering) and backend
// failures.
type Classification interface {
	// Levels returns the level names ordered coarsest first.
	Levels() []string

	// GetByID returns the entry with the given id, or (nil, nil) if absent.
	GetByID(ctx context.Context, id int) (*Entry, error)

	// GetAll returns all entries, filtered to one level when level != "".
	GetAll(ctx context.Context, level string) ([]Entry, error)

	// GetLevelByID returns the level of the entry with the given id, or
	// ("", nil) if the id is unknown.
	GetLevelByID(ctx context.Context, id int) (string, error)

	// AggregationMapping maps every id at fromLevel to the id of its
	// ancestor at toLevel. fromLevel must be strictly finer than toLevel;
	// equal levels fail with ErrEqualLevels and a coarse-to-fine request
	// fails with ErrBackwardLevels.
	//
	// Ids whose parent chain does not reach toLevel in exactly
	// index(fromLevel)-index(toLevel) hops are absent from the result. The
	// mapping assumes fully populated parent chains (no skip-level
	// parents); that assumption is not validated here.
	AggregationMapping(ctx context.Context, fromLevel, toLevel string) (map[int]int, error)
}

// hops validates the level pair for an aggregation mapping and returns the
// number of parent hops from fromLevel up to toLevel.
func hops(levels []string, fromLevel, toLevel string) (int, error) {
	fromIndex := slices.Index(levels, fromLevel)
	if fromIndex < 0 {
		return 0, newUnknownLevel(fromLevel, levels)
	}
	toIndex := slices.Index(levels, toLevel)
	if toIndex < 0 {
		return 0, newUnknownLevel(toLevel, levels)
	}
	if fromIndex == toIndex {
		return 0, newEqualLevels(fromLevel)
	}
	if fromIndex < toIndex {
		return 0, newBackwardLevels(fromLevel, toLevel)
	}
	return fromIndex - toIndex, nil
}

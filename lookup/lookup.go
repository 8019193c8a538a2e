// Package lookup executes fully resolved queries against a backing store.
//
// A Strategy receives the slice definition a query was matched against plus
// the resolved query itself, filters the slice's rows by exact equality on
// every argument's bound field (and level, where the slice is multi-level
// for that facet), and returns the rows of the free result dimension. No
// matching rows is an empty result, never an error.
package lookup

import (
	"context"

	"github.com/growthlab/atlas/query"
	"github.com/growthlab/atlas/registry"
)

// Row is one record returned from a slice, keyed by physical column name.
type Row map[string]interface{}

// Strategy executes a resolved query against a backing store.
type Strategy interface {
	Fetch(ctx context.Context, sliceDef registry.Slice, q query.Query) ([]Row, error)
}

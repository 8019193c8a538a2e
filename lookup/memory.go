package lookup

import (
	"context"
	"fmt"

	"github.com/growthlab/atlas/query"
	"github.com/growthlab/atlas/registry"
)

// Memory looks up resolved queries in in-memory row tables, one per slice.
// It applies the same equality semantics as the SQL strategy and is the
// backing store of choice for tests and demo setups.
type Memory struct {
	tables map[string][]Row
}

// NewMemory builds an empty in-memory lookup strategy.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]Row)}
}

// Load replaces the rows backing a slice.
func (m *Memory) Load(slice string, rows []Row) {
	m.tables[slice] = rows
}

// Fetch filters the slice's rows by exact equality on every argument's
// bound field, plus level columns where the slice is multi-level. Values
// are compared by their string form, since query argument values arrive
// verbatim from the URL.
func (m *Memory) Fetch(_ context.Context, sliceDef registry.Slice, q query.Query) ([]Row, error) {
	results := []Row{}

rows:
	for _, row := range m.tables[q.Slice] {
		for name, argument := range q.Arguments {
			if fmt.Sprint(row[argument.FieldName]) != argument.Value {
				continue rows
			}
			if len(sliceDef.Levels[name]) > 1 &&
				fmt.Sprint(row[name+"_level"]) != argument.Level {
				continue rows
			}
		}
		if q.Result.Level != "" && len(sliceDef.Levels[q.Result.Name]) > 1 &&
			fmt.Sprint(row[q.Result.Name+"_level"]) != q.Result.Level {
			continue rows
		}
		results = append(results, row)
	}

	return results, nil
}

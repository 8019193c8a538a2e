package lookup

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/growthlab/atlas/errors"
	"github.com/growthlab/atlas/query"
	"github.com/growthlab/atlas/registry"
)

// SQL looks up resolved queries in relational slice tables. Each slice is a
// table named after the slice; argument predicates are exact equality on the
// bound field names. A <facet>_level column only exists (and is only
// filtered on) when the slice declares more than one level for that facet.
type SQL struct {
	db *sql.DB
}

// NewSQL builds a SQL lookup strategy over an open database handle.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// Fetch builds the equality predicates for the query's arguments and result
// level and returns all matching rows. Predicates are emitted in sorted
// argument order so the generated SQL is deterministic.
func (s *SQL) Fetch(ctx context.Context, sliceDef registry.Slice, q query.Query) ([]Row, error) {
	if q.Slice == "" {
		return nil, errors.AssertionFailedf("query has no slice bound; run it through the resolver first")
	}

	var predicates []string
	var args []interface{}

	for _, name := range sortedArgumentNames(q.Arguments) {
		argument := q.Arguments[name]
		predicates = append(predicates, argument.FieldName+" = ?")
		args = append(args, argument.Value)

		if len(sliceDef.Levels[name]) > 1 {
			predicates = append(predicates, name+"_level = ?")
			args = append(args, argument.Level)
		}
	}

	if q.Result.Level != "" && len(sliceDef.Levels[q.Result.Name]) > 1 {
		predicates = append(predicates, q.Result.Name+"_level = ?")
		args = append(args, q.Result.Level)
	}

	stmt := "SELECT * FROM " + q.Slice
	if len(predicates) > 0 {
		stmt += " WHERE " + strings.Join(predicates, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch from slice %s", q.Slice)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrapf(err, "columns of slice %s", q.Slice)
	}

	results := []Row{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, errors.Wrapf(err, "scan row from slice %s", q.Slice)
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

func sortedArgumentNames(arguments map[string]query.Argument) []string {
	names := make([]string, 0, len(arguments))
	for name := range arguments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

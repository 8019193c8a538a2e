package classification

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/growthlab/atlas/errors"
)

// SQL is a Classification backed by a relational table with columns
// (id, code, name, level, parent_id). The table is expected to be immutable
// for the process lifetime; wrap with Cached to avoid repeated round trips.
type SQL struct {
	db     *sql.DB
	table  string
	levels []string
}

// NewSQL builds a SQL-backed classification over the given table. The table
// name comes from trusted registry configuration, never from request input.
func NewSQL(db *sql.DB, table string, levels []string) *SQL {
	return &SQL{
		db:     db,
		table:  table,
		levels: append([]string(nil), levels...),
	}
}

// Levels returns the level names ordered coarsest first.
func (c *SQL) Levels() []string {
	return append([]string(nil), c.levels...)
}

// GetByID returns the entry with the given id, or (nil, nil) if absent.
func (c *SQL) GetByID(ctx context.Context, id int) (*Entry, error) {
	query := fmt.Sprintf(
		"SELECT id, code, name, level, parent_id FROM %s WHERE id = ?", c.table)

	entry, err := scanEntry(c.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get entry %d from %s", id, c.table)
	}
	return entry, nil
}

// GetAll returns all entries, filtered to one level when level != "".
func (c *SQL) GetAll(ctx context.Context, level string) ([]Entry, error) {
	query := fmt.Sprintf(
		"SELECT id, code, name, level, parent_id FROM %s", c.table)
	args := []interface{}{}
	if level != "" {
		query += " WHERE level = ?"
		args = append(args, level)
	}
	query += " ORDER BY id"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list entries from %s", c.table)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan entry from %s", c.table)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// GetLevelByID returns the level of the given id, or ("", nil) if unknown.
func (c *SQL) GetLevelByID(ctx context.Context, id int) (string, error) {
	query := fmt.Sprintf("SELECT level FROM %s WHERE id = ?", c.table)

	var level string
	if err := c.db.QueryRowContext(ctx, query, id).Scan(&level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrapf(err, "get level of entry %d from %s", id, c.table)
	}
	return level, nil
}

// AggregationMapping builds a chain of self-joins, one alias per level
// between fromLevel and toLevel, joining each alias's id to the previous
// alias's parent_id, and projects (finest id, coarsest id). Ids whose parent
// chain breaks before reaching toLevel drop out of the join.
func (c *SQL) AggregationMapping(ctx context.Context, fromLevel, toLevel string) (map[int]int, error) {
	k, err := hops(c.levels, fromLevel, toLevel)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT t0.id, t%d.id FROM %s t0", k, c.table)
	for i := 1; i <= k; i++ {
		fmt.Fprintf(&b, " JOIN %s t%d ON t%d.id = t%d.parent_id", c.table, i, i, i-1)
	}
	b.WriteString(" WHERE t0.level = ?")

	rows, err := c.db.QueryContext(ctx, b.String(), fromLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "aggregation mapping %s->%s on %s",
			fromLevel, toLevel, c.table)
	}
	defer rows.Close()

	mapping := make(map[int]int)
	for rows.Next() {
		var fromID, toID int
		if err := rows.Scan(&fromID, &toID); err != nil {
			return nil, errors.Wrap(err, "scan aggregation mapping row")
		}
		mapping[fromID] = toID
	}
	return mapping, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var parentID sql.NullInt64
	if err := row.Scan(&entry.ID, &entry.Code, &entry.Name, &entry.Level, &parentID); err != nil {
		return nil, err
	}
	if parentID.Valid {
		parent := int(parentID.Int64)
		entry.ParentID = &parent
	}
	return &entry, nil
}

package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthlab/atlas/internal/testutil"
)

// Runs the SQL strategy against the real migrated sqlite schema instead of a
// statement mock.
func TestSQLFetchAgainstSchema(t *testing.T) {
	db := testutil.MigratedTestDB(t)

	_, err := db.Exec(`INSERT INTO department_product_year
		(location_id, product_id, product_level, year, export_value, import_value)
		VALUES
		(101, 23, '4digit', 2012, 1200.5, 33.0),
		(102, 23, '4digit', 2012, 87.25, 0.0),
		(101, 2, '2digit', 2012, 9000.0, 120.0)`)
	require.NoError(t, err)

	sliceDef, q := resolvedExporterQuery()

	rows, err := NewSQL(db).Fetch(context.Background(), sliceDef, q)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 101, rows[0]["location_id"])
	assert.EqualValues(t, 102, rows[1]["location_id"])

	// The 2digit row must be excluded by the product_level predicate.
	for _, row := range rows {
		assert.EqualValues(t, "4digit", row["product_level"])
	}
}

package lookup

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthlab/atlas/query"
	"github.com/growthlab/atlas/registry"
)

func resolvedExporterQuery() (registry.Slice, query.Query) {
	sliceDef := registry.Slice{Levels: map[string][]string{
		"location": {"department"},
		"product":  {"section", "2digit", "4digit"},
		"year":     {"year"},
	}}
	q := query.Query{
		Endpoint: "product_exporters",
		Dataset:  "location_product_year",
		Slice:    "department_product_year",
		Arguments: map[string]query.Argument{
			"product": {
				Name: "product", Value: "23", Type: "product",
				Level: "4digit", FieldName: "product_id",
			},
		},
		Result: query.Result{
			Name: "location", Type: "location",
			Level: "department", FieldName: "location_id",
		},
	}
	return sliceDef, q
}

func TestSQLFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sliceDef, q := resolvedExporterQuery()

	// product is multi-level in this slice, so a product_level predicate is
	// added; location is single-level, so no location_level predicate.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM department_product_year WHERE product_id = ? AND product_level = ?")).
		WithArgs("23", "4digit").
		WillReturnRows(sqlmock.NewRows(
			[]string{"location_id", "product_id", "product_level", "year", "export_value"}).
			AddRow(101, 23, "4digit", 2012, 1200.5).
			AddRow(102, 23, "4digit", 2012, 87.25))

	rows, err := NewSQL(db).Fetch(context.Background(), sliceDef, q)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 101, rows[0]["location_id"])
	assert.EqualValues(t, 1200.5, rows[0]["export_value"])
	assert.EqualValues(t, 102, rows[1]["location_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

// No matching rows is an empty sequence, not an error.
func TestSQLFetchEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sliceDef, q := resolvedExporterQuery()

	mock.ExpectQuery("SELECT \\* FROM department_product_year").
		WillReturnRows(sqlmock.NewRows(
			[]string{"location_id", "product_id", "product_level", "year", "export_value"}))

	rows, err := NewSQL(db).Fetch(context.Background(), sliceDef, q)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Len(t, rows, 0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLFetchMultiLevelResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// A slice carrying both location levels filters on location_level too.
	sliceDef := registry.Slice{Levels: map[string][]string{
		"location": {"country", "department"},
		"product":  {"4digit"},
	}}
	_, q := resolvedExporterQuery()
	q.Slice = "location_product_year_all"

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM location_product_year_all WHERE product_id = ? AND location_level = ?")).
		WithArgs("23", "department").
		WillReturnRows(sqlmock.NewRows(
			[]string{"location_id", "location_level", "product_id", "export_value"}).
			AddRow(101, "department", 23, 42.0))

	rows, err := NewSQL(db).Fetch(context.Background(), sliceDef, q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, "department", rows[0]["location_level"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLFetchQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sliceDef, q := resolvedExporterQuery()

	mock.ExpectQuery("SELECT \\* FROM department_product_year").
		WillReturnError(assert.AnError)

	_, err = NewSQL(db).Fetch(context.Background(), sliceDef, q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "department_product_year")
}

func TestSQLFetchUnresolvedQuery(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sliceDef, q := resolvedExporterQuery()
	q.Slice = ""

	_, err = NewSQL(db).Fetch(context.Background(), sliceDef, q)
	assert.Error(t, err)
}

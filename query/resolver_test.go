package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthlab/atlas/classification"
	"github.com/growthlab/atlas/registry"
)

func intPtr(v int) *int { return &v }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := &registry.Registry{
		Classifications: map[string]registry.ClassificationDef{
			"product":  {Table: "product_classification", Levels: []string{"section", "2digit", "4digit"}},
			"location": {Table: "location_classification", Levels: []string{"country", "department"}},
		},
		Datasets: map[string]registry.Dataset{
			"location_product_year": {
				Facets: map[string]registry.Facet{
					"location": {Type: "location", FieldName: "location_id"},
					"product":  {Type: "product", FieldName: "product_id"},
					"year":     {Type: "year", FieldName: "year"},
				},
				Slices: map[string]registry.Slice{
					"country_product_year": {Levels: map[string][]string{
						"location": {"country"},
						"product":  {"section", "2digit", "4digit"},
						"year":     {"year"},
					}},
					"department_product_year": {Levels: map[string][]string{
						"location": {"department"},
						"product":  {"section", "2digit", "4digit"},
						"year":     {"year"},
					}},
				},
			},
		},
		Endpoints: map[string]registry.Endpoint{
			"product_exporters": {
				URL:          "/data/product/{product_id}/exporters",
				Dataset:      "location_product_year",
				Slices:       []string{"country_product_year", "department_product_year"},
				DefaultSlice: "country_product_year",
				Result:       "location",
			},
		},
	}
	require.NoError(t, reg.Validate())
	return reg
}

func testClassifications(t *testing.T) map[string]classification.Classification {
	t.Helper()

	products, err := classification.NewInMemory(
		[]string{"section", "2digit", "4digit"},
		[]classification.Entry{
			{ID: 1, Code: "VI", Name: "Mineral products", Level: "section"},
			{ID: 2, Code: "27", Name: "Mineral fuels", Level: "2digit", ParentID: intPtr(1)},
			{ID: 23, Code: "2709", Name: "Crude petroleum", Level: "4digit", ParentID: intPtr(2)},
		})
	require.NoError(t, err)

	locations, err := classification.NewInMemory(
		[]string{"country", "department"},
		[]classification.Entry{
			{ID: 100, Code: "COL", Name: "Colombia", Level: "country"},
			{ID: 101, Code: "ANT", Name: "Antioquia", Level: "department", ParentID: intPtr(100)},
		})
	require.NoError(t, err)

	return map[string]classification.Classification{
		"product":  products,
		"location": locations,
	}
}

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(testRegistry(t), testClassifications(t))
}

func exporterRequest(level string) RawRequest {
	req := RawRequest{
		Endpoint:    "product_exporters",
		PathParams:  map[string]string{"product_id": "23"},
		QueryParams: map[string]string{},
	}
	if level != "" {
		req.QueryParams["level"] = level
	}
	return req
}

func TestRequestToQuery(t *testing.T) {
	q := RequestToQuery(exporterRequest("department"))

	assert.Equal(t, "product_exporters", q.Endpoint)
	assert.Equal(t, "department", q.Result.Level)
	require.Len(t, q.Arguments, 1)
	// product_id is normalized to product; the value stays verbatim
	assert.Equal(t, Argument{Name: "product", Value: "23"}, q.Arguments["product"])
	// nothing else is filled in: stage 1 is pure reshaping
	assert.Empty(t, q.Dataset)
	assert.Empty(t, q.Slice)
	assert.Empty(t, q.Result.Name)
}

func TestRequestToQueryNoLevel(t *testing.T) {
	q := RequestToQuery(exporterRequest(""))
	assert.Empty(t, q.Result.Level)
}

func TestInterpret(t *testing.T) {
	r := testResolver(t)

	q, err := r.Interpret(RequestToQuery(exporterRequest("department")))
	require.NoError(t, err)

	assert.Equal(t, "location_product_year", q.Dataset)
	assert.Equal(t, "product", q.Arguments["product"].Type)
	assert.Equal(t, "location", q.Result.Name)
	assert.Equal(t, "location", q.Result.Type)
}

// Re-deriving from the same raw input must always yield the same
// interpreted query.
func TestInterpretDeterministic(t *testing.T) {
	r := testResolver(t)

	first, err := r.Interpret(RequestToQuery(exporterRequest("department")))
	require.NoError(t, err)
	second, err := r.Interpret(RequestToQuery(exporterRequest("department")))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInterpretUnknownEndpoint(t *testing.T) {
	r := testResolver(t)

	req := exporterRequest("")
	req.Endpoint = "nope"
	_, err := r.Interpret(RequestToQuery(req))
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestInterpretUnknownArgument(t *testing.T) {
	r := testResolver(t)

	req := exporterRequest("")
	req.PathParams["municipality_id"] = "7"
	_, err := r.Interpret(RequestToQuery(req))
	require.ErrorIs(t, err, ErrUnknownArgument)
	assert.Contains(t, err.Error(), "municipality")
}

func TestInterpretUnknownFacet(t *testing.T) {
	reg := testRegistry(t)
	endpoint := reg.Endpoints["product_exporters"]
	endpoint.Result = "municipality"
	reg.Endpoints["product_exporters"] = endpoint
	r := NewResolver(reg, testClassifications(t))

	_, err := r.Interpret(RequestToQuery(exporterRequest("")))
	require.ErrorIs(t, err, ErrUnknownFacet)
	assert.Contains(t, err.Error(), "municipality")
}

func TestInterpretDoesNotMutateInput(t *testing.T) {
	r := testResolver(t)

	input := RequestToQuery(exporterRequest("department"))
	_, err := r.Interpret(input)
	require.NoError(t, err)
	assert.Empty(t, input.Arguments["product"].Type)
	assert.Empty(t, input.Dataset)
}

func TestInferLevels(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	q, err := r.Interpret(RequestToQuery(exporterRequest("department")))
	require.NoError(t, err)
	q, err = r.InferLevels(ctx, q)
	require.NoError(t, err)

	// product 23 resolves to classification level 4digit
	assert.Equal(t, "4digit", q.Arguments["product"].Level)
	// the result level is not touched by stage 3
	assert.Equal(t, "department", q.Result.Level)
}

func TestInferLevelsKeepsExplicitLevel(t *testing.T) {
	r := testResolver(t)

	q, err := r.Interpret(RequestToQuery(exporterRequest("")))
	require.NoError(t, err)
	argument := q.Arguments["product"]
	argument.Level = "2digit"
	q.Arguments["product"] = argument

	q, err = r.InferLevels(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "2digit", q.Arguments["product"].Level)
}

func TestInferLevelsUnknownEntityType(t *testing.T) {
	r := NewResolver(testRegistry(t), map[string]classification.Classification{})

	q, err := r.Interpret(RequestToQuery(exporterRequest("")))
	require.NoError(t, err)
	_, err = r.InferLevels(context.Background(), q)
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestInferLevelsEntityNotFound(t *testing.T) {
	r := testResolver(t)

	req := exporterRequest("department")
	req.PathParams["product_id"] = "99999"
	q, err := r.Interpret(RequestToQuery(req))
	require.NoError(t, err)

	_, err = r.InferLevels(context.Background(), q)
	require.ErrorIs(t, err, ErrEntityNotFound)
	assert.Contains(t, err.Error(), "99999")
}

func TestInferLevelsNonNumericID(t *testing.T) {
	r := testResolver(t)

	req := exporterRequest("")
	req.PathParams["product_id"] = "crude"
	q, err := r.Interpret(RequestToQuery(req))
	require.NoError(t, err)

	_, err = r.InferLevels(context.Background(), q)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

// The headline scenario: /data/product/23/exporters/?level=department must
// select department_product_year and bind the physical field names.
func TestResolveSelectsSliceByResultLevel(t *testing.T) {
	r := testResolver(t)

	q, err := r.Resolve(context.Background(), exporterRequest("department"))
	require.NoError(t, err)

	assert.Equal(t, "department_product_year", q.Slice)
	assert.Equal(t, "location_product_year", q.Dataset)
	assert.Equal(t, "location_id", q.Result.FieldName)
	assert.Equal(t, "department", q.Result.Level)
	assert.Equal(t, "product_id", q.Arguments["product"].FieldName)
	assert.Equal(t, "4digit", q.Arguments["product"].Level)
}

// Omitting ?level= on an endpoint with a default slice must resolve
// identically to explicitly asking for that slice's level.
func TestResolveDefaultSlice(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	defaulted, err := r.Resolve(ctx, exporterRequest(""))
	require.NoError(t, err)
	explicit, err := r.Resolve(ctx, exporterRequest("country"))
	require.NoError(t, err)

	assert.Equal(t, explicit, defaulted)
	assert.Equal(t, "country_product_year", defaulted.Slice)
	assert.Equal(t, "country", defaulted.Result.Level)
}

func TestResolveNoResultLevel(t *testing.T) {
	reg := testRegistry(t)
	endpoint := reg.Endpoints["product_exporters"]
	endpoint.DefaultSlice = ""
	reg.Endpoints["product_exporters"] = endpoint
	r := NewResolver(reg, testClassifications(t))

	_, err := r.Resolve(context.Background(), exporterRequest(""))
	assert.ErrorIs(t, err, ErrNoResultLevel)
}

func TestResolveNoMatchingSlice(t *testing.T) {
	r := testResolver(t)

	_, err := r.Resolve(context.Background(), exporterRequest("municipality"))
	require.ErrorIs(t, err, ErrNoMatchingSlice)
	assert.Contains(t, err.Error(), "municipality")
}

// Two slices satisfying the same resolved levels is a configuration
// mistake; the resolver must report it rather than pick the first match.
func TestResolveAmbiguousSlice(t *testing.T) {
	reg := testRegistry(t)
	dataset := reg.Datasets["location_product_year"]
	dataset.Slices["department_product_year_v2"] = registry.Slice{Levels: map[string][]string{
		"location": {"department"},
		"product":  {"section", "2digit", "4digit"},
		"year":     {"year"},
	}}
	endpoint := reg.Endpoints["product_exporters"]
	endpoint.Slices = append(endpoint.Slices, "department_product_year_v2")
	reg.Endpoints["product_exporters"] = endpoint
	require.NoError(t, reg.Validate())
	r := NewResolver(reg, testClassifications(t))

	_, err := r.Resolve(context.Background(), exporterRequest("department"))
	assert.ErrorIs(t, err, ErrAmbiguousSlice)
}

func TestResolveEntityNotFound(t *testing.T) {
	r := testResolver(t)

	req := exporterRequest("department")
	req.PathParams["product_id"] = "99999"
	_, err := r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestIsResolutionError(t *testing.T) {
	for _, err := range []error{
		ErrUnknownEndpoint, ErrUnknownArgument, ErrUnknownFacet,
		ErrUnknownEntity, ErrEntityNotFound, ErrNoResultLevel,
		ErrNoMatchingSlice, ErrAmbiguousSlice,
	} {
		assert.True(t, IsResolutionError(err))
	}
	assert.False(t, IsResolutionError(context.Canceled))
	assert.False(t, IsResolutionError(nil))
}

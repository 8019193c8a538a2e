package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/growthlab/atlas/classification"
	"github.com/growthlab/atlas/errors"
	"github.com/growthlab/atlas/registry"
)

// Resolver runs the pipeline against a registry and a set of
// classifications keyed by facet type (product, location, ...). Both are
// read-only after construction, so a single Resolver serves concurrent
// requests without coordination.
type Resolver struct {
	registry        *registry.Registry
	classifications map[string]classification.Classification
}

// NewResolver builds a resolver over the given registry and
// classifications. The registry is expected to be validated already.
func NewResolver(reg *registry.Registry, classifications map[string]classification.Classification) *Resolver {
	return &Resolver{
		registry:        reg,
		classifications: classifications,
	}
}

// Classification returns the classification registered for a facet type.
func (r *Resolver) Classification(facetType string) (classification.Classification, bool) {
	c, ok := r.classifications[facetType]
	return c, ok
}

// Resolve runs all four stages on a raw request.
func (r *Resolver) Resolve(ctx context.Context, req RawRequest) (Query, error) {
	q := RequestToQuery(req)

	q, err := r.Interpret(q)
	if err != nil {
		return Query{}, err
	}
	q, err = r.InferLevels(ctx, q)
	if err != nil {
		return Query{}, err
	}
	return r.Match(q)
}

// RequestToQuery is stage 1: a pure reshaping of the request into a query.
// Path parameter names are normalized by stripping an "_id" suffix
// (product_id becomes argument product); values are carried verbatim. The
// result level is taken from the "level" query parameter when present. No
// validation happens here.
func RequestToQuery(req RawRequest) Query {
	arguments := make(map[string]Argument, len(req.PathParams))
	for name, value := range req.PathParams {
		name = strings.TrimSuffix(name, "_id")
		arguments[name] = Argument{Name: name, Value: value}
	}

	return Query{
		Endpoint:  req.Endpoint,
		Arguments: arguments,
		Result:    Result{Level: req.QueryParams["level"]},
	}
}

// Interpret is stage 2: resolves the endpoint against the registry, binds
// the target dataset, fills in each argument's facet type and determines
// the result facet from the endpoint's declared return dimension.
func (r *Resolver) Interpret(q Query) (Query, error) {
	q = q.clone()

	endpoint, ok := r.registry.Endpoint(q.Endpoint)
	if !ok {
		return Query{}, errors.WithDetailf(
			errors.Wrapf(ErrUnknownEndpoint, "endpoint %q", q.Endpoint),
			"registered endpoints: %v", endpointNames(r.registry))
	}

	dataset, ok := r.registry.Dataset(endpoint.Dataset)
	if !ok {
		// Load-time validation guarantees the reference; reaching this is
		// a bug, not caller input.
		return Query{}, errors.AssertionFailedf(
			"endpoint %q references missing dataset %q", q.Endpoint, endpoint.Dataset)
	}
	q.Dataset = endpoint.Dataset

	for name, argument := range q.Arguments {
		facet, ok := dataset.Facets[name]
		if !ok {
			return Query{}, errors.WithDetailf(
				errors.Wrapf(ErrUnknownArgument,
					"argument %q on endpoint %q", name, q.Endpoint),
				"declared facets: %v", facetNames(dataset))
		}
		argument.Type = facet.Type
		q.Arguments[name] = argument
	}

	resultFacet, ok := dataset.Facets[endpoint.Result]
	if !ok {
		return Query{}, errors.WithDetailf(
			errors.Wrapf(ErrUnknownFacet,
				"result facet %q on endpoint %q", endpoint.Result, q.Endpoint),
			"declared facets: %v", facetNames(dataset))
	}
	q.Result.Name = endpoint.Result
	q.Result.Type = resultFacet.Type

	return q, nil
}

// InferLevels is stage 3: for every argument lacking an explicit level,
// looks up the argument's classification by facet type and asks it for the
// id's level. The result level is left alone; it is user-supplied or
// resolved by Match.
func (r *Resolver) InferLevels(ctx context.Context, q Query) (Query, error) {
	q = q.clone()

	for name, argument := range q.Arguments {
		if argument.Level != "" {
			continue
		}

		cls, ok := r.classifications[argument.Type]
		if !ok {
			return Query{}, errors.Wrapf(ErrUnknownEntity,
				"argument %q has type %q", name, argument.Type)
		}

		id, err := strconv.Atoi(argument.Value)
		if err != nil {
			return Query{}, errors.Wrapf(ErrEntityNotFound,
				"argument %q value %q is not a numeric id", name, argument.Value)
		}

		level, err := cls.GetLevelByID(ctx, id)
		if err != nil {
			return Query{}, errors.Wrapf(err,
				"look up level of %s %d", argument.Type, id)
		}
		if level == "" {
			return Query{}, errors.Wrapf(ErrEntityNotFound,
				"no %s with id %d", argument.Type, id)
		}

		argument.Level = level
		q.Arguments[name] = argument
	}

	return q, nil
}

// Match is stage 4: restricts the dataset's slices to those the endpoint
// allows, drops any slice that cannot serve some argument at its resolved
// level, settles the result level (explicit or via the default slice) and
// requires exactly one survivor, then binds the slice and physical field
// names.
func (r *Resolver) Match(q Query) (Query, error) {
	q = q.clone()

	endpoint, ok := r.registry.Endpoint(q.Endpoint)
	if !ok {
		return Query{}, errors.Wrapf(ErrUnknownEndpoint, "endpoint %q", q.Endpoint)
	}
	dataset, ok := r.registry.Dataset(endpoint.Dataset)
	if !ok {
		return Query{}, errors.AssertionFailedf(
			"endpoint %q references missing dataset %q", q.Endpoint, endpoint.Dataset)
	}

	// Candidate slices: allowed by the endpoint and able to serve every
	// argument at its resolved level. Iteration follows the endpoint's
	// declared slice order, so matching is deterministic.
	var candidates []string
	for _, name := range endpoint.Slices {
		slice, ok := dataset.Slices[name]
		if !ok {
			return Query{}, errors.AssertionFailedf(
				"endpoint %q references missing slice %q", q.Endpoint, name)
		}
		if sliceServesArguments(slice, q.Arguments) {
			candidates = append(candidates, name)
		}
	}

	if q.Result.Level == "" {
		// No ranking heuristics here: a notion of default levels (prefer
		// country over department) was considered and rejected in favor of
		// a single default slice per endpoint.
		if endpoint.DefaultSlice == "" {
			return Query{}, errors.WithDetailf(
				errors.Wrapf(ErrNoResultLevel, "endpoint %q", q.Endpoint),
				"pass ?level= or configure a default slice")
		}
		if !contains(candidates, endpoint.DefaultSlice) {
			return Query{}, errors.WithDetailf(
				errors.Wrapf(ErrNoMatchingSlice,
					"default slice %q cannot serve the resolved argument levels",
					endpoint.DefaultSlice),
				"arguments: %v", describeArguments(q.Arguments))
		}
		candidates = []string{endpoint.DefaultSlice}

		// Resolving via the default slice behaves exactly like naming that
		// slice's result level explicitly.
		levels := dataset.Slices[endpoint.DefaultSlice].Levels[q.Result.Name]
		if len(levels) == 1 {
			q.Result.Level = levels[0]
		}
	} else {
		var filtered []string
		for _, name := range candidates {
			if dataset.Slices[name].Supports(q.Result.Name, q.Result.Level) {
				filtered = append(filtered, name)
			}
		}
		candidates = filtered
	}

	switch len(candidates) {
	case 0:
		return Query{}, errors.WithDetailf(
			errors.Wrapf(ErrNoMatchingSlice,
				"endpoint %q result level %q", q.Endpoint, q.Result.Level),
			"arguments: %v; slices: %v", describeArguments(q.Arguments), endpoint.Slices)
	case 1:
		// fall through to binding
	default:
		return Query{}, errors.WithHint(
			errors.WithDetailf(
				errors.Wrapf(ErrAmbiguousSlice,
					"endpoint %q result level %q", q.Endpoint, q.Result.Level),
				"matching slices: %v", candidates),
			"this indicates overlapping slice configuration on the server, not a problem with the request")
	}

	q.Slice = candidates[0]
	q.Result.FieldName = dataset.Facets[q.Result.Name].FieldName
	for name, argument := range q.Arguments {
		argument.FieldName = dataset.Facets[name].FieldName
		q.Arguments[name] = argument
	}

	return q, nil
}

// sliceServesArguments reports whether the slice supports every argument's
// facet at its resolved level.
func sliceServesArguments(slice registry.Slice, arguments map[string]Argument) bool {
	for name, argument := range arguments {
		if !slice.Supports(name, argument.Level) {
			return false
		}
	}
	return true
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func describeArguments(arguments map[string]Argument) map[string]string {
	described := make(map[string]string, len(arguments))
	for name, argument := range arguments {
		described[name] = argument.Value + "@" + argument.Level
	}
	return described
}

func endpointNames(reg *registry.Registry) []string {
	names := make([]string, 0, len(reg.Endpoints))
	for name := range reg.Endpoints {
		names = append(names, name)
	}
	return names
}

func facetNames(dataset registry.Dataset) []string {
	names := make([]string, 0, len(dataset.Facets))
	for name := range dataset.Facets {
		names = append(names, name)
	}
	return names
}

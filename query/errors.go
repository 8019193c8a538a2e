package query

import "github.com/growthlab/atlas/errors"

// The resolution error taxonomy. All of these are caller-input validation
// errors surfaced as 4xx responses, never silently recovered. Use them with
// errors.Is(); every stage wraps its sentinel with the offending
// endpoint/argument/level so handlers can build an actionable message.
var (
	// ErrUnknownEndpoint indicates the request's endpoint is not registered
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrUnknownArgument indicates an argument name with no corresponding
	// facet in the dataset
	ErrUnknownArgument = errors.New("unknown argument")

	// ErrUnknownFacet indicates the endpoint's result facet is not declared
	// by the dataset
	ErrUnknownFacet = errors.New("unknown result facet")

	// ErrUnknownEntity indicates an argument type with no registered
	// classification
	ErrUnknownEntity = errors.New("no classification for entity type")

	// ErrEntityNotFound indicates an id that does not resolve to any level
	// in its classification
	ErrEntityNotFound = errors.New("entity not found in classification")

	// ErrNoResultLevel indicates the result level was omitted and the
	// endpoint has no default slice
	ErrNoResultLevel = errors.New("no result level specified and no default slice")

	// ErrNoMatchingSlice indicates no slice satisfies the resolved argument
	// levels
	ErrNoMatchingSlice = errors.New("no matching slice")

	// ErrAmbiguousSlice indicates more than one slice satisfies the
	// resolved argument levels. Well-formed configuration never produces
	// this for a valid query; it is detected and reported rather than
	// resolved by picking arbitrarily.
	ErrAmbiguousSlice = errors.New("more than one matching slice")
)

// IsResolutionError reports whether err belongs to the resolution taxonomy,
// i.e. should surface as a 4xx response rather than a server fault.
func IsResolutionError(err error) bool {
	return errors.IsAny(err,
		ErrUnknownEndpoint,
		ErrUnknownArgument,
		ErrUnknownFacet,
		ErrUnknownEntity,
		ErrEntityNotFound,
		ErrNoResultLevel,
		ErrNoMatchingSlice,
		ErrAmbiguousSlice,
	)
}

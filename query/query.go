// Package query implements the four-stage resolution pipeline that turns an
// ambiguous, partially specified request into an unambiguous lookup against
// exactly one data slice.
//
// The stages are linear, with no backward transitions and no retries:
//
//	RawRequest --RequestToQuery--> Query          (pure reshaping)
//	           --Interpret------->                (endpoint/facet binding)
//	           --InferLevels----->                (classification lookups)
//	           --Match----------->                (slice + field binding)
//
// Each stage returns a new copy of the query, so partially resolved
// intermediate states are safe to inspect and test independently. Every
// failure is one of the sentinel errors in this package, carrying enough
// detail to build an actionable message; no stage downgrades another
// stage's error. All failures are deterministic for a given input.
package query

// RawRequest is the flat view of an HTTP request handed over by the web
// layer: the matched endpoint name, path parameters (conventionally named
// <facet>_id) and query-string parameters (level, and possibly others).
type RawRequest struct {
	Endpoint    string            `json:"endpoint"`
	PathParams  map[string]string `json:"path_params"`
	QueryParams map[string]string `json:"query_params"`
}

// Argument is one query dimension pinned to a concrete value
// (e.g. product=23). Type and Level are filled in by Interpret and
// InferLevels; FieldName is bound by Match.
type Argument struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
	Level     string `json:"level,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

// Result describes the free dimension the caller is asking for, broken down
// by Level once resolved.
type Result struct {
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty"`
	Level     string `json:"level,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

// Query accumulates fields as it passes through the pipeline. Dataset and
// Slice are empty until Interpret and Match respectively.
type Query struct {
	Endpoint  string              `json:"endpoint"`
	Arguments map[string]Argument `json:"arguments"`
	Result    Result              `json:"result"`
	Dataset   string              `json:"dataset,omitempty"`
	Slice     string              `json:"slice,omitempty"`
}

// clone returns a copy of the query with its own argument map, so stages
// never mutate their input.
func (q Query) clone() Query {
	arguments := make(map[string]Argument, len(q.Arguments))
	for name, argument := range q.Arguments {
		arguments[name] = argument
	}
	q.Arguments = arguments
	return q
}

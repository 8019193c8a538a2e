// Package registry holds the static configuration for an atlas API: which
// endpoints exist, which dataset each one serves, the dataset's facets
// (dimensions) and slices (precomputed aggregate views), and which
// classification backs each facet type.
//
// The registry is loaded once at startup and treated as immutable for the
// process lifetime. The resolver consults it on every request but never
// mutates it, so no locking is needed.
package registry

import (
	"sort"
	"strings"

	"github.com/growthlab/atlas/errors"
)

// TimeType is the facet type treated as the time dimension when deriving an
// endpoint's result facet.
const TimeType = "year"

// Facet declares one dimension of a dataset: its type (which selects the
// classification used to resolve ids, e.g. "product") and the physical
// column name in the slice tables (e.g. "product_id").
type Facet struct {
	Type      string `toml:"type" json:"type"`
	FieldName string `toml:"field_name" json:"field_name"`
}

// Slice declares a precomputed aggregate view: for each facet name, the set
// of classification levels the view physically supports.
type Slice struct {
	Levels map[string][]string `toml:"levels" json:"levels"`
}

// Supports reports whether the slice carries the given facet at the given
// level.
func (s Slice) Supports(facet, level string) bool {
	for _, l := range s.Levels[facet] {
		if l == level {
			return true
		}
	}
	return false
}

// FullyResolved reports whether every facet of the slice maps to exactly one
// level, i.e. the slice needs no further disambiguation.
func (s Slice) FullyResolved() bool {
	for _, levels := range s.Levels {
		if len(levels) != 1 {
			return false
		}
	}
	return len(s.Levels) > 0
}

// Dataset is a named collection of facets and slices.
type Dataset struct {
	Facets map[string]Facet `toml:"facets" json:"facets"`
	Slices map[string]Slice `toml:"slices" json:"slices"`
}

// Endpoint maps an externally exposed URL to a dataset and constrains which
// of the dataset's slices it may serve.
type Endpoint struct {
	// URL is the route pattern, with path parameters in braces,
	// e.g. "/data/product/{product_id}/exporters".
	URL string `toml:"url" json:"url"`

	Dataset string `toml:"dataset" json:"dataset"`

	// Slices lists the dataset slices this endpoint may serve.
	Slices []string `toml:"slices" json:"slices"`

	// DefaultSlice, when set, is used when the caller omits ?level=.
	DefaultSlice string `toml:"default_slice" json:"default_slice"`

	// Result names the facet returned as the free dimension. When empty it
	// is derived at validation time as the dataset's first non-time facet
	// not bound by a URL parameter.
	Result string `toml:"result" json:"result"`
}

// PathParams returns the placeholder names in the endpoint URL, in order.
func (e Endpoint) PathParams() []string {
	var params []string
	rest := e.URL
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			return params
		}
		rest = rest[open+1:]
		close := strings.Index(rest, "}")
		if close < 0 {
			return params
		}
		params = append(params, rest[:close])
		rest = rest[close+1:]
	}
}

// AllowsSlice reports whether the endpoint may serve the named slice.
func (e Endpoint) AllowsSlice(name string) bool {
	for _, s := range e.Slices {
		if s == name {
			return true
		}
	}
	return false
}

// ClassificationDef declares where a classification's entry table lives and
// its level ordering, coarsest first.
type ClassificationDef struct {
	Table  string   `toml:"table" json:"table"`
	Levels []string `toml:"levels" json:"levels"`
}

// Registry is the full static configuration surface: classifications keyed
// by facet type, datasets and endpoints keyed by name.
type Registry struct {
	Classifications map[string]ClassificationDef `toml:"classifications" json:"classifications"`
	Datasets        map[string]Dataset           `toml:"datasets" json:"datasets"`
	Endpoints       map[string]Endpoint          `toml:"endpoints" json:"endpoints"`
}

// Dataset returns the named dataset.
func (r *Registry) Dataset(name string) (Dataset, bool) {
	d, ok := r.Datasets[name]
	return d, ok
}

// Endpoint returns the named endpoint.
func (r *Registry) Endpoint(name string) (Endpoint, bool) {
	e, ok := r.Endpoints[name]
	return e, ok
}

// Validate checks cross-references between endpoints, datasets and slices,
// and derives any endpoint result facet left unset. It is called by Load;
// call it directly when constructing a Registry in code.
func (r *Registry) Validate() error {
	for name, endpoint := range r.Endpoints {
		dataset, ok := r.Datasets[endpoint.Dataset]
		if !ok {
			return errors.Wrapf(errors.ErrInvalidConfig,
				"endpoint %q references unknown dataset %q", name, endpoint.Dataset)
		}
		if len(endpoint.Slices) == 0 {
			return errors.Wrapf(errors.ErrInvalidConfig,
				"endpoint %q declares no slices", name)
		}
		for _, sliceName := range endpoint.Slices {
			if _, ok := dataset.Slices[sliceName]; !ok {
				return errors.Wrapf(errors.ErrInvalidConfig,
					"endpoint %q references slice %q not declared by dataset %q",
					name, sliceName, endpoint.Dataset)
			}
		}
		if endpoint.DefaultSlice != "" && !endpoint.AllowsSlice(endpoint.DefaultSlice) {
			return errors.Wrapf(errors.ErrInvalidConfig,
				"endpoint %q default slice %q is not among its slices",
				name, endpoint.DefaultSlice)
		}
		if endpoint.Result == "" {
			result, err := deriveResult(dataset, endpoint)
			if err != nil {
				return errors.Wrapf(err, "endpoint %q", name)
			}
			endpoint.Result = result
			r.Endpoints[name] = endpoint
		}
	}

	for name, dataset := range r.Datasets {
		for sliceName, slice := range dataset.Slices {
			if len(slice.Levels) == 0 {
				return errors.Wrapf(errors.ErrInvalidConfig,
					"dataset %q slice %q declares no levels", name, sliceName)
			}
			for facet, levels := range slice.Levels {
				if _, ok := dataset.Facets[facet]; !ok {
					return errors.Wrapf(errors.ErrInvalidConfig,
						"dataset %q slice %q references undeclared facet %q",
						name, sliceName, facet)
				}
				if len(levels) == 0 {
					return errors.Wrapf(errors.ErrInvalidConfig,
						"dataset %q slice %q facet %q has no levels",
						name, sliceName, facet)
				}
			}
		}
	}

	return nil
}

// deriveResult picks the dataset's first non-time facet that is not already
// bound by a URL path parameter. Facet names are iterated in sorted order so
// derivation is deterministic.
func deriveResult(dataset Dataset, endpoint Endpoint) (string, error) {
	bound := make(map[string]bool)
	for _, param := range endpoint.PathParams() {
		bound[strings.TrimSuffix(param, "_id")] = true
	}

	for _, name := range sortedFacetNames(dataset) {
		facet := dataset.Facets[name]
		if facet.Type == TimeType || bound[name] {
			continue
		}
		return name, nil
	}
	return "", errors.Wrap(errors.ErrInvalidConfig,
		"no result facet declared and none derivable")
}

func sortedFacetNames(dataset Dataset) []string {
	names := make([]string, 0, len(dataset.Facets))
	for name := range dataset.Facets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

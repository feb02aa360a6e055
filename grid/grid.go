// Package grid expands hyperparameter search spaces into the Cartesian
// product of their axes. Each expansion result carries helpers for deriving
// a deterministic run-directory name.
package grid

import (
	"sort"

	"github.com/runforge/runkit/fileio"
)

// Axis is one named hyperparameter and its candidate values.
type Axis struct {
	Name   string
	Values []any
}

// Spec is an ordered list of axes. Axis order controls expansion order: the
// first axis varies slowest.
type Spec []Axis

// Setting is one chosen value for one axis.
type Setting struct {
	Name  string
	Value any
}

// Params is one point of the grid, in axis order.
type Params []Setting

// FromMap builds a Spec from a name→values map. Axes are sorted by name so
// the expansion order is deterministic.
func FromMap(m map[string][]any) Spec {
	spec := make(Spec, 0, len(m))
	for _, k := range sortedKeys(m) {
		spec = append(spec, Axis{Name: k, Values: m[k]})
	}
	return spec
}

// Expand produces the Cartesian product of the spec's axes in row-major
// order. An empty spec yields a single empty Params; an axis with no values
// yields an empty expansion.
func Expand(spec Spec) []Params {
	total := 1
	for _, axis := range spec {
		total *= len(axis.Values)
	}
	if total == 0 {
		return nil
	}

	out := make([]Params, 0, total)
	current := make(Params, len(spec))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(spec) {
			out = append(out, append(Params(nil), current...))
			return
		}
		for _, v := range spec[depth].Values {
			current[depth] = Setting{Name: spec[depth].Name, Value: v}
			walk(depth + 1)
		}
	}
	walk(0)

	return out
}

// Map returns the params as a plain map.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, s := range p {
		m[s.Name] = s.Value
	}
	return m
}

// Get returns the value for a named setting.
func (p Params) Get(name string) (any, bool) {
	for _, s := range p {
		if s.Name == name {
			return s.Value, true
		}
	}
	return nil, false
}

// Name renders the params as a sorted k<delim>v filename fragment.
func (p Params) Name(delimiter string) string {
	return fileio.ToFilename(p.Map(), delimiter, nil)
}

// Hash returns the short content digest of the params, for run directories
// whose full parameter name would be unwieldy.
func (p Params) Hash() (string, error) {
	return fileio.Hash(p.Map())
}

func sortedKeys(m map[string][]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

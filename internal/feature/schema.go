package feature

import (
	"errors"
	"fmt"
	"strings"
)

// Mode controls how Align treats schema features absent from the input.
type Mode int

const (
	// Lenient fills absent features with exactly zero and reports the
	// fill count to the caller.
	Lenient Mode = iota
	// Strict fails when any schema feature is absent from the input.
	Strict
)

// ErrMissingFeatures is returned by Align in Strict mode when the input
// map lacks one or more schema features.
var ErrMissingFeatures = errors.New("missing features")

// Schema is an ordered feature-name list that fixes the layout of every
// vector built against it.
type Schema struct {
	names []string
}

// NewSchema builds a Schema from an ordered name list. Names must be
// non-empty and unique.
func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, errors.New("schema: empty feature list")
	}
	seen := make(map[string]struct{}, len(names))
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("schema: empty feature name at position %d", i)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("schema: duplicate feature name %q", n)
		}
		seen[n] = struct{}{}
	}
	s := &Schema{names: make([]string, len(names))}
	copy(s.names, names)
	return s, nil
}

// Default returns a Schema over the canonical training order.
func Default() *Schema {
	s, err := NewSchema(trainingOrder)
	if err != nil {
		panic("feature: canonical order invalid: " + err.Error())
	}
	return s
}

// Names returns a copy of the schema's ordered feature names.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the vector width the schema produces.
func (s *Schema) Len() int {
	return len(s.names)
}

// Align orders values into a dense vector laid out by the schema. Names
// present in the input but absent from the schema are dropped. The result
// depends only on schema order, never on map iteration order.
//
// In Lenient mode absent features are filled with zero and the second
// return value reports how many were filled. In Strict mode any absent
// feature aborts with ErrMissingFeatures naming the gaps in schema order.
func (s *Schema) Align(values map[string]float64, mode Mode) ([]float64, int, error) {
	vec := make([]float64, len(s.names))
	var missing []string
	for i, name := range s.names {
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		vec[i] = v
	}
	if len(missing) > 0 && mode == Strict {
		return nil, 0, fmt.Errorf("%w: %s", ErrMissingFeatures, strings.Join(missing, ", "))
	}
	return vec, len(missing), nil
}

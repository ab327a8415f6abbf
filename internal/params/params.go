// Package params holds the connection parameters a host hands to a build plugin.
package params

import (
	"fmt"
	"sort"
	"strings"
)

// MissingError is returned when a required parameter is absent or blank
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Key)
}

// Parameters is an immutable set of configuration keys and their values.
// The zero value is an empty set.
type Parameters struct {
	values map[string]string
}

// New copies values into a new Parameters
func New(values map[string]string) Parameters {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Parameters{values: copied}
}

// Get returns the value for key and whether it was present
func (p Parameters) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Required returns the value for key, failing when it is absent or blank
func (p Parameters) Required(key string) (string, error) {
	v, ok := p.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", &MissingError{Key: key}
	}
	return v, nil
}

// With returns a copy of p where key is set to value
func (p Parameters) With(key, value string) Parameters {
	out := New(p.values)
	out.values[key] = value
	return out
}

// Merge returns a copy of p overlaid with the values of other
func (p Parameters) Merge(other Parameters) Parameters {
	out := New(p.values)
	for k, v := range other.values {
		out.values[k] = v
	}
	return out
}

// Map returns a copy of the underlying values
func (p Parameters) Map() map[string]string {
	return New(p.values).values
}

// Keys returns the parameter names in lexical order
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of parameters
func (p Parameters) Len() int {
	return len(p.values)
}

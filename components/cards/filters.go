package cards

import (
	"encoding/json"
	"sort"
	"strings"
)

// Filter type identifiers understood by the backend.
const (
	FilterTypeCategory  = "category"
	FilterTypeDateRange = "date_range"
)

// FilterDefinition describes a named, typed constraint a dashboard exposes.
// Schema, when present, is a JSON Schema the value must satisfy.
type FilterDefinition struct {
	ID      string         `json:"id" yaml:"id"`
	Label   string         `json:"label" yaml:"label"`
	Type    string         `json:"type" yaml:"type"`
	Column  string         `json:"column,omitempty" yaml:"column,omitempty"`
	Options []string       `json:"options,omitempty" yaml:"options,omitempty"`
	Schema  map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// DateRangeValue is the value shape for date range filters.
type DateRangeValue struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// FilterValue is the applied value for one filter: a string or []string for
// category filters, a DateRangeValue for date ranges.
type FilterValue any

// FilterState maps filter id to applied value. Absence of a key means "not
// applied". Values are treated as immutable; reducers return fresh maps.
type FilterState map[string]FilterValue

// UpdateFilterState returns a copy of prev with id set to value, or with id
// removed when value is nil. prev is never mutated.
func UpdateFilterState(prev FilterState, id string, value FilterValue) FilterState {
	next := make(FilterState, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	if value == nil {
		delete(next, id)
		return next
	}
	next[id] = value
	return next
}

// Clone returns an independent copy of the state.
func (s FilterState) Clone() FilterState {
	if s == nil {
		return nil
	}
	out := make(FilterState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Fingerprint returns a deterministic serialization of the state, suitable
// for change detection and cache keys. Two states with equal content produce
// equal fingerprints regardless of map iteration order. The empty state
// fingerprints to "".
func (s FilterState) Fingerprint() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		value, err := json.Marshal(s[k])
		if err != nil {
			value = []byte("!" + k)
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(value)
		b.WriteByte(';')
	}
	return b.String()
}

// Equal reports whether two states hold the same applied values.
func (s FilterState) Equal(other FilterState) bool {
	return s.Fingerprint() == other.Fingerprint()
}

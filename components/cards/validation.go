package cards

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FilterValidator validates applied filter values against their definitions.
type FilterValidator interface {
	Validate(def FilterDefinition, value FilterValue) error
}

// JSONSchemaValidator compiles filter schemas and validates applied values.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided value satisfies the filter's schema. Filters
// without a schema accept any value of their declared type.
func (v *JSONSchemaValidator) Validate(def FilterDefinition, value FilterValue) error {
	if len(def.Schema) == 0 {
		return validateShape(def, value)
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cards: marshal value for filter %s: %w", def.ID, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("cards: normalize value for filter %s: %w", def.ID, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("cards: value for filter %s failed validation: %w", def.ID, err)
	}
	return nil
}

func validateShape(def FilterDefinition, value FilterValue) error {
	switch def.Type {
	case FilterTypeCategory:
		switch value.(type) {
		case string, []string:
			return nil
		}
		return fmt.Errorf("cards: filter %s expects a string or string list", def.ID)
	case FilterTypeDateRange:
		if _, ok := value.(DateRangeValue); ok {
			return nil
		}
		return fmt.Errorf("cards: filter %s expects a date range", def.ID)
	default:
		return fmt.Errorf("cards: unknown filter type %q for %s", def.Type, def.ID)
	}
}

func (v *JSONSchemaValidator) schemaFor(def FilterDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.ID]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("cards: marshal schema %s: %w", def.ID, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.ID + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("cards: load schema %s: %w", def.ID, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("cards: compile schema %s: %w", def.ID, err)
	}
	v.mu.Lock()
	v.compiled[def.ID] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopFilterValidator struct{}

func (noopFilterValidator) Validate(FilterDefinition, FilterValue) error { return nil }

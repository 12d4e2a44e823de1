package cards

import (
	"strings"
	"testing"
)

func TestValidateShapeCategory(t *testing.T) {
	v := NewJSONSchemaValidator()
	def := FilterDefinition{ID: "region", Type: FilterTypeCategory}

	if err := v.Validate(def, "emea"); err != nil {
		t.Fatalf("string value rejected: %v", err)
	}
	if err := v.Validate(def, []string{"emea", "apac"}); err != nil {
		t.Fatalf("string list rejected: %v", err)
	}
	if err := v.Validate(def, 42); err == nil {
		t.Fatal("numeric value accepted for category filter")
	}
}

func TestValidateShapeDateRange(t *testing.T) {
	v := NewJSONSchemaValidator()
	def := FilterDefinition{ID: "period", Type: FilterTypeDateRange}

	if err := v.Validate(def, DateRangeValue{Start: "2026-01-01", End: "2026-01-31"}); err != nil {
		t.Fatalf("date range rejected: %v", err)
	}
	if err := v.Validate(def, "2026-01-01"); err == nil {
		t.Fatal("plain string accepted for date range filter")
	}
}

func TestValidateUnknownFilterType(t *testing.T) {
	v := NewJSONSchemaValidator()
	err := v.Validate(FilterDefinition{ID: "x", Type: "fuzzy"}, "v")
	if err == nil {
		t.Fatal("unknown filter type accepted")
	}
	if !strings.Contains(err.Error(), "fuzzy") {
		t.Fatalf("error does not name the type: %v", err)
	}
}

func TestValidateAgainstSchema(t *testing.T) {
	v := NewJSONSchemaValidator()
	def := FilterDefinition{
		ID:   "region",
		Type: FilterTypeCategory,
		Schema: map[string]any{
			"type": "string",
			"enum": []any{"emea", "apac", "amer"},
		},
	}

	if err := v.Validate(def, "emea"); err != nil {
		t.Fatalf("allowed value rejected: %v", err)
	}
	if err := v.Validate(def, "mars"); err == nil {
		t.Fatal("value outside enum accepted")
	}
}

func TestValidateCachesCompiledSchemas(t *testing.T) {
	v := NewJSONSchemaValidator()
	def := FilterDefinition{
		ID:     "region",
		Type:   FilterTypeCategory,
		Schema: map[string]any{"type": "string"},
	}

	for i := 0; i < 3; i++ {
		if err := v.Validate(def, "emea"); err != nil {
			t.Fatalf("validate %d: %v", i, err)
		}
	}
	if len(v.compiled) != 1 {
		t.Fatalf("compiled cache has %d entries, want 1", len(v.compiled))
	}
}

func TestValidateInvalidSchema(t *testing.T) {
	v := NewJSONSchemaValidator()
	def := FilterDefinition{
		ID:     "broken",
		Type:   FilterTypeCategory,
		Schema: map[string]any{"type": 12345},
	}
	if err := v.Validate(def, "anything"); err == nil {
		t.Fatal("invalid schema accepted")
	}
}

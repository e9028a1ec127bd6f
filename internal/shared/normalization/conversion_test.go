package normalization

import (
	"encoding/json"
	"testing"
)

func TestAsInt(t *testing.T) {
	cases := []struct {
		in       any
		expected int
	}{
		{float64(18), 18},
		{"18", 18},
		{" 4 ", 4},
		{"4.9", 4},
		{json.Number("12"), 12},
		{"abc", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := AsInt(tc.in); got != tc.expected {
			t.Fatalf("AsInt(%v) expected %d got %d", tc.in, tc.expected, got)
		}
	}
}

func TestAsStringRendersNumericIdentifiers(t *testing.T) {
	if got := AsString(float64(42)); got != "42" {
		t.Fatalf("expected 42, got %s", got)
	}
	if got := AsString(" rest-1 "); got != "rest-1" {
		t.Fatalf("expected trimmed id, got %s", got)
	}
	if got := AsString(4.5); got != "4.5" {
		t.Fatalf("expected 4.5, got %s", got)
	}
}

func TestAsBool(t *testing.T) {
	for _, truthy := range []any{true, "on", "TRUE", "1", float64(1)} {
		if !AsBool(truthy) {
			t.Fatalf("expected %v to be truthy", truthy)
		}
	}
	for _, falsy := range []any{false, "", "off", nil, float64(0)} {
		if AsBool(falsy) {
			t.Fatalf("expected %v to be falsy", falsy)
		}
	}
}

func TestItemsFromPayload(t *testing.T) {
	bare := []any{map[string]any{"id": "a"}}
	if got := ItemsFromPayload(bare); len(got) != 1 {
		t.Fatalf("expected bare array passthrough, got %v", got)
	}
	wrapped := map[string]any{"slots": []any{map[string]any{"id": "a"}, map[string]any{"id": "b"}}}
	if got := ItemsFromPayload(wrapped, "slots"); len(got) != 2 {
		t.Fatalf("expected slots envelope, got %v", got)
	}
	if got := ItemsFromPayload(map[string]any{"other": 1}); got != nil {
		t.Fatalf("expected nil for unknown envelope, got %v", got)
	}
}

func TestNormalizeEntity(t *testing.T) {
	cases := map[string]string{
		"":              "",
		" Restaurant ":  "restaurants",
		"slot":          "slots",
		"reservation":   "bookings",
		"custom-entity": "custom-entity",
	}
	for input, expected := range cases {
		if got := NormalizeEntity(input); got != expected {
			t.Fatalf("NormalizeEntity(%q) expected %q got %q", input, expected, got)
		}
	}
}

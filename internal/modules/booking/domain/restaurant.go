package domain

import (
	"net/url"
	"strconv"
	"strings"

	"mesaYaBooking/internal/shared/normalization"
)

// Restaurant is the directory entry returned by the backend. The client never mutates it.
type Restaurant struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Area       string  `json:"area"`
	Cuisine    string  `json:"cuisine,omitempty"`
	Rating     float64 `json:"rating"`
	CostForTwo float64 `json:"cost_for_two"`
	IsVeg      bool    `json:"is_veg"`
}

// Headline renders the card title shown in the directory ("{name} {area}, {city}").
func (r Restaurant) Headline() string {
	return r.Name + " " + r.Area + ", " + r.City
}

func (r Restaurant) RatingLabel() string {
	return "Rating: " + formatNumber(r.Rating) + "★"
}

func (r Restaurant) CostLabel() string {
	return "₹" + formatNumber(r.CostForTwo) + " for two"
}

// NormalizeRestaurant attempts to construct a Restaurant from an arbitrary map payload.
func NormalizeRestaurant(raw map[string]any) (Restaurant, bool) {
	id := normalization.AsString(raw["id"])
	if id == "" {
		return Restaurant{}, false
	}
	return Restaurant{
		ID:         id,
		Name:       normalization.AsString(raw["name"]),
		City:       normalization.AsString(raw["city"]),
		Area:       normalization.AsString(raw["area"]),
		Cuisine:    normalization.AsString(raw["cuisine"]),
		Rating:     normalization.AsFloat64(raw["rating"]),
		CostForTwo: normalization.AsFloat64(raw["cost_for_two"]),
		IsVeg:      normalization.AsBool(raw["is_veg"]),
	}, true
}

// BuildRestaurantList projects a list payload into restaurants, skipping entries without an id.
func BuildRestaurantList(payload any) []Restaurant {
	rawItems := normalization.ItemsFromPayload(payload, "restaurants")
	result := make([]Restaurant, 0, len(rawItems))
	for _, item := range rawItems {
		if rawMap, ok := item.(map[string]any); ok {
			if restaurant, ok := NormalizeRestaurant(rawMap); ok {
				result = append(result, restaurant)
			}
		}
	}
	return result
}

// FilterField enumerates the free-text directory filters.
type FilterField int

const (
	FilterName FilterField = iota
	FilterCity
	FilterArea
)

func (f FilterField) String() string {
	switch f {
	case FilterName:
		return "name"
	case FilterCity:
		return "city"
	case FilterArea:
		return "area"
	default:
		return "unknown"
	}
}

// ParseFilterField maps a form field name onto its FilterField.
func ParseFilterField(raw string) (FilterField, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "name":
		return FilterName, true
	case "city":
		return FilterCity, true
	case "area":
		return FilterArea, true
	default:
		return 0, false
	}
}

// SearchFilters holds the directory query as typed by the user.
type SearchFilters struct {
	Name string
	City string
	Area string
}

// With returns a copy of the filters with the given field replaced.
func (f SearchFilters) With(field FilterField, value string) SearchFilters {
	switch field {
	case FilterName:
		f.Name = value
	case FilterCity:
		f.City = value
	case FilterArea:
		f.Area = value
	}
	return f
}

func (f SearchFilters) Get(field FilterField) string {
	switch field {
	case FilterName:
		return f.Name
	case FilterCity:
		return f.City
	case FilterArea:
		return f.Area
	}
	return ""
}

// Any reports whether at least one filter carries non-blank text.
func (f SearchFilters) Any() bool {
	return strings.TrimSpace(f.Name) != "" || strings.TrimSpace(f.City) != "" || strings.TrimSpace(f.Area) != ""
}

// Values encodes the filters as the backend query string. All three keys are always sent.
func (f SearchFilters) Values() url.Values {
	values := url.Values{}
	values.Set("name", strings.TrimSpace(f.Name))
	values.Set("city", strings.TrimSpace(f.City))
	values.Set("area", strings.TrimSpace(f.Area))
	return values
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

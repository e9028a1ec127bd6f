package normalization

import "strings"

// entityAliases maps the singular and loosely spelled entity names used in event topics
// to their canonical plural form.
var entityAliases = map[string]string{
	"":        "",
	"-":       "",
	"default": "",

	"restaurant":  "restaurants",
	"restaurants": "restaurants",

	"slot":  "slots",
	"slots": "slots",

	"booking":      "bookings",
	"bookings":     "bookings",
	"reservation":  "bookings",
	"reservations": "bookings",
}

// NormalizeEntity returns the canonical entity name, or the trimmed lower-case input when
// no alias is registered.
func NormalizeEntity(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := entityAliases[trimmed]; ok {
		return canonical
	}
	return trimmed
}

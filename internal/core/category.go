package core

import "strings"

// Category is the fixed expense taxonomy. Records never carry freeform
// categories; anything unrecognized collapses to CategoryOther.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainment"
	CategoryUtilities      Category = "utilities"
	CategoryShopping       Category = "shopping"
	CategoryGroceries      Category = "groceries"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryTravel         Category = "travel"
	CategorySubscription   Category = "subscription"
	CategoryFamily         Category = "family"
	CategoryOther          Category = "other"
)

// Categories lists every valid category in a stable order.
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryShopping,
	CategoryGroceries,
	CategoryHealthcare,
	CategoryEducation,
	CategoryTravel,
	CategorySubscription,
	CategoryFamily,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory normalizes s into a Category. Unknown values map to
// CategoryOther with ok=false so callers can tell a default from a match.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c, true
	}
	return CategoryOther, false
}

package enums

import "fmt"

// Category is the age bracket a candidate competes in. It is derived from the
// date of birth at registration time and never changes afterwards.
type Category string

const (
	CategoryPrimaire      Category = "primaire"
	CategoryCollegeLycee  Category = "college_lycee"
	CategoryUniversitaire Category = "universitaire"
)

var validCategories = []Category{
	CategoryPrimaire,
	CategoryCollegeLycee,
	CategoryUniversitaire,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

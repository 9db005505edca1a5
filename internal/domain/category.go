package domain

import (
	"fmt"
	"strings"
)

// Category is one of the eight fixed ticket classes.
type Category uint8

const (
	CategoryACC  Category = iota // access / authentication
	CategorySW                   // software
	CategoryHW                   // hardware
	CategoryNET                  // network
	CategoryMAIL                 // email / collaboration
	CategoryAPP                  // enterprise application
	CategorySRV                  // service request
	CategoryPOL                  // security policy

	NumCategories = int(CategoryPOL) + 1
)

// CategoryDefault is assigned when no signal wins.
const CategoryDefault = CategorySRV

var categoryCodes = [NumCategories]string{"ACC", "SW", "HW", "NET", "MAIL", "APP", "SRV", "POL"}

// Categories lists every category in declaration order.
var Categories = [NumCategories]Category{
	CategoryACC, CategorySW, CategoryHW, CategoryNET,
	CategoryMAIL, CategoryAPP, CategorySRV, CategoryPOL,
}

// Valid reports whether c is one of the eight codes.
func (c Category) Valid() bool {
	return int(c) < NumCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryCodes[c]
}

// ParseCategory resolves a category code, case-insensitively.
func ParseCategory(code string) (Category, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i, known := range categoryCodes {
		if known == code {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", code)
}

// MarshalText renders the code, so categories serialize as strings and
// work as JSON map keys.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(data []byte) error {
	parsed, err := ParseCategory(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

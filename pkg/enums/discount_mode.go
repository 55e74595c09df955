package enums

import "fmt"

// DiscountMode selects how a discount value is interpreted, both per line
// item and at the document level.
type DiscountMode string

const (
	DiscountModePercentage  DiscountMode = "percentage"
	DiscountModeFixedAmount DiscountMode = "fixed_amount"
)

var validDiscountModes = []DiscountMode{
	DiscountModePercentage,
	DiscountModeFixedAmount,
}

// String implements fmt.Stringer.
func (d DiscountMode) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountMode.
func (d DiscountMode) IsValid() bool {
	for _, candidate := range validDiscountModes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountMode converts raw input into a DiscountMode.
func ParseDiscountMode(value string) (DiscountMode, error) {
	for _, candidate := range validDiscountModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount mode %q", value)
}

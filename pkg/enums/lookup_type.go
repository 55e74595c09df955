package enums

import "fmt"

// LookupType names the entity families the search proxy can query. Product
// searches are transient; the remaining families are slow-changing reference
// lists and are cached far longer.
type LookupType string

const (
	LookupTypeProduct         LookupType = "product"
	LookupTypeBank            LookupType = "bank"
	LookupTypeBrand           LookupType = "brand"
	LookupTypeSector          LookupType = "sector"
	LookupTypeVoltage         LookupType = "voltage"
	LookupTypeBusinessPartner LookupType = "business_partner"
)

var validLookupTypes = []LookupType{
	LookupTypeProduct,
	LookupTypeBank,
	LookupTypeBrand,
	LookupTypeSector,
	LookupTypeVoltage,
	LookupTypeBusinessPartner,
}

// String implements fmt.Stringer.
func (l LookupType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LookupType.
func (l LookupType) IsValid() bool {
	for _, candidate := range validLookupTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsReference reports whether results for this type change rarely enough to
// be cached as a reference list.
func (l LookupType) IsReference() bool {
	switch l {
	case LookupTypeBank, LookupTypeBrand, LookupTypeSector, LookupTypeVoltage:
		return true
	}
	return false
}

// ParseLookupType converts raw input into a LookupType.
func ParseLookupType(value string) (LookupType, error) {
	for _, candidate := range validLookupTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lookup type %q", value)
}

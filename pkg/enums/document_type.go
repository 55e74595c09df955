package enums

import "fmt"

// DocumentType identifies which kind of ERP document a draft edits. The
// editing semantics are shared; per-type behavior is configured by a
// descriptor in the draft package.
type DocumentType string

const (
	DocumentTypeOrder        DocumentType = "order"
	DocumentTypeBudget       DocumentType = "budget"
	DocumentTypeServiceOrder DocumentType = "service_order"
)

var validDocumentTypes = []DocumentType{
	DocumentTypeOrder,
	DocumentTypeBudget,
	DocumentTypeServiceOrder,
}

// String implements fmt.Stringer.
func (d DocumentType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentType.
func (d DocumentType) IsValid() bool {
	for _, candidate := range validDocumentTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentType converts raw input into a DocumentType.
func ParseDocumentType(value string) (DocumentType, error) {
	for _, candidate := range validDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document type %q", value)
}

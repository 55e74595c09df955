package draft

import (
	"github.com/dmoura/orderdraft-backend/pkg/enums"
)

// Descriptor parameterizes the shared item-editing flow per document type.
// Orders and budgets carry both per-line and order-level discounts; service
// orders only discount individual parts.
type Descriptor struct {
	DocumentType         enums.DocumentType
	ItemDiscountAllowed  bool
	OrderDiscountAllowed bool
}

var descriptors = map[enums.DocumentType]Descriptor{
	enums.DocumentTypeOrder: {
		DocumentType:         enums.DocumentTypeOrder,
		ItemDiscountAllowed:  true,
		OrderDiscountAllowed: true,
	},
	enums.DocumentTypeBudget: {
		DocumentType:         enums.DocumentTypeBudget,
		ItemDiscountAllowed:  true,
		OrderDiscountAllowed: true,
	},
	enums.DocumentTypeServiceOrder: {
		DocumentType:         enums.DocumentTypeServiceOrder,
		ItemDiscountAllowed:  true,
		OrderDiscountAllowed: false,
	},
}

// DescriptorFor returns the editing rules for a document type. Unknown types
// fall back to the most restrictive shape.
func DescriptorFor(documentType enums.DocumentType) Descriptor {
	if d, ok := descriptors[documentType]; ok {
		return d
	}
	return Descriptor{DocumentType: documentType}
}

package erp

import (
	"github.com/shopspring/decimal"

	"github.com/dmoura/orderdraft-backend/pkg/enums"
)

// SearchResult is one candidate record returned by the ERP search endpoint.
// The upstream payload carries more fields per entity family; the service
// only relies on an identifier and a display name.
type SearchResult struct {
	ID    int64           `json:"id"`
	Code  string          `json:"code,omitempty"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Product is the catalog record used to prefill a draft line.
type Product struct {
	ID           int64           `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Barcode      string          `json:"barcode,omitempty"`
	AtSightPrice decimal.Decimal `json:"at_sight_price"`
	AtTermPrice  decimal.Decimal `json:"at_term_price"`
}

// DocumentItem is a line item as the ERP persisted it, used to hydrate a
// draft when the user opens an existing document.
type DocumentItem struct {
	ServerID        int64              `json:"item_id"`
	ProductID       int64              `json:"product_id"`
	ProductName     string             `json:"product_name"`
	Quantity        decimal.Decimal    `json:"quantity"`
	UnitPrice       decimal.Decimal    `json:"unit_price"`
	DiscountEnabled bool               `json:"discount_enabled"`
	DiscountMode    enums.DiscountMode `json:"discount_mode,omitempty"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
}

// BatchItemCreate is the creation shape for a line the server has never
// seen. ClientRef carries the draft line id so the response can be matched
// back without guessing; ERPs that ignore it fall back to product matching.
type BatchItemCreate struct {
	ClientRef       string             `json:"client_ref,omitempty"`
	ProductID       int64              `json:"product_id"`
	Quantity        decimal.Decimal    `json:"quantity"`
	UnitPrice       decimal.Decimal    `json:"unit_price"`
	DiscountEnabled bool               `json:"discount_enabled"`
	DiscountMode    enums.DiscountMode `json:"discount_mode"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	LineTotal       decimal.Decimal    `json:"line_total"`
}

// BatchItemEdit updates a line the server already assigned an id to.
type BatchItemEdit struct {
	ServerID        int64              `json:"item_id"`
	ProductID       int64              `json:"product_id"`
	Quantity        decimal.Decimal    `json:"quantity"`
	UnitPrice       decimal.Decimal    `json:"unit_price"`
	DiscountEnabled bool               `json:"discount_enabled"`
	DiscountMode    enums.DiscountMode `json:"discount_mode"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	LineTotal       decimal.Decimal    `json:"line_total"`
}

// BatchItemDelete is the deletion key shape.
type BatchItemDelete struct {
	ServerID int64 `json:"item_id"`
}

// BatchRequest is the single payload of one save round-trip. The client
// treats it as all-or-nothing; a partial upstream failure surfaces as a
// generic error, never decomposed per sub-list.
type BatchRequest struct {
	Add    []BatchItemCreate `json:"add"`
	Edit   []BatchItemEdit   `json:"edit"`
	Remove []BatchItemDelete `json:"remove"`
}

// Empty reports whether the request carries no work at all.
func (r BatchRequest) Empty() bool {
	return len(r.Add) == 0 && len(r.Edit) == 0 && len(r.Remove) == 0
}

// CreatedItem is one newly persisted line echoed back with its assigned id.
type CreatedItem struct {
	ServerID  int64  `json:"item_id"`
	ProductID int64  `json:"product_id"`
	ClientRef string `json:"client_ref,omitempty"`
}

// BatchResponse summarizes a successful batch submission. Some deployments
// return the created list bare, others wrap it with count and total; the
// client tolerates both.
type BatchResponse struct {
	Created []CreatedItem   `json:"created"`
	Count   int             `json:"count,omitempty"`
	Total   decimal.Decimal `json:"total"`
}

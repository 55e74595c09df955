package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmoura/orderdraft-backend/pkg/enums"
)

// DraftLineItem persists one product line of a draft. The row ID doubles as
// the client-side correlation id round-tripped through the batch submit, so
// newly assigned server ids can be merged back without guessing. Removed
// rows are tombstones: lines the server already knows about that the user
// deleted locally, kept until the next save carries the removal upstream.
type DraftLineItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DraftID     uuid.UUID `gorm:"column:draft_id;type:uuid;not null;index"`
	ProductID   int64     `gorm:"column:product_id;not null"`
	ProductName string    `gorm:"column:product_name;not null"`
	Barcode     *string   `gorm:"column:barcode"`

	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`

	DiscountEnabled bool               `gorm:"column:discount_enabled;not null;default:false"`
	DiscountMode    enums.DiscountMode `gorm:"column:discount_mode;type:text;not null;default:'percentage'"`
	DiscountPercent decimal.Decimal    `gorm:"column:discount_percent;type:numeric(9,4);not null;default:0"`
	DiscountAmount  decimal.Decimal    `gorm:"column:discount_amount;type:numeric(14,4);not null;default:0"`

	ServerID *int64 `gorm:"column:server_id"`
	Removed  bool   `gorm:"column:removed;not null;default:false"`
	Position int    `gorm:"column:position;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table to avoid pluralization surprises.
func (DraftLineItem) TableName() string {
	return "draft_line_items"
}

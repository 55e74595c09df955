package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/dmoura/orderdraft-backend/pkg/enums"
)

// DraftRecord persists one editable document draft. Totals are never stored;
// they are recomputed from the line items on every read.
type DraftRecord struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID      string             `gorm:"column:company_id;not null"`
	BranchID       string             `gorm:"column:branch_id;not null"`
	UserID         string             `gorm:"column:user_id;not null"`
	DocumentType   enums.DocumentType `gorm:"column:document_type;type:text;not null"`
	DocumentNumber *string            `gorm:"column:document_number"`
	CustomerID     *string            `gorm:"column:customer_id"`
	Status         enums.DraftStatus  `gorm:"column:status;type:text;not null;default:'editing'"`

	OrderDiscountEnabled bool               `gorm:"column:order_discount_enabled;not null;default:false"`
	OrderDiscountMode    enums.DiscountMode `gorm:"column:order_discount_mode;type:text;not null;default:'percentage'"`
	OrderDiscountPercent decimal.Decimal    `gorm:"column:order_discount_percent;type:numeric(9,4);not null;default:0"`
	OrderDiscountAmount  decimal.Decimal    `gorm:"column:order_discount_amount;type:numeric(14,4);not null;default:0"`

	Tags pq.StringArray `gorm:"column:tags;type:text[]"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table to avoid pluralization surprises.
func (DraftRecord) TableName() string {
	return "draft_records"
}

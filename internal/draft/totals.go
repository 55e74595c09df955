package draft

import (
	"github.com/shopspring/decimal"

	"github.com/dmoura/orderdraft-backend/pkg/db/models"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Totals is the derived money summary of a draft. Never persisted; always
// recomputed from the live lines on read.
type Totals struct {
	Subtotal                 decimal.Decimal `json:"subtotal"`
	BaseWithItemDiscounts    decimal.Decimal `json:"base_with_item_discounts"`
	BaseWithoutItemDiscounts decimal.Decimal `json:"base_without_item_discounts"`
	OrderDiscountValue       decimal.Decimal `json:"order_discount_value"`
	GrandTotal               decimal.Decimal `json:"grand_total"`
}

// LineGross is quantity times unit price, before any discount.
func LineGross(line models.DraftLineItem) decimal.Decimal {
	return line.Quantity.Mul(line.UnitPrice)
}

// LineDiscount resolves the effective per-line discount. Percentages are
// clamped to 0..100 and fixed amounts to the line gross, so a discount can
// never invert a line to a negative total.
func LineDiscount(line models.DraftLineItem) decimal.Decimal {
	if !line.DiscountEnabled {
		return decimal.Zero
	}
	gross := LineGross(line)
	switch line.DiscountMode {
	case enums.DiscountModeFixedAmount:
		return clamp(line.DiscountAmount, decimal.Zero, gross)
	default:
		pct := clamp(line.DiscountPercent, decimal.Zero, hundred)
		return gross.Mul(pct).Div(hundred)
	}
}

// LineTotal is the line gross minus its effective discount, never negative.
func LineTotal(line models.DraftLineItem) decimal.Decimal {
	return LineGross(line).Sub(LineDiscount(line))
}

// ComputeTotals derives the money summary for a draft. The order-level
// discount applies only to lines without their own discount; individually
// discounted lines keep their already-discounted totals and are excluded
// from the order discount base, so nothing is discounted twice.
func ComputeTotals(record models.DraftRecord, lines []models.DraftLineItem) Totals {
	withOwn := decimal.Zero
	withoutOwn := decimal.Zero
	subtotal := decimal.Zero

	for _, line := range lines {
		if line.Removed {
			continue
		}
		gross := LineGross(line)
		subtotal = subtotal.Add(gross)
		if line.DiscountEnabled {
			withOwn = withOwn.Add(LineTotal(line))
		} else {
			withoutOwn = withoutOwn.Add(gross)
		}
	}

	orderDiscount := decimal.Zero
	if record.OrderDiscountEnabled {
		switch record.OrderDiscountMode {
		case enums.DiscountModeFixedAmount:
			orderDiscount = clamp(record.OrderDiscountAmount, decimal.Zero, withoutOwn)
		default:
			pct := clamp(record.OrderDiscountPercent, decimal.Zero, hundred)
			orderDiscount = withoutOwn.Mul(pct).Div(hundred)
		}
	}

	return Totals{
		Subtotal:                 subtotal,
		BaseWithItemDiscounts:    withOwn,
		BaseWithoutItemDiscounts: withoutOwn,
		OrderDiscountValue:       orderDiscount,
		GrandTotal:               withOwn.Add(withoutOwn.Sub(orderDiscount)),
	}
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

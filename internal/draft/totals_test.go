package draft

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dmoura/orderdraft-backend/pkg/db/models"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
)

func plainLine(qty, price int64) models.DraftLineItem {
	return models.DraftLineItem{
		ProductID: 1,
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(price),
	}
}

func assertDecimal(t *testing.T, expected string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s", expected, got)
}

func TestTotalsFixedOrderDiscount(t *testing.T) {
	t.Parallel()

	// 3 x 10.00 with a fixed 5.00 order discount
	record := models.DraftRecord{
		OrderDiscountEnabled: true,
		OrderDiscountMode:    enums.DiscountModeFixedAmount,
		OrderDiscountAmount:  decimal.NewFromInt(5),
	}
	totals := ComputeTotals(record, []models.DraftLineItem{plainLine(3, 10)})

	assertDecimal(t, "30", totals.Subtotal)
	assertDecimal(t, "5", totals.OrderDiscountValue)
	assertDecimal(t, "25", totals.GrandTotal)
}

func TestTotalsOrderDiscountExcludesDiscountedLines(t *testing.T) {
	t.Parallel()

	// line A: 2 x 50 with its own 10% discount => 90
	// line B: 1 x 20, no own discount
	// order discount 50% applies only to B's 20 => grand total 90 + 10
	lineA := models.DraftLineItem{
		ProductID:       1,
		Quantity:        decimal.NewFromInt(2),
		UnitPrice:       decimal.NewFromInt(50),
		DiscountEnabled: true,
		DiscountMode:    enums.DiscountModePercentage,
		DiscountPercent: decimal.NewFromInt(10),
	}
	lineB := models.DraftLineItem{
		ProductID: 2,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(20),
	}
	record := models.DraftRecord{
		OrderDiscountEnabled: true,
		OrderDiscountMode:    enums.DiscountModePercentage,
		OrderDiscountPercent: decimal.NewFromInt(50),
	}

	totals := ComputeTotals(record, []models.DraftLineItem{lineA, lineB})

	assertDecimal(t, "120", totals.Subtotal)
	assertDecimal(t, "90", totals.BaseWithItemDiscounts)
	assertDecimal(t, "20", totals.BaseWithoutItemDiscounts)
	assertDecimal(t, "10", totals.OrderDiscountValue)
	assertDecimal(t, "100", totals.GrandTotal)
}

func TestTotalsFixedOrderDiscountClampedToBase(t *testing.T) {
	t.Parallel()

	record := models.DraftRecord{
		OrderDiscountEnabled: true,
		OrderDiscountMode:    enums.DiscountModeFixedAmount,
		OrderDiscountAmount:  decimal.NewFromInt(1000),
	}
	totals := ComputeTotals(record, []models.DraftLineItem{plainLine(3, 10)})

	assertDecimal(t, "30", totals.OrderDiscountValue)
	assertDecimal(t, "0", totals.GrandTotal)
}

func TestTotalsPercentageClamped(t *testing.T) {
	t.Parallel()

	record := models.DraftRecord{
		OrderDiscountEnabled: true,
		OrderDiscountMode:    enums.DiscountModePercentage,
		OrderDiscountPercent: decimal.NewFromInt(250),
	}
	totals := ComputeTotals(record, []models.DraftLineItem{plainLine(1, 40)})

	assertDecimal(t, "40", totals.OrderDiscountValue)
	assertDecimal(t, "0", totals.GrandTotal)
}

func TestTotalsDisabledOrderDiscount(t *testing.T) {
	t.Parallel()

	record := models.DraftRecord{
		OrderDiscountMode:   enums.DiscountModeFixedAmount,
		OrderDiscountAmount: decimal.NewFromInt(5),
	}
	totals := ComputeTotals(record, []models.DraftLineItem{plainLine(3, 10)})

	assertDecimal(t, "0", totals.OrderDiscountValue)
	assertDecimal(t, "30", totals.GrandTotal)
}

func TestTotalsSkipTombstones(t *testing.T) {
	t.Parallel()

	removed := plainLine(10, 100)
	removed.Removed = true
	totals := ComputeTotals(models.DraftRecord{}, []models.DraftLineItem{plainLine(1, 10), removed})

	assertDecimal(t, "10", totals.Subtotal)
	assertDecimal(t, "10", totals.GrandTotal)
}

func TestLineDiscountNeverInvertsLine(t *testing.T) {
	t.Parallel()

	line := models.DraftLineItem{
		Quantity:        decimal.NewFromInt(2),
		UnitPrice:       decimal.NewFromInt(10),
		DiscountEnabled: true,
		DiscountMode:    enums.DiscountModeFixedAmount,
		DiscountAmount:  decimal.NewFromInt(500),
	}
	assertDecimal(t, "20", LineDiscount(line))
	assertDecimal(t, "0", LineTotal(line))

	line.DiscountMode = enums.DiscountModePercentage
	line.DiscountPercent = decimal.NewFromInt(150)
	assertDecimal(t, "0", LineTotal(line))

	line.DiscountPercent = decimal.NewFromInt(-10)
	assertDecimal(t, "20", LineTotal(line))
}

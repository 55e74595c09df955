package draft

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmoura/orderdraft-backend/pkg/db/models"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/numfmt"
)

// Draft is one editable document loaded into memory: the record plus every
// line, tombstones included. All mutations go through the methods below;
// nothing here touches the network or the database.
type Draft struct {
	Record models.DraftRecord
	Lines  []models.DraftLineItem
}

// LineInput is the caller-supplied shape for adding or editing a line.
type LineInput struct {
	ProductID       int64
	ProductName     string
	Barcode         *string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountEnabled bool
	DiscountMode    enums.DiscountMode
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
}

// EditRef names the line being edited. ServerID wins when present; otherwise
// the unsaved line with the matching ProductID is replaced.
type EditRef struct {
	ServerID  *int64
	ProductID int64
}

// Live returns the lines still on the document, tombstones excluded.
func (d *Draft) Live() []models.DraftLineItem {
	if d == nil {
		return nil
	}
	out := make([]models.DraftLineItem, 0, len(d.Lines))
	for _, line := range d.Lines {
		if !line.Removed {
			out = append(out, line)
		}
	}
	return out
}

// Tombstones returns the removed lines still awaiting upstream deletion.
func (d *Draft) Tombstones() []models.DraftLineItem {
	if d == nil {
		return nil
	}
	out := make([]models.DraftLineItem, 0)
	for _, line := range d.Lines {
		if line.Removed {
			out = append(out, line)
		}
	}
	return out
}

// FindLine locates a live line by its row id.
func (d *Draft) FindLine(lineID uuid.UUID) *models.DraftLineItem {
	if d == nil {
		return nil
	}
	for i := range d.Lines {
		if d.Lines[i].ID == lineID && !d.Lines[i].Removed {
			return &d.Lines[i]
		}
	}
	return nil
}

func validateLineInput(input LineInput, desc Descriptor) error {
	if input.ProductID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.ProductName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if !input.Quantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if !input.UnitPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price must be greater than zero")
	}
	if input.DiscountEnabled {
		if !desc.ItemDiscountAllowed {
			return pkgerrors.New(pkgerrors.CodeValidation, "line discounts are not allowed for this document type")
		}
		if !input.DiscountMode.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount mode")
		}
		if input.DiscountPercent.IsNegative() || input.DiscountAmount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount values must be non-negative")
		}
	}
	return nil
}

// AddOrEdit applies one line mutation. When edit carries a server id, the
// matching persisted line is replaced in place. When edit has only a product
// id, the unsaved line for that product is replaced. With no edit ref this is
// a pure add, rejected with a duplicate condition if an unsaved line for the
// same product already exists; the draft is untouched on any error.
func (d *Draft) AddOrEdit(input LineInput, edit *EditRef) (*models.DraftLineItem, error) {
	desc := DescriptorFor(d.Record.DocumentType)
	if err := validateLineInput(input, desc); err != nil {
		return nil, err
	}

	if edit != nil && edit.ServerID != nil {
		for i := range d.Lines {
			line := &d.Lines[i]
			if line.Removed || line.ServerID == nil || *line.ServerID != *edit.ServerID {
				continue
			}
			applyInput(line, input)
			return line, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not found for edit")
	}

	if edit != nil {
		for i := range d.Lines {
			line := &d.Lines[i]
			if line.Removed || line.ServerID != nil || line.ProductID != edit.ProductID {
				continue
			}
			applyInput(line, input)
			return line, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not found for edit")
	}

	for i := range d.Lines {
		line := &d.Lines[i]
		if !line.Removed && line.ServerID == nil && line.ProductID == input.ProductID {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateItem, "product already on the document").
				WithDetails(map[string]any{"product_id": input.ProductID})
		}
	}

	line := models.DraftLineItem{
		ID:       uuid.New(),
		DraftID:  d.Record.ID,
		Position: d.nextPosition(),
	}
	applyInput(&line, input)
	d.Lines = append(d.Lines, line)
	return &d.Lines[len(d.Lines)-1], nil
}

// Remove drops a line from the document. Lines the server already knows
// about become tombstones so the next save carries the deletion upstream;
// unsaved lines are discarded outright.
func (d *Draft) Remove(lineID uuid.UUID) error {
	for i := range d.Lines {
		line := &d.Lines[i]
		if line.ID != lineID || line.Removed {
			continue
		}
		if line.ServerID != nil {
			line.Removed = true
			return nil
		}
		d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
}

// SetQuantity parses a user-typed quantity and applies it to a live line.
// Empty input is tolerated as zero while the user is still typing; the line
// simply contributes nothing to the totals until a real value lands.
func (d *Draft) SetQuantity(lineID uuid.UUID, raw string) error {
	line := d.FindLine(lineID)
	if line == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}
	qty := numfmt.ParseDecimal(raw)
	if qty.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	line.Quantity = qty
	return nil
}

// SetOrderDiscount replaces the document-level discount settings.
func (d *Draft) SetOrderDiscount(enabled bool, mode enums.DiscountMode, percent, amount decimal.Decimal) error {
	desc := DescriptorFor(d.Record.DocumentType)
	if enabled {
		if !desc.OrderDiscountAllowed {
			return pkgerrors.New(pkgerrors.CodeValidation, "order-level discount is not allowed for this document type")
		}
		if !mode.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount mode")
		}
		if percent.IsNegative() || amount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount values must be non-negative")
		}
	}
	d.Record.OrderDiscountEnabled = enabled
	if mode.IsValid() {
		d.Record.OrderDiscountMode = mode
	}
	d.Record.OrderDiscountPercent = percent
	d.Record.OrderDiscountAmount = amount
	return nil
}

func (d *Draft) nextPosition() int {
	max := -1
	for _, line := range d.Lines {
		if line.Position > max {
			max = line.Position
		}
	}
	return max + 1
}

func applyInput(line *models.DraftLineItem, input LineInput) {
	line.ProductID = input.ProductID
	line.ProductName = input.ProductName
	line.Barcode = input.Barcode
	line.Quantity = input.Quantity
	line.UnitPrice = input.UnitPrice
	line.DiscountEnabled = input.DiscountEnabled
	if input.DiscountMode.IsValid() {
		line.DiscountMode = input.DiscountMode
	} else {
		line.DiscountMode = enums.DiscountModePercentage
	}
	line.DiscountPercent = input.DiscountPercent
	line.DiscountAmount = input.DiscountAmount
}

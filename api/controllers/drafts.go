package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmoura/orderdraft-backend/api/middleware"
	"github.com/dmoura/orderdraft-backend/api/responses"
	"github.com/dmoura/orderdraft-backend/api/validators"
	"github.com/dmoura/orderdraft-backend/internal/draft"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/numfmt"
	"github.com/dmoura/orderdraft-backend/pkg/pagination"
)

type createDraftRequest struct {
	DocumentType   string   `json:"document_type" validate:"required,oneof=order budget service_order"`
	DocumentNumber *string  `json:"document_number,omitempty"`
	CustomerID     *string  `json:"customer_id,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Monetary fields arrive as the user typed them: comma or dot decimals,
// optional thousands separators, optional currency prefix.
type lineItemRequest struct {
	ProductID       int64   `json:"product_id" validate:"required,gt=0"`
	ProductName     string  `json:"product_name" validate:"required"`
	Barcode         *string `json:"barcode,omitempty"`
	Quantity        string  `json:"quantity" validate:"required"`
	UnitPrice       string  `json:"unit_price" validate:"required"`
	DiscountEnabled bool    `json:"discount_enabled"`
	DiscountMode    string  `json:"discount_mode,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	DiscountPercent string  `json:"discount_percent,omitempty"`
	DiscountAmount  string  `json:"discount_amount,omitempty"`

	// set when editing an existing line instead of adding one
	EditServerID  *int64 `json:"edit_server_id,omitempty"`
	EditProductID *int64 `json:"edit_product_id,omitempty"`
}

func (p lineItemRequest) toInput() draft.LineInput {
	mode := enums.DiscountMode(p.DiscountMode)
	return draft.LineInput{
		ProductID:       p.ProductID,
		ProductName:     strings.TrimSpace(p.ProductName),
		Barcode:         p.Barcode,
		Quantity:        numfmt.ParseDecimal(p.Quantity),
		UnitPrice:       numfmt.ParseDecimal(p.UnitPrice),
		DiscountEnabled: p.DiscountEnabled,
		DiscountMode:    mode,
		DiscountPercent: numfmt.ParseDecimal(p.DiscountPercent),
		DiscountAmount:  numfmt.ParseDecimal(p.DiscountAmount),
	}
}

func (p lineItemRequest) editRef() *draft.EditRef {
	if p.EditServerID != nil {
		return &draft.EditRef{ServerID: p.EditServerID}
	}
	if p.EditProductID != nil {
		return &draft.EditRef{ProductID: *p.EditProductID}
	}
	return nil
}

type setQuantityRequest struct {
	// may be empty while the user is typing; treated as zero
	Quantity string `json:"quantity"`
}

type orderDiscountRequest struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	Percent string `json:"percent,omitempty"`
	Amount  string `json:"amount,omitempty"`
}

type draftListResponse struct {
	Drafts     any    `json:"drafts"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// DraftCreate opens a new draft, hydrating from the ERP when a document
// number is provided.
func DraftCreate(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		view, err := svc.Create(r.Context(), scope, draft.CreateInput{
			DocumentType:   enums.DocumentType(payload.DocumentType),
			DocumentNumber: payload.DocumentNumber,
			CustomerID:     payload.CustomerID,
			Tags:           payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// DraftGet returns one draft with its derived totals.
func DraftGet(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), middleware.ScopeFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DraftList pages through the caller's drafts.
func DraftList(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, next, err := svc.List(r.Context(), middleware.ScopeFromContext(r.Context()), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draftListResponse{Drafts: records, NextCursor: next})
	}
}

// DraftDiscard deletes a draft without submitting anything upstream.
func DraftDiscard(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Discard(r.Context(), middleware.ScopeFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "discarded"})
	}
}

// DraftAddOrEditItem adds a line or replaces an existing one.
func DraftAddOrEditItem(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload lineItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddOrEditItem(r.Context(), middleware.ScopeFromContext(r.Context()), id, payload.toInput(), payload.editRef())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DraftSetQuantity updates one line's quantity from raw user input.
func DraftSetQuantity(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetQuantity(r.Context(), middleware.ScopeFromContext(r.Context()), id, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DraftRemoveItem drops a line, tombstoning persisted ones.
func DraftRemoveItem(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveItem(r.Context(), middleware.ScopeFromContext(r.Context()), id, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DraftSetOrderDiscount replaces the document-level discount.
func DraftSetOrderDiscount(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetOrderDiscount(r.Context(), middleware.ScopeFromContext(r.Context()), id, draft.OrderDiscountInput{
			Enabled: payload.Enabled,
			Mode:    enums.DiscountMode(payload.Mode),
			Percent: numfmt.ParseDecimal(payload.Percent),
			Amount:  numfmt.ParseDecimal(payload.Amount),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DraftSave reconciles the draft against the ERP in one batch.
func DraftSave(svc *draft.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Save(r.Context(), middleware.ScopeFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func draftIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "draftID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid draft id")
	}
	return id, nil
}

func lineIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line id")
	}
	return id, nil
}

package controllers

import (
	"net/http"

	"github.com/dmoura/orderdraft-backend/api/middleware"
	"github.com/dmoura/orderdraft-backend/api/responses"
	"github.com/dmoura/orderdraft-backend/api/validators"
	"github.com/dmoura/orderdraft-backend/internal/barcode"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
)

type scanRequest struct {
	Code      string `json:"code" validate:"required"`
	ScannerID string `json:"scanner_id,omitempty"`
}

// BarcodeScan resolves one decoded code to an item-form prefill. Duplicate
// reads inside the cooldown window come back suppressed with no product.
func BarcodeScan(svc *barcode.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload scanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.Scan(r.Context(), middleware.ScopeFromContext(r.Context()), payload.ScannerID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

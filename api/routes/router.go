package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmoura/orderdraft-backend/api/controllers"
	"github.com/dmoura/orderdraft-backend/api/middleware"
	"github.com/dmoura/orderdraft-backend/internal/barcode"
	"github.com/dmoura/orderdraft-backend/internal/draft"
	"github.com/dmoura/orderdraft-backend/internal/lookup"
	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
)

// NewRouter wires the HTTP surface. All /api/v1 routes require a bearer
// token; health and metrics stay open for the orchestrator.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	gatherer prometheus.Gatherer,
	draftService *draft.Service,
	lookupService *lookup.Service,
	barcodeService *barcode.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", controllers.DraftCreate(draftService, logg))
			r.Get("/", controllers.DraftList(draftService, logg))

			r.Route("/{draftID}", func(r chi.Router) {
				r.Get("/", controllers.DraftGet(draftService, logg))
				r.Delete("/", controllers.DraftDiscard(draftService, logg))
				r.Post("/items", controllers.DraftAddOrEditItem(draftService, logg))
				r.Patch("/items/{lineID}", controllers.DraftSetQuantity(draftService, logg))
				r.Delete("/items/{lineID}", controllers.DraftRemoveItem(draftService, logg))
				r.Put("/discount", controllers.DraftSetOrderDiscount(draftService, logg))
				r.Post("/save", controllers.DraftSave(draftService, logg))
			})
		})

		r.Get("/lookup", controllers.LookupSearch(lookupService, logg))
		r.Delete("/lookup/session", controllers.LookupForget(lookupService, logg))
		r.Post("/barcode/scan", controllers.BarcodeScan(barcodeService, logg))
	})

	return r
}

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmoura/orderdraft-backend/api/controllers"
	"github.com/dmoura/orderdraft-backend/internal/barcode"
	"github.com/dmoura/orderdraft-backend/internal/draft"
	"github.com/dmoura/orderdraft-backend/internal/erp"
	"github.com/dmoura/orderdraft-backend/internal/lookup"
	pkgauth "github.com/dmoura/orderdraft-backend/pkg/auth"
	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/metrics"
	"github.com/dmoura/orderdraft-backend/pkg/redis"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

// stubERP answers every upstream call the three services make, so the full
// HTTP surface can be exercised without a network.
type stubERP struct {
	items       []erp.DocumentItem
	response    *erp.BatchResponse
	results     []erp.SearchResult
	product     *erp.Product
	lastBatch   erp.BatchRequest
	submitCalls int
}

func (s *stubERP) DocumentItems(context.Context, types.RequestScope, enums.DocumentType, string) ([]erp.DocumentItem, error) {
	return s.items, nil
}

func (s *stubERP) SubmitItemBatch(_ context.Context, _ types.RequestScope, _ enums.DocumentType, _ string, batch erp.BatchRequest) (*erp.BatchResponse, error) {
	s.submitCalls++
	s.lastBatch = batch
	return s.response, nil
}

func (s *stubERP) Search(context.Context, types.RequestScope, enums.LookupType, string) ([]erp.SearchResult, error) {
	return s.results, nil
}

func (s *stubERP) ProductByBarcode(context.Context, types.RequestScope, string) (*erp.Product, error) {
	return s.product, nil
}

type stubCache struct {
	entries map[string]*redis.Entry
}

func (s *stubCache) GetEntry(_ context.Context, key string) (*redis.Entry, error) {
	return s.entries[key], nil
}

func (s *stubCache) SetEntry(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = &redis.Entry{Value: raw, CachedAt: time.Now().UTC()}
	return nil
}

func (s *stubCache) LookupCacheKey(scopePart, lookupType, query string) string {
	return strings.Join([]string{scopePart, lookupType, query}, ":")
}

type stubGuard struct{}

func (stubGuard) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return true, nil
}

func (stubGuard) CooldownKey(scannerID, code string) string {
	return scannerID + ":" + code
}

type routerTxRunner struct {
	db *gorm.DB
}

func (r routerTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupRouterDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	records := `
CREATE TABLE IF NOT EXISTS draft_records (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  branch_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  document_type TEXT NOT NULL,
  document_number TEXT,
  customer_id TEXT,
  status TEXT NOT NULL DEFAULT 'editing',
  order_discount_enabled INTEGER NOT NULL DEFAULT 0,
  order_discount_mode TEXT NOT NULL DEFAULT 'percentage',
  order_discount_percent NUMERIC NOT NULL DEFAULT 0,
  order_discount_amount NUMERIC NOT NULL DEFAULT 0,
  tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	lines := `
CREATE TABLE IF NOT EXISTS draft_line_items (
  id TEXT PRIMARY KEY,
  draft_id TEXT NOT NULL,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  barcode TEXT,
  quantity NUMERIC NOT NULL,
  unit_price NUMERIC NOT NULL,
  discount_enabled INTEGER NOT NULL DEFAULT 0,
  discount_mode TEXT NOT NULL DEFAULT 'percentage',
  discount_percent NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  server_id INTEGER,
  removed INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(records).Error)
	require.NoError(t, db.Exec(lines).Error)
	return db
}

func routerTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "orderdraft-test"},
		Lookup: config.LookupConfig{
			DebounceWindow: 0,
			SearchCacheTTL: 3 * time.Minute,
			ReferenceTTL:   12 * time.Hour,
		},
		Barcode: config.BarcodeConfig{Cooldown: time.Minute},
	}
}

func setupRouter(t *testing.T, upstream *stubERP) (http.Handler, string) {
	t.Helper()

	cfg := routerTestConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	registry := prometheus.NewRegistry()
	m := metrics.NewDraftMetrics(registry)

	db := setupRouterDB(t)
	repo := draft.NewRepository(db)
	draftService, err := draft.NewService(repo, routerTxRunner{db: db}, upstream, m, logg)
	require.NoError(t, err)

	lookupService, err := lookup.NewService(&stubCache{entries: map[string]*redis.Entry{}}, upstream, cfg.Lookup, m, logg)
	require.NoError(t, err)

	barcodeService, err := barcode.NewService(stubGuard{}, upstream, cfg.Barcode, m, logg)
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, map[string]controllers.Pinger{}, registry, draftService, lookupService, barcodeService)

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		CompanyID: "10",
		BranchID:  "2",
		UserID:    "77",
	})
	require.NoError(t, err)

	return handler, token
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

type draftViewPayload struct {
	Record struct {
		ID     string `json:"ID"`
		Status string `json:"Status"`
	} `json:"record"`
	Lines  []json.RawMessage `json:"lines"`
	Totals struct {
		Subtotal   decimal.Decimal `json:"subtotal"`
		GrandTotal decimal.Decimal `json:"grand_total"`
	} `json:"totals"`
}

func TestRouterHealthLive(t *testing.T) {
	handler, _ := setupRouter(t, &stubERP{})

	rec := doJSON(t, handler, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRequiresAuth(t *testing.T) {
	handler, _ := setupRouter(t, &stubERP{})

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/drafts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterDraftLifecycle(t *testing.T) {
	upstream := &stubERP{
		response: &erp.BatchResponse{
			Created: []erp.CreatedItem{{ServerID: 900, ProductID: 42}},
		},
	}
	handler, token := setupRouter(t, upstream)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/drafts", token, map[string]any{
		"document_type":   "order",
		"document_number": "PED-100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created draftViewPayload
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.Record.ID)
	assert.Equal(t, "editing", created.Record.Status)

	draftPath := "/api/v1/drafts/" + created.Record.ID

	rec = doJSON(t, handler, http.MethodPost, draftPath+"/items", token, map[string]any{
		"product_id":   42,
		"product_name": "Parafuso sextavado",
		"quantity":     "3",
		"unit_price":   "10,00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, draftPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view draftViewPayload
	decodeData(t, rec, &view)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Totals.GrandTotal.Equal(decimal.NewFromInt(30)), view.Totals.GrandTotal.String())

	rec = doJSON(t, handler, http.MethodPost, draftPath+"/save", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved draftViewPayload
	decodeData(t, rec, &saved)
	assert.Equal(t, "synced", saved.Record.Status)
	assert.Equal(t, 1, upstream.submitCalls)
	require.Len(t, upstream.lastBatch.Add, 1)
	assert.Equal(t, int64(42), upstream.lastBatch.Add[0].ProductID)
}

func TestRouterDraftValidation(t *testing.T) {
	handler, token := setupRouter(t, &stubERP{})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/drafts", token, map[string]any{
		"document_type": "invoice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterLookup(t *testing.T) {
	upstream := &stubERP{
		results: []erp.SearchResult{{ID: 7, Name: "Parafuso"}},
	}
	handler, token := setupRouter(t, upstream)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/lookup?type=product&q=par&session=field-1&seq=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Results []erp.SearchResult `json:"results"`
		Stale   bool               `json:"stale"`
	}
	decodeData(t, rec, &out)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Parafuso", out.Results[0].Name)
	assert.False(t, out.Stale)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/lookup/session?type=product&session=field-1", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterBarcodeScan(t *testing.T) {
	upstream := &stubERP{
		product: &erp.Product{
			ID:           42,
			Name:         "Parafuso sextavado",
			Barcode:      "7891000100103",
			AtSightPrice: decimal.RequireFromString("18.90"),
		},
	}
	handler, token := setupRouter(t, upstream)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/barcode/scan", token, map[string]any{
		"code":       "7891000100103",
		"scanner_id": "cam-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Suppressed bool `json:"suppressed"`
		Prefill    *struct {
			ProductID int64           `json:"product_id"`
			Quantity  decimal.Decimal `json:"quantity"`
		} `json:"prefill"`
	}
	decodeData(t, rec, &out)
	assert.False(t, out.Suppressed)
	require.NotNil(t, out.Prefill)
	assert.Equal(t, int64(42), out.Prefill.ProductID)
	assert.True(t, out.Prefill.Quantity.Equal(decimal.NewFromInt(1)))
}

func TestRouterMetricsExposed(t *testing.T) {
	handler, _ := setupRouter(t, &stubERP{})

	rec := doJSON(t, handler, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

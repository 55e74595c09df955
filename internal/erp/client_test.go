package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

func testScope() types.RequestScope {
	return types.RequestScope{CompanyID: "10", BranchID: "2", UserID: "77", Token: "tok"}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.ERPConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		SearchPageSize: 20,
	}, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestSearchSendsScopeHeaders(t *testing.T) {
	t.Parallel()

	var gotCompany, gotBranch, gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCompany = r.Header.Get("X-Company-Id")
		gotBranch = r.Header.Get("X-Branch-Id")
		gotAuth = r.Header.Get("Authorization")
		if got := r.URL.Query().Get("type"); got != "product" {
			t.Errorf("unexpected type param %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"id": 1, "name": "Cabo Flex 2,5mm"}},
		})
	}))

	results, err := client.Search(context.Background(), testScope(), enums.LookupTypeProduct, "cabo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Cabo Flex 2,5mm" {
		t.Fatalf("unexpected results %+v", results)
	}
	if gotCompany != "10" || gotBranch != "2" || gotAuth != "Bearer tok" {
		t.Fatalf("scope headers missing: company=%q branch=%q auth=%q", gotCompany, gotBranch, gotAuth)
	}
}

func TestSearchToleratesDataEnvelope(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"results": []map[string]any{{"id": 9, "name": "Banco Azul"}},
			},
		})
	}))

	results, err := client.Search(context.Background(), testScope(), enums.LookupTypeBank, "azul")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != 9 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestProductByBarcodeNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unknown barcode"}`, http.StatusNotFound)
	}))

	_, err := client.ProductByBarcode(context.Background(), testScope(), "789100000123")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSubmitItemBatchDecodesWrappedResponse(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(got.Add) != 1 || len(got.Remove) != 1 {
			t.Errorf("unexpected batch %+v", got)
		}
		if len(got.Add) == 1 {
			if !got.Add[0].DiscountEnabled || got.Add[0].DiscountMode != enums.DiscountModeFixedAmount {
				t.Errorf("discount discriminator lost: %+v", got.Add[0])
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"created": []map[string]any{{"item_id": 501, "product_id": 42, "client_ref": "ref-1"}},
				"count":   1,
			},
		})
	}))

	batch := BatchRequest{
		Add: []BatchItemCreate{{
			ClientRef:       "ref-1",
			ProductID:       42,
			Quantity:        decimal.NewFromInt(3),
			UnitPrice:       decimal.NewFromInt(10),
			DiscountEnabled: true,
			DiscountMode:    enums.DiscountModeFixedAmount,
			DiscountAmount:  decimal.NewFromInt(5),
			LineTotal:       decimal.NewFromInt(25),
		}},
		Remove: []BatchItemDelete{{ServerID: 200}},
	}

	resp, err := client.SubmitItemBatch(context.Background(), testScope(), enums.DocumentTypeOrder, "ORD-1", batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Created) != 1 || resp.Created[0].ServerID != 501 || resp.Created[0].ClientRef != "ref-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSubmitItemBatchDecodesBareCreatedList(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"item_id": 77, "product_id": 5}})
	}))

	resp, err := client.SubmitItemBatch(context.Background(), testScope(), enums.DocumentTypeBudget, "B-9", BatchRequest{
		Add: []BatchItemCreate{{ProductID: 5, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2), LineTotal: decimal.NewFromInt(2)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Created) != 1 || resp.Created[0].ServerID != 77 || resp.Count != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDoRejectsScopeWithoutTenant(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach upstream")
	}))

	_, err := client.Search(context.Background(), types.RequestScope{}, enums.LookupTypeProduct, "x")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServerErrorMapsToDependency(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"maintenance"}`, http.StatusBadGateway)
	}))

	_, err := client.DocumentItems(context.Background(), testScope(), enums.DocumentTypeOrder, "ORD-1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if typed.Message() != "maintenance" {
		t.Fatalf("expected upstream message surfaced, got %q", typed.Message())
	}
}

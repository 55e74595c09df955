package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

var (
	errBaseURLRequired = errors.New("erp base url is required")
	errLoggerRequired  = errors.New("erp logger is required")
)

// Client talks to the upstream ERP REST API. Every call carries the request
// scope as headers; the ERP stays authoritative for pricing, stock and
// permissions, so this client never caches or retries on its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
	logger     *logger.Logger
}

// NewClient validates the configuration and builds the ERP client.
func NewClient(cfg config.ERPConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    baseURL,
		pageSize:   cfg.SearchPageSize,
		logger:     logg,
	}, nil
}

// Search queries the free-text search endpoint for one entity family.
func (c *Client) Search(ctx context.Context, scope types.RequestScope, lookupType enums.LookupType, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("type", lookupType.String())
	params.Set("q", query)
	if c.pageSize > 0 {
		params.Set("limit", strconv.Itoa(c.pageSize))
	}

	var payload struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.getJSON(ctx, scope, "/v1/search?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// ProductByBarcode resolves a scanned code to a catalog product.
func (c *Client) ProductByBarcode(ctx context.Context, scope types.RequestScope, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	var product Product
	if err := c.getJSON(ctx, scope, "/v1/products/barcode/"+url.PathEscape(code), &product); err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found for barcode")
	}
	return &product, nil
}

// DocumentItems loads the persisted lines of an existing document so a draft
// can be hydrated from server truth.
func (c *Client) DocumentItems(ctx context.Context, scope types.RequestScope, documentType enums.DocumentType, number string) ([]DocumentItem, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document number is required")
	}
	var payload struct {
		Items []DocumentItem `json:"items"`
	}
	path := fmt.Sprintf("/v1/documents/%s/%s/items", url.PathEscape(documentType.String()), url.PathEscape(number))
	if err := c.getJSON(ctx, scope, path, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// SubmitItemBatch sends one add/edit/remove diff for a document and decodes
// the created-items echo. The response may be the bare created list or a
// wrapped summary; both are accepted.
func (c *Client) SubmitItemBatch(ctx context.Context, scope types.RequestScope, documentType enums.DocumentType, number string, batch BatchRequest) (*BatchResponse, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document number is required")
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal batch request")
	}

	path := fmt.Sprintf("/v1/documents/%s/%s/items/batch", url.PathEscape(documentType.String()), url.PathEscape(number))
	raw, err := c.do(ctx, scope, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return decodeBatchResponse(raw)
}

func decodeBatchResponse(raw []byte) (*BatchResponse, error) {
	raw = unwrapEnvelope(raw)

	var response BatchResponse
	if err := json.Unmarshal(raw, &response); err == nil && response.Created != nil {
		return &response, nil
	}

	// some deployments answer with the bare created list
	var created []CreatedItem
	if err := json.Unmarshal(raw, &created); err == nil {
		return &BatchResponse{Created: created, Count: len(created)}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeDependency, "unrecognized batch response shape")
}

// unwrapEnvelope strips an optional {"data": ...} wrapper.
func unwrapEnvelope(raw []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}

func (c *Client) getJSON(ctx context.Context, scope types.RequestScope, path string, dest any) error {
	raw, err := c.do(ctx, scope, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	raw = unwrapEnvelope(raw)
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode erp response")
	}
	return nil
}

func (c *Client) do(ctx context.Context, scope types.RequestScope, method, path string, body io.Reader) ([]byte, error) {
	if !scope.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request scope missing company or branch")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build erp request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if scope.Token != "" {
		req.Header.Set("Authorization", "Bearer "+scope.Token)
	}
	req.Header.Set("X-Company-Id", scope.CompanyID)
	req.Header.Set("X-Branch-Id", scope.BranchID)
	req.Header.Set("X-User-Id", scope.UserID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "erp request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read erp response")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "erp resource not found")
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "erp rejected credentials")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, upstreamMessage(raw, "erp rejected request"))
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, upstreamMessage(raw, "erp unavailable"))
	}
}

// upstreamMessage pulls a human-readable message out of an ERP error body
// when one exists.
func upstreamMessage(raw []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error.Message != "" {
			return payload.Error.Message
		}
	}
	return fallback
}

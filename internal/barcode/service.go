package barcode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoura/orderdraft-backend/internal/erp"
	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/debounce"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/metrics"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

const (
	outcomeMatched    = "matched"
	outcomeNotFound   = "not_found"
	outcomeSuppressed = "suppressed"
)

type productResolver interface {
	ProductByBarcode(ctx context.Context, scope types.RequestScope, code string) (*erp.Product, error)
}

type scanGuard interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CooldownKey(scannerID, code string) string
}

// Service turns a decoded barcode into an item-form prefill. A camera
// decodes the same code many times per second, so every scan passes a
// cooldown first: in-process for the common case, backed by redis so the
// window holds across instances. Suppressed scans are an expected outcome,
// not an error.
type Service struct {
	cooldown *debounce.Cooldown
	guard    scanGuard
	erp      productResolver
	cfg      config.BarcodeConfig
	metrics  *metrics.DraftMetrics
	logger   *logger.Logger
}

// NewService builds the barcode intake service.
func NewService(guard scanGuard, resolver productResolver, cfg config.BarcodeConfig, m *metrics.DraftMetrics, logg *logger.Logger) (*Service, error) {
	if guard == nil {
		return nil, fmt.Errorf("scan guard required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		cooldown: debounce.NewCooldown(cfg.Cooldown),
		guard:    guard,
		erp:      resolver,
		cfg:      cfg,
		metrics:  m,
		logger:   logg,
	}, nil
}

// Prefill is the item-form seed built from a matched product: quantity
// defaults to one and the price to the catalog's at-sight price.
type Prefill struct {
	ProductID   int64              `json:"product_id"`
	ProductName string             `json:"product_name"`
	Barcode     string             `json:"barcode"`
	Quantity    decimal.Decimal    `json:"quantity"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	Mode        enums.DiscountMode `json:"discount_mode"`
}

// ScanOutput is the result of one scan event. Suppressed means the code was
// a duplicate read inside the cooldown window and carries no product.
type ScanOutput struct {
	Suppressed bool     `json:"suppressed"`
	Prefill    *Prefill `json:"prefill,omitempty"`
}

// Scan resolves one decoded code for a scanner. ScannerID scopes the
// cooldown, typically the device or session firing the scans.
func (s *Service) Scan(ctx context.Context, scope types.RequestScope, scannerID, code string) (*ScanOutput, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	if scannerID == "" {
		scannerID = scope.CacheKeyPart()
	}

	if !s.cooldown.Allow(scannerID + ":" + code) {
		s.metrics.IncScan(outcomeSuppressed)
		return &ScanOutput{Suppressed: true}, nil
	}

	// distributed backstop for the in-process window
	if allowed, err := s.guard.SetNX(ctx, s.guard.CooldownKey(scannerID, code), 1, s.cfg.Cooldown); err != nil {
		s.logger.Warn(ctx, "scan cooldown backstop failed: "+err.Error())
	} else if !allowed {
		s.metrics.IncScan(outcomeSuppressed)
		return &ScanOutput{Suppressed: true}, nil
	}

	product, err := s.erp.ProductByBarcode(ctx, scope, code)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.metrics.IncScan(outcomeNotFound)
		}
		return nil, err
	}

	s.metrics.IncScan(outcomeMatched)
	return &ScanOutput{
		Prefill: &Prefill{
			ProductID:   product.ID,
			ProductName: product.Name,
			Barcode:     code,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   product.AtSightPrice,
			Mode:        enums.DiscountModePercentage,
		},
	}, nil
}

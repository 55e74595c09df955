package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmoura/orderdraft-backend/internal/erp"
	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/debounce"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/metrics"
	"github.com/dmoura/orderdraft-backend/pkg/redis"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

type cacheStore interface {
	GetEntry(ctx context.Context, key string) (*redis.Entry, error)
	SetEntry(ctx context.Context, key string, value any, backstop time.Duration) error
	LookupCacheKey(scopePart, lookupType, query string) string
}

type searcher interface {
	Search(ctx context.Context, scope types.RequestScope, lookupType enums.LookupType, query string) ([]erp.SearchResult, error)
}

// Service runs debounced, cached search-as-you-type lookups. Each keystroke
// carries a client-assigned sequence; only the newest sequence per session
// survives the debounce window, and a response that resolves after a newer
// keystroke is dropped, never shown. Cache entries are trusted only while
// younger than the TTL for their entity family, regardless of what the
// backing store would keep.
type Service struct {
	gate    *debounce.Gate
	cache   cacheStore
	erp     searcher
	cfg     config.LookupConfig
	metrics *metrics.DraftMetrics
	logger  *logger.Logger
	now     func() time.Time
}

// NewService builds the lookup service.
func NewService(cache cacheStore, erpClient searcher, cfg config.LookupConfig, m *metrics.DraftMetrics, logg *logger.Logger) (*Service, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if erpClient == nil {
		return nil, fmt.Errorf("erp searcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		gate:    debounce.NewGate(cfg.DebounceWindow),
		cache:   cache,
		erp:     erpClient,
		cfg:     cfg,
		metrics: m,
		logger:  logg,
		now:     time.Now,
	}, nil
}

// Input is one search request. SessionKey identifies the input field firing
// the queries (one last-write-wins stream per field); Seq must increase with
// every keystroke within that stream.
type Input struct {
	Type       enums.LookupType
	Query      string
	SessionKey string
	Seq        uint64
}

// Output carries the results plus where they came from. Stale means the
// request was superseded by a newer one and its results must be discarded;
// the caller renders nothing and waits for the newer response.
type Output struct {
	Results   []erp.SearchResult `json:"results"`
	FromCache bool               `json:"from_cache"`
	Stale     bool               `json:"stale"`
}

// Search resolves one lookup request end to end: debounce, cache probe,
// upstream fetch, last-write-wins check, cache fill.
func (s *Service) Search(ctx context.Context, scope types.RequestScope, input Input) (*Output, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lookup type")
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}
	sessionKey := input.SessionKey
	if sessionKey == "" {
		sessionKey = scope.CacheKeyPart()
	}
	gateKey := sessionKey + ":" + input.Type.String()
	lookupType := input.Type.String()

	if err := s.gate.Wait(ctx, gateKey, input.Seq); err != nil {
		if errors.Is(err, debounce.ErrSuperseded) {
			s.metrics.IncStaleDrop(lookupType)
			return &Output{Stale: true}, nil
		}
		return nil, err
	}

	cacheKey := s.cache.LookupCacheKey(scope.CacheKeyPart(), lookupType, query)
	ttl := s.ttlFor(input.Type)

	if entry, err := s.cache.GetEntry(ctx, cacheKey); err != nil {
		s.logger.Warn(ctx, "lookup cache read failed: "+err.Error())
	} else if entry != nil && entry.Fresh(s.now(), ttl) {
		var results []erp.SearchResult
		if err := json.Unmarshal(entry.Value, &results); err == nil {
			s.metrics.IncCacheHit(lookupType)
			if !s.gate.StillCurrent(gateKey, input.Seq) {
				s.metrics.IncStaleDrop(lookupType)
				return &Output{Stale: true}, nil
			}
			return &Output{Results: results, FromCache: true}, nil
		}
	}
	s.metrics.IncCacheMiss(lookupType)

	results, err := s.erp.Search(ctx, scope, input.Type, query)
	if err != nil {
		return nil, err
	}

	if !s.gate.StillCurrent(gateKey, input.Seq) {
		s.metrics.IncStaleDrop(lookupType)
		return &Output{Stale: true}, nil
	}

	if err := s.cache.SetEntry(ctx, cacheKey, results, ttl); err != nil {
		s.logger.Warn(ctx, "lookup cache write failed: "+err.Error())
	}
	return &Output{Results: results}, nil
}

// Forget drops the sequence tracking of a session, typically when the
// owning screen closes.
func (s *Service) Forget(sessionKey string, lookupType enums.LookupType) {
	s.gate.Forget(sessionKey + ":" + lookupType.String())
}

func (s *Service) ttlFor(lookupType enums.LookupType) time.Duration {
	if lookupType.IsReference() {
		return s.cfg.ReferenceTTL
	}
	return s.cfg.SearchCacheTTL
}

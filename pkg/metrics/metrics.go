package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DraftMetrics records the service's operational counters: save round-trips,
// lookup cache behavior and discarded stale responses.
type DraftMetrics struct {
	saveDuration *prometheus.HistogramVec
	saveSuccess  *prometheus.CounterVec
	saveFailure  *prometheus.CounterVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	staleDrops   *prometheus.CounterVec
	scans        *prometheus.CounterVec
}

// NewDraftMetrics registers the instruments on the provided registerer. A nil
// registerer yields a no-op recorder, which tests rely on.
func NewDraftMetrics(reg prometheus.Registerer) *DraftMetrics {
	if reg == nil {
		return &DraftMetrics{}
	}
	saveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "draft_save_duration_seconds",
		Help:    "Duration of draft save round-trips in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"document_type"})
	saveSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_save_success",
		Help: "Successful draft batch submissions.",
	}, []string{"document_type"})
	saveFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_save_failure",
		Help: "Failed draft batch submissions.",
	}, []string{"document_type"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_cache_hits",
		Help: "Lookup requests served from cache.",
	}, []string{"lookup_type"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_cache_misses",
		Help: "Lookup requests that went upstream.",
	}, []string{"lookup_type"})
	staleDrops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_stale_discards",
		Help: "Lookup responses discarded because a newer query superseded them.",
	}, []string{"lookup_type"})
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "barcode_scans",
		Help: "Barcode scan intake outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(saveDuration, saveSuccess, saveFailure, cacheHits, cacheMisses, staleDrops, scans)
	return &DraftMetrics{
		saveDuration: saveDuration,
		saveSuccess:  saveSuccess,
		saveFailure:  saveFailure,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		staleDrops:   staleDrops,
		scans:        scans,
	}
}

// ObserveSaveDuration records how long a save round-trip took.
func (m *DraftMetrics) ObserveSaveDuration(documentType string, duration time.Duration) {
	if m == nil || m.saveDuration == nil {
		return
	}
	m.saveDuration.WithLabelValues(normalizeLabel(documentType)).Observe(duration.Seconds())
}

// IncSaveSuccess increments the success counter for a document type.
func (m *DraftMetrics) IncSaveSuccess(documentType string) {
	if m == nil || m.saveSuccess == nil {
		return
	}
	m.saveSuccess.WithLabelValues(normalizeLabel(documentType)).Inc()
}

// IncSaveFailure increments the failure counter for a document type.
func (m *DraftMetrics) IncSaveFailure(documentType string) {
	if m == nil || m.saveFailure == nil {
		return
	}
	m.saveFailure.WithLabelValues(normalizeLabel(documentType)).Inc()
}

// IncCacheHit counts a lookup served from cache.
func (m *DraftMetrics) IncCacheHit(lookupType string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(lookupType)).Inc()
}

// IncCacheMiss counts a lookup that had to go upstream.
func (m *DraftMetrics) IncCacheMiss(lookupType string) {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.WithLabelValues(normalizeLabel(lookupType)).Inc()
}

// IncStaleDrop counts a discarded superseded lookup response.
func (m *DraftMetrics) IncStaleDrop(lookupType string) {
	if m == nil || m.staleDrops == nil {
		return
	}
	m.staleDrops.WithLabelValues(normalizeLabel(lookupType)).Inc()
}

// IncScan counts a barcode intake outcome (matched, not_found, suppressed).
func (m *DraftMetrics) IncScan(outcome string) {
	if m == nil || m.scans == nil {
		return
	}
	m.scans.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

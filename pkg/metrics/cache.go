package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics counts view cache lookups.
type CacheMetrics struct {
	lookups *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "view_cache_lookups_total",
		Help: "View cache lookups by view and result (hit, miss, error).",
	}, []string{"view", "result"})
	reg.MustRegister(lookups)
	return &CacheMetrics{lookups: lookups}
}

func (m *CacheMetrics) IncLookup(view, result string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(view), normalizeLabel(result)).Inc()
}

package likes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	cacheLookups *prometheus.CounterVec
	applies      *prometheus.CounterVec
}

// newMetrics creates the service collectors. A nil reg leaves them
// unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "likes_cache_lookups_total",
			Help: "Cache lookups by key family and result (hit, miss, error).",
		}, []string{"family", "result"}),
		applies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "likes_apply_total",
			Help: "ApplyLike calls by result (ok, rejected, invalid, error).",
		}, []string{"result"}),
	}
}

func (m *metrics) cacheLookup(family, result string) {
	m.cacheLookups.WithLabelValues(family, result).Inc()
}

func (m *metrics) apply(result string) {
	m.applies.WithLabelValues(result).Inc()
}

package refresh

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "deskstate",
		Name:      "collect_duration_seconds",
		Help:      "Duration of full collection passes.",
		Buckets:   prometheus.DefBuckets,
	})

	collectTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deskstate",
		Name:      "collect_total",
		Help:      "Number of collection passes executed.",
	})

	staleDiscards = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deskstate",
		Name:      "stale_snapshots_discarded_total",
		Help:      "Snapshots discarded because a newer one was already published.",
	})

	providerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deskstate",
		Name:      "provider_failures_total",
		Help:      "External provider queries that yielded no value.",
	}, []string{"provider", "op"})
)

func observeCollect(d time.Duration) {
	collectTotal.Inc()
	collectDuration.Observe(d.Seconds())
}

// providerFailure records a degraded query. err may be nil for absent-value
// cases that carry no error (e.g. an unreadable scale).
func providerFailure(provider, op string, err error) {
	providerFailures.WithLabelValues(provider, op).Inc()
	if err != nil {
		slog.Warn("refresh: provider query failed", "provider", provider, "op", op, "err", err)
	}
}

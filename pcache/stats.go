package pcache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheStats = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "pcache_stats",
	Help: "Lifetime metrics of process-level caches",
}, []string{"name", "metric"})

func RecordStats(p PCache) {
	m := p.cache.Metrics
	cacheStats.WithLabelValues(p.name, "hits").Set(float64(m.Hits()))
	cacheStats.WithLabelValues(p.name, "misses").Set(float64(m.Misses()))
	cacheStats.WithLabelValues(p.name, "ratio").Set(m.Ratio())

	cacheStats.WithLabelValues(p.name, "sets_dropped").Set(float64(m.SetsDropped()))
	cacheStats.WithLabelValues(p.name, "sets_rejected").Set(float64(m.SetsRejected()))
	cacheStats.WithLabelValues(p.name, "cost_added").Set(float64(m.CostAdded()))
	cacheStats.WithLabelValues(p.name, "cost_evicted").Set(float64(m.CostEvicted()))
}

// ReportPeriodically records stats every period until stop is closed.
func ReportPeriodically(p PCache, period time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			RecordStats(p)
			select {
			case <-ticker.C:
			case <-stop:
				return
			}
		}
	}()
}

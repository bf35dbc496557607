package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests      *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	fetchErrors   prometheus.Counter
	cacheHits     prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bstable_requests_total",
				Help: "Table requests by endpoint and status code.",
			},
			[]string{"endpoint", "code"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bstable_fetch_duration_seconds",
				Help:    "Duration of table data fetches.",
				Buckets: prometheus.DefBuckets,
			},
		),
		fetchErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bstable_fetch_errors_total",
				Help: "Failed table data fetches answered with an empty result.",
			},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bstable_cache_hits_total",
				Help: "Table data responses served from cache.",
			},
		),
	}
}

func (m *metrics) register(registerer prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		m.requests,
		m.fetchDuration,
		m.fetchErrors,
		m.cacheHits,
	} {
		if err := registerer.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by route pattern and status class.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judging_http_requests_total",
			Help: "HTTP requests handled, by route and status",
		},
		[]string{"route", "status"},
	)

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "judging_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// ScoresRecorded counts successful score upserts.
	ScoresRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "judging_scores_recorded_total",
			Help: "Scores recorded by judges (including re-scores)",
		},
	)

	// WinnersProposed counts winner rows persisted at pending.
	WinnersProposed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "judging_winners_proposed_total",
			Help: "Winner rows persisted as pending",
		},
	)

	// WinnersApproved counts pending -> approved transitions.
	WinnersApproved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "judging_winners_approved_total",
			Help: "Winners approved by organizers",
		},
	)

	// CacheHits counts Redis cache hits by cache name.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judging_cache_hits_total",
			Help: "Cache hits by cache",
		},
		[]string{"cache"},
	)

	// CacheMisses counts Redis cache misses by cache name.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judging_cache_misses_total",
			Help: "Cache misses by cache",
		},
		[]string{"cache"},
	)
)

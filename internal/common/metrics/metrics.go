package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TendersSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenders_synced_total",
			Help: "Total number of tender upserts processed",
		},
		[]string{"outcome"},
	)

	MetadataWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metadata_write_conflicts_total",
			Help: "Total number of relational writes rolled back during sync",
		},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "search_duration_seconds",
			Help: "Duration of relevance search requests in seconds",
		},
	)

	ReadinessChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_checks_total",
			Help: "Total number of readiness score computations",
		},
		[]string{"recommendation"},
	)

	FeedPagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_pages_fetched_total",
			Help: "Total number of OCDS feed pages fetched",
		},
	)
)

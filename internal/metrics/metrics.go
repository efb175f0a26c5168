// AngelaMos | 2026
// metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackrec_recommendations_total",
			Help: "Recommendations served, by source (cached or generated)",
		},
		[]string{"source"},
	)

	RecommendationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackrec_recommendation_errors_total",
			Help: "Recommendation requests that failed, by reason",
		},
		[]string{"reason"},
	)

	// MatchConfidence observes the best archetype score of every request,
	// including the ones that fall below the threshold.
	MatchConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stackrec_match_confidence",
			Help:    "Best archetype match confidence per request",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stackrec_build_duration_seconds",
			Help:    "Time spent building a stack from catalog candidates",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackrec_cache_operations_total",
			Help: "Stack cache operations, by operation and result",
		},
		[]string{"operation", "result"},
	)

	VerifierPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackrec_verifier_passes_total",
			Help: "Verification passes, by outcome (completed, cancelled, failed)",
		},
		[]string{"outcome"},
	)

	VerifierPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stackrec_verifier_pass_duration_seconds",
			Help:    "Wall time of a verification pass",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	VerifierStacks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stackrec_verifier_stacks",
			Help: "Stacks per status after the most recent verification pass",
		},
		[]string{"status"},
	)

	URLChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackrec_url_checks_total",
			Help: "Outbound and image URL checks, by kind and result",
		},
		[]string{"kind", "result"},
	)

	CachePersistenceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stackrec_cache_persistence_failures_total",
			Help: "Verifier write-backs that could not be persisted",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stackrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

package translation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingopad_provider_attempts_total",
			Help: "Total number of translation provider attempts",
		},
		[]string{"provider", "outcome"},
	)

	providerAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lingopad_provider_attempt_duration_seconds",
			Help:    "Duration of translation provider attempts in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"provider"},
	)

	placeholderResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingopad_translation_placeholder_total",
			Help: "Translations answered with the unavailability placeholder",
		},
	)

	localProviderDisabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingopad_local_provider_disabled",
			Help: "1 when the local model is skipped for the rest of the process lifetime",
		},
	)
)

const (
	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeUnusable = "unusable"
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exposed on /metrics.
var (
	EnrollmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_enrollments_total",
		Help: "Successful course enrollments.",
	})

	DropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_drops_total",
		Help: "Successful course drops.",
	})

	CheckinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_checkins_total",
		Help: "Recorded attendance check-ins.",
	})

	DuplicateCheckinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_duplicate_checkins_total",
		Help: "Check-ins rejected as same-day duplicates.",
	})

	DeferredHoursUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_deferred_hours_updates_total",
		Help: "Hours decrements that failed after a check-in landed and were left to reconciliation.",
	})

	ReconciledHoursTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_reconciled_hours_total",
		Help: "Remaining-hours repairs applied by the reconciliation worker.",
	})
)

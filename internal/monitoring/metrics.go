package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess     = "success"
	OutcomeConflict    = "conflict"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

var (
	reservationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_reservations_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	reservedSeats = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seat_reservations_seats_total",
			Help: "Seats committed by successful bookings",
		},
	)

	cancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_cancellations_total",
			Help: "Cancellation attempts by outcome",
		},
		[]string{"outcome"},
	)

	showLockWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seat_show_lock_wait_seconds",
			Help:    "Time spent waiting for the per-show reservation lock",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"store", "acquired"},
	)

	commitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seat_reserve_commit_duration_seconds",
			Help:    "Duration of the atomic check-and-commit step",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)
)

func RecordReservation(outcome string, seats int) {
	reservationOutcomes.WithLabelValues(outcome).Inc()

	if outcome == OutcomeSuccess {
		reservedSeats.Add(float64(seats))
	}
}

func RecordCancellation(outcome string) {
	cancellations.WithLabelValues(outcome).Inc()
}

func ObserveLockWait(store string, wait time.Duration, acquired bool) {
	label := "true"
	if !acquired {
		label = "false"
	}

	showLockWait.WithLabelValues(store, label).Observe(wait.Seconds())
}

func ObserveCommit(store string, started time.Time) {
	commitDuration.WithLabelValues(store).Observe(time.Since(started).Seconds())
}

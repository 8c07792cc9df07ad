package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "karting", Name: "reservations_created_total",
		Help: "Reservations confirmed successfully",
	})
	ReservationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "karting", Name: "reservations_cancelled_total",
		Help: "Reservations cancelled",
	})
	ReservationsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "karting", Name: "reservations_completed_total",
		Help: "Reservations completed",
	})
	ScheduleConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "karting", Name: "schedule_conflicts_total",
		Help: "Allocation attempts rejected by the overlap check",
	})
	PricingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "karting", Name: "pricing_fallbacks_total",
		Help: "Quotes computed in degraded mode",
	})
	VehiclesFlaggedMaintenance = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "karting", Name: "vehicles_flagged_maintenance_total",
		Help: "Vehicles sent to maintenance by the usage threshold",
	})
	CreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "karting", Name: "reservation_create_seconds",
		Help:    "Create-reservation latency",
		Buckets: prometheus.DefBuckets,
	})
)

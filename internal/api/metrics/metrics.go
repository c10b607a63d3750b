// Package metrics defines and registers the custom Prometheus metrics of the
// booking portal API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings persisted after an approved payment.
// Label:
//   - service: catalog package id ("basic", "enterprise", "premium")
var BookingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created, by service package.",
	},
	[]string{"service"},
)

// BookingStatusUpdatesTotal counts status changes.
// Labels:
//   - status: the new booking status
//   - role: role of the actor who changed it
var BookingStatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_status_updates_total",
		Help:      "Total number of booking status updates.",
	},
	[]string{"status", "role"},
)

// WizardFailuresTotal counts confirms that ended in the failed step.
// Label:
//   - stage: "payment" or "persistence"
var WizardFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wizard_failures_total",
		Help:      "Total number of booking wizard confirms that failed.",
	},
	[]string{"stage"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentsTotal counts gateway charge attempts.
// Label:
//   - outcome: "approved", "declined" or "error" (transport failure)
var PaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Total number of payment gateway charge attempts, by outcome.",
	},
	[]string{"outcome"},
)

// PaymentDuration measures gateway round trips.
var PaymentDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_duration_seconds",
		Help:      "Duration of payment gateway charge calls.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts identity operations.
// Labels:
//   - event: "signup", "signin", "refresh", "signout"
//   - result: "ok", "rejected" (credential error) or "error"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication operations, by event and result.",
	},
	[]string{"event", "result"},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditEventsRecordedTotal counts booking events written to the audit trail.
var AuditEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_recorded_total",
		Help:      "Total number of booking audit events recorded, by type.",
	},
	[]string{"type"},
)

// AuditEventsErrorsTotal counts audit events that could not be recorded.
var AuditEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_errors_total",
		Help:      "Total number of booking audit events that failed to record.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks events waiting in each dispatcher worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventDuration measures how long recording one event takes.
var AuditEventDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_event_duration_seconds",
		Help:      "Duration of audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

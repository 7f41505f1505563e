package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travelapp"

// Metrics groups the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	bookingsCreated       *prometheus.CounterVec
	bookingTransitions    *prometheus.CounterVec
	enqueueFailures       *prometheus.CounterVec
	tasksProcessed        *prometheus.CounterVec
	taskDuration          *prometheus.HistogramVec
	emailsSent            *prometheus.CounterVec
	bookingsCompletedScan prometheus.Counter
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// binaries and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		bookingsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings created, by initial status.",
		}, []string{"status"}),
		bookingTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions, by target status.",
		}, []string{"status"}),
		enqueueFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_enqueue_failures_total",
			Help:      "Notification tasks that could not be handed to the broker.",
		}, []string{"task"}),
		tasksProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_processed_total",
			Help:      "Background task executions, by task and result.",
		}, []string{"task", "result"}),
		taskDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Background task execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		emailsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Email delivery attempts, by template and result.",
		}, []string{"template", "result"}),
		bookingsCompletedScan: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_completed_by_sweep_total",
			Help:      "Bookings moved to completed by the periodic sweep.",
		}),
	}
}

func (m *Metrics) BookingCreated(status string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) BookingTransition(status string) {
	if m == nil {
		return
	}
	m.bookingTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) BookingsCompleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bookingsCompletedScan.Add(float64(n))
}

func (m *Metrics) EnqueueFailed(task string) {
	if m == nil {
		return
	}
	m.enqueueFailures.WithLabelValues(task).Inc()
}

func (m *Metrics) TaskProcessed(task string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.tasksProcessed.WithLabelValues(task, result).Inc()
	m.taskDuration.WithLabelValues(task).Observe(time.Since(started).Seconds())
}

func (m *Metrics) EmailSent(template string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.emailsSent.WithLabelValues(template, result).Inc()
}

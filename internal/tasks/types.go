// Package tasks defines the background task catalogue and the dispatchers
// that hand tasks to workers: asynq over Redis in production and an inline
// dispatcher that runs handlers synchronously.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
)

// Task types are stable routing keys shared by producers, workers and the
// scheduler.
const (
	TypeBookingConfirmation = "send_booking_confirmation_email"
	TypeBookingReminder     = "send_booking_reminder_email"
	TypeBookingCancellation = "send_booking_cancellation_email"
	TypeAdminNotification   = "send_admin_notification"
	TypeCleanupOldLogs      = "cleanup_old_logs"
	TypeDailyReminders      = "send_daily_reminders"
	TypeCompleteBookings    = "complete_finished_bookings"
	TypeBookingAnalytics    = "process_booking_analytics"
)

const (
	QueueEmails      = "emails"
	QueueMaintenance = "maintenance"
)

var (
	ErrUnknownTask = errors.New("unknown task type")
	// ErrPermanent marks failures that must not be retried, such as an
	// undecodable payload.
	ErrPermanent = errors.New("permanent task failure")
	// ErrTransientDelivery marks delivery failures that the queue retries
	// according to the task's route.
	ErrTransientDelivery = errors.New("transient delivery failure")
)

type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailure State = "failure"
)

// Info identifies an enqueued task.
type Info struct {
	ID    string `json:"task_id"`
	Type  string `json:"task_type"`
	Queue string `json:"queue"`
}

// Status is the observable outcome of a task.
type Status struct {
	TaskID  string          `json:"task_id"`
	Type    string          `json:"task_type,omitempty"`
	Queue   string          `json:"queue,omitempty"`
	State   State           `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Retried int             `json:"retried"`
}

// HandlerFunc executes a task payload and returns an optional JSON result.
type HandlerFunc func(ctx context.Context, payload []byte) ([]byte, error)

// Registry binds task types to handlers.
type Registry interface {
	Handle(taskType string, h HandlerFunc)
}

// Enqueuer is the producer side used by services.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any) (Info, error)
}

type Dispatcher interface {
	Enqueuer
	Status(ctx context.Context, taskID string) (Status, error)
}

type ctxKey struct{}

type taskMeta struct {
	id      string
	retried int
}

func withMeta(ctx context.Context, id string, retried int) context.Context {
	return context.WithValue(ctx, ctxKey{}, taskMeta{id: id, retried: retried})
}

// TaskIDFromContext returns the id of the task being executed.
func TaskIDFromContext(ctx context.Context) string {
	m, _ := ctx.Value(ctxKey{}).(taskMeta)
	return m.id
}

// RetryCountFromContext returns how many times the running task was retried.
func RetryCountFromContext(ctx context.Context) int {
	m, _ := ctx.Value(ctxKey{}).(taskMeta)
	return m.retried
}

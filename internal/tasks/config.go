package tasks

import (
	"sort"
	"time"

	"travelapp/internal/config"
)

// Route says where a task type goes and how it is retried.
type Route struct {
	Queue        string
	MaxRetry     int
	InitialDelay time.Duration
	Timeout      time.Duration
}

type ScheduleEntry struct {
	Cron     string
	TaskType string
	Payload  any
}

// Config is passed explicitly to every dispatcher, server and scheduler.
type Config struct {
	Routes       map[string]Route
	QueueWeights map[string]int
	Schedule     []ScheduleEntry
	ResultTTL    time.Duration
	MaxBackoff   time.Duration
}

func DefaultRoutes() map[string]Route {
	return map[string]Route{
		TypeBookingConfirmation: {Queue: QueueEmails, MaxRetry: 3, InitialDelay: 60 * time.Second, Timeout: time.Minute},
		TypeBookingReminder:     {Queue: QueueEmails, MaxRetry: 2, InitialDelay: 120 * time.Second, Timeout: time.Minute},
		TypeBookingCancellation: {Queue: QueueEmails, Timeout: time.Minute},
		TypeAdminNotification:   {Queue: QueueEmails, Timeout: time.Minute},
		TypeCleanupOldLogs:      {Queue: QueueMaintenance, Timeout: 10 * time.Minute},
		TypeDailyReminders:      {Queue: QueueMaintenance, Timeout: 10 * time.Minute},
		TypeCompleteBookings:    {Queue: QueueMaintenance, MaxRetry: 1, InitialDelay: 5 * time.Minute, Timeout: 10 * time.Minute},
		TypeBookingAnalytics:    {Queue: QueueMaintenance, Timeout: 10 * time.Minute},
	}
}

func DefaultConfig() Config {
	d := config.Default()
	return NewConfig(d.Queue, d.Maintenance)
}

// NewConfig derives routing and the periodic schedule from application config.
func NewConfig(q config.QueueConfig, m config.MaintenanceConfig) Config {
	weights := q.Queues
	if len(weights) == 0 {
		weights = map[string]int{QueueEmails: 6, QueueMaintenance: 2}
	}
	cfg := Config{
		Routes:       DefaultRoutes(),
		QueueWeights: weights,
		ResultTTL:    q.ResultTTL,
		MaxBackoff:   time.Hour,
	}

	add := func(cron, taskType string, payload any) {
		if cron == "" {
			return
		}
		cfg.Schedule = append(cfg.Schedule, ScheduleEntry{Cron: cron, TaskType: taskType, Payload: payload})
	}
	add(q.Schedule.Reminders, TypeDailyReminders, DailyReminders{LeadDays: m.ReminderLeadDays})
	add(q.Schedule.Cleanup, TypeCleanupOldLogs, CleanupOldLogs{RetentionDays: m.EmailLogRetentionDays})
	add(q.Schedule.Completion, TypeCompleteBookings, CompleteBookings{})
	add(q.Schedule.Analytics, TypeBookingAnalytics, BookingAnalytics{})
	return cfg
}

func (c Config) Route(taskType string) (Route, bool) {
	r, ok := c.Routes[taskType]
	return r, ok
}

// Queues lists every queue a route points at, sorted.
func (c Config) Queues() []string {
	seen := make(map[string]struct{})
	for _, r := range c.Routes {
		seen[r.Queue] = struct{}{}
	}
	for q := range c.QueueWeights {
		seen[q] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	sort.Strings(out)
	return out
}

// Backoff returns the delay before the next attempt: the route's initial
// delay doubled for every retry already made, capped at MaxBackoff.
func (c Config) Backoff(taskType string, retried int) time.Duration {
	r, ok := c.Route(taskType)
	if !ok || r.InitialDelay <= 0 {
		return time.Minute
	}
	d := r.InitialDelay
	for i := 0; i < retried; i++ {
		d *= 2
		if c.MaxBackoff > 0 && d >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return d
}

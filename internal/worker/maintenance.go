package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"travelapp/internal/domain/notification"
	"travelapp/internal/logger"
	"travelapp/internal/tasks"
)

func (h *Handlers) CleanupOldLogs(ctx context.Context, payload []byte) ([]byte, error) {
	var p tasks.CleanupOldLogs
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	days := p.RetentionDays
	if days <= 0 {
		days = h.opts.RetentionDays
	}
	report, err := h.cleaner.RunScheduledCleanup(ctx, notification.CleanupConfig{EmailLogRetentionDays: days})
	if err != nil {
		return nil, err
	}
	return json.Marshal(report)
}

type reminderSummary struct {
	Day      string `json:"day"`
	Found    int    `json:"found"`
	Queued   int    `json:"queued"`
	Failures int    `json:"failures"`
}

// DailyReminders fans out one reminder task per confirmed stay that starts
// in the configured lead time.
func (h *Handlers) DailyReminders(ctx context.Context, payload []byte) ([]byte, error) {
	var p tasks.DailyReminders
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	lead := p.LeadDays
	if lead <= 0 {
		lead = h.opts.ReminderLeadDays
	}

	reminders, err := h.bookings.Reminders(ctx, lead)
	if err != nil {
		return nil, err
	}
	summary := reminderSummary{
		Day:   h.now().UTC().AddDate(0, 0, lead).Format("2006-01-02"),
		Found: len(reminders),
	}
	for _, r := range reminders {
		if _, err := h.queue.Enqueue(ctx, tasks.TypeBookingReminder, r); err != nil {
			summary.Failures++
			h.log.WithFields(logrus.Fields{
				"error_class": logger.ClassNotificationEnqueue,
				"task":        tasks.TypeBookingReminder,
				"booking_id":  r.BookingID,
			}).WithError(err).Error("reminder enqueue failed")
			continue
		}
		summary.Queued++
	}
	return json.Marshal(summary)
}

func (h *Handlers) CompleteBookings(ctx context.Context, _ []byte) ([]byte, error) {
	n, err := h.bookings.CompleteFinished(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]int64{"completed": n})
}

// BookingAnalytics reports totals plus bookings created in the last day.
func (h *Handlers) BookingAnalytics(ctx context.Context, _ []byte) ([]byte, error) {
	since := h.now().Add(-24 * time.Hour)
	stats, err := h.bookings.Stats(ctx, since)
	if err != nil {
		return nil, err
	}
	h.log.WithFields(logrus.Fields{
		"total":             stats.Total,
		"created_since":     stats.CreatedSince,
		"approved_listings": stats.ApprovedListings,
	}).Info("booking analytics processed")
	return json.Marshal(stats)
}

// Package worker implements the background task handlers: transactional
// emails and the periodic maintenance sweeps.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelapp/internal/domain"
	"travelapp/internal/domain/booking"
	"travelapp/internal/domain/notification"
	"travelapp/internal/logger"
	"travelapp/internal/mailer"
	"travelapp/internal/metrics"
	"travelapp/internal/tasks"
)

type EmailLog interface {
	Record(ctx context.Context, entry *domain.EmailLog) error
}

type Bookings interface {
	CompleteFinished(ctx context.Context) (int64, error)
	Reminders(ctx context.Context, daysAhead int) ([]tasks.BookingReminder, error)
	Stats(ctx context.Context, since time.Time) (*booking.Stats, error)
}

type Cleaner interface {
	RunScheduledCleanup(ctx context.Context, cfg notification.CleanupConfig) (notification.CleanupReport, error)
}

type Options struct {
	Company          string
	AdminEmails      []string
	SubjectPrefix    string
	ReminderLeadDays int
	RetentionDays    int
}

type Handlers struct {
	sender   mailer.Sender
	logs     EmailLog
	bookings Bookings
	queue    tasks.Enqueuer
	cleaner  Cleaner
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	opts     Options
	tpl      *templates
	now      func() time.Time
}

type Deps struct {
	Sender   mailer.Sender
	EmailLog EmailLog
	Bookings Bookings
	Queue    tasks.Enqueuer
	Cleaner  Cleaner
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

func New(d Deps, opts Options) (*Handlers, error) {
	tpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	if opts.Company == "" {
		opts.Company = "Travel App"
	}
	if opts.ReminderLeadDays <= 0 {
		opts.ReminderLeadDays = 1
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = 30
	}
	return &Handlers{
		sender:   d.Sender,
		logs:     d.EmailLog,
		bookings: d.Bookings,
		queue:    d.Queue,
		cleaner:  d.Cleaner,
		metrics:  d.Metrics,
		log:      d.Log,
		opts:     opts,
		tpl:      tpl,
		now:      time.Now,
	}, nil
}

// Register binds every task type to its handler.
func (h *Handlers) Register(reg tasks.Registry) {
	for taskType, fn := range map[string]tasks.HandlerFunc{
		tasks.TypeBookingConfirmation: h.BookingConfirmation,
		tasks.TypeBookingReminder:     h.BookingReminder,
		tasks.TypeBookingCancellation: h.BookingCancellation,
		tasks.TypeAdminNotification:   h.AdminNotification,
		tasks.TypeCleanupOldLogs:      h.CleanupOldLogs,
		tasks.TypeDailyReminders:      h.DailyReminders,
		tasks.TypeCompleteBookings:    h.CompleteBookings,
		tasks.TypeBookingAnalytics:    h.BookingAnalytics,
	} {
		reg.Handle(taskType, h.instrument(taskType, fn))
	}
}

func (h *Handlers) instrument(taskType string, fn tasks.HandlerFunc) tasks.HandlerFunc {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		started := time.Now()
		log := h.log.WithFields(logrus.Fields{
			"task":    taskType,
			"task_id": tasks.TaskIDFromContext(ctx),
			"retried": tasks.RetryCountFromContext(ctx),
		})
		log.Debug("task started")

		out, err := fn(ctx, payload)
		h.metrics.TaskProcessed(taskType, started, err)
		if err != nil {
			log.WithError(err).Warn("task failed")
			return nil, err
		}
		log.WithField("duration", time.Since(started).String()).Info("task completed")
		return out, nil
	}
}

type validatable interface {
	Validate() error
}

// decode rejects malformed payloads as permanent failures.
func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: decode payload: %v", tasks.ErrPermanent, err)
	}
	if vv, ok := v.(validatable); ok {
		return vv.Validate()
	}
	return nil
}

type sendResult struct {
	Status     string     `json:"status"`
	Recipients []string   `json:"recipients"`
	Subject    string     `json:"subject"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
}

func (h *Handlers) BookingConfirmation(ctx context.Context, payload []byte) ([]byte, error) {
	var p tasks.BookingConfirmation
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return h.sendTemplate(ctx, tasks.TypeBookingConfirmation, tplConfirmation, &p.BookingID,
		"Booking Confirmation - "+p.ListingTitle, []string{p.RecipientEmail}, h.data(&p, ""))
}

func (h *Handlers) BookingReminder(ctx context.Context, payload []byte) ([]byte, error) {
	var p tasks.BookingReminder
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return h.sendTemplate(ctx, tasks.TypeBookingReminder, tplReminder, &p.BookingID,
		"Upcoming Stay Reminder - "+p.ListingTitle, []string{p.RecipientEmail}, h.data(&p, reminderHeadline(p.DaysUntilCheckIn)))
}

func (h *Handlers) BookingCancellation(ctx context.Context, payload []byte) ([]byte, error) {
	var p tasks.BookingCancellation
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return h.sendTemplate(ctx, tasks.TypeBookingCancellation, tplCancellation, &p.BookingID,
		"Booking Cancellation - "+p.ListingTitle, []string{p.RecipientEmail}, h.data(&p, ""))
}

// AdminNotification falls back to the configured admin addresses.
func (h *Handlers) AdminNotification(ctx context.Context, payload []byte) ([]byte, error) {
	var p tasks.AdminNotification
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	recipients := p.Recipients
	if len(recipients) == 0 {
		recipients = h.opts.AdminEmails
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no admin recipients configured", tasks.ErrPermanent)
	}
	return h.sendTemplate(ctx, tasks.TypeAdminNotification, tplAdmin, nil,
		h.opts.SubjectPrefix+p.Subject, recipients, h.data(&p, ""))
}

func (h *Handlers) data(p any, headline string) emailData {
	d := emailData{P: p, Headline: headline, Company: h.opts.Company, Year: h.now().Year()}
	if len(h.opts.AdminEmails) > 0 {
		d.SupportEmail = h.opts.AdminEmails[0]
	}
	return d
}

func (h *Handlers) sendTemplate(ctx context.Context, taskType, tpl string, bookingID *uuid.UUID, subject string, to []string, data emailData) ([]byte, error) {
	text, html, err := h.tpl.render(tpl, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tasks.ErrPermanent, err)
	}
	msg := mailer.Message{To: to, Subject: subject, Text: text, HTML: html}

	sendErr := h.sender.Send(ctx, msg)
	h.metrics.EmailSent(tpl, sendErr)
	h.record(ctx, taskType, bookingID, msg, sendErr)

	if sendErr != nil {
		h.log.WithFields(logrus.Fields{
			"error_class": logger.ClassNotificationDelivery,
			"task":        taskType,
			"task_id":     tasks.TaskIDFromContext(ctx),
			"booking_id":  bookingID,
			"recipients":  strings.Join(to, ","),
		}).WithError(sendErr).Error("email delivery failed")
		if errors.Is(sendErr, tasks.ErrPermanent) {
			return nil, sendErr
		}
		return nil, fmt.Errorf("%w: %v", tasks.ErrTransientDelivery, sendErr)
	}

	return json.Marshal(sendResult{Status: "sent", Recipients: to, Subject: subject, BookingID: bookingID})
}

// record keeps one email_logs row per recipient and attempt. A failure to
// write the log never fails the task.
func (h *Handlers) record(ctx context.Context, taskType string, bookingID *uuid.UUID, msg mailer.Message, sendErr error) {
	if h.logs == nil {
		return
	}
	status, errText := domain.EmailSent, ""
	if sendErr != nil {
		status, errText = domain.EmailFailed, sendErr.Error()
	}
	for _, to := range msg.To {
		entry := &domain.EmailLog{
			TaskType:  taskType,
			TaskID:    tasks.TaskIDFromContext(ctx),
			BookingID: bookingID,
			Recipient: to,
			Subject:   msg.Subject,
			Status:    status,
			Error:     errText,
			Attempt:   tasks.RetryCountFromContext(ctx) + 1,
		}
		if err := h.logs.Record(ctx, entry); err != nil {
			h.log.WithError(err).WithField("task", taskType).Warn("email log write failed")
		}
	}
}

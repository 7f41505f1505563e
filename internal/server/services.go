// Package server assembles the domain services and the HTTP router shared by
// the binaries.
package server

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"travelapp/internal/config"
	"travelapp/internal/domain/availability"
	"travelapp/internal/domain/booking"
	"travelapp/internal/domain/listing"
	"travelapp/internal/domain/notification"
	"travelapp/internal/domain/profile"
	"travelapp/internal/domain/review"
	"travelapp/internal/mailer"
	"travelapp/internal/metrics"
	"travelapp/internal/tasks"
	"travelapp/internal/worker"
)

type Services struct {
	Profiles     *profile.Service
	Listings     *listing.Service
	Availability *availability.Engine
	Bookings     *booking.Manager
	Reviews      *review.Gate
	EmailLogs    *notification.Repository
	Cleanup      *notification.CleanupService

	listingRepo *listing.Repository
}

func NewServices(db *gorm.DB, queue tasks.Enqueuer, m *metrics.Metrics, log logrus.FieldLogger, cfg config.BookingConfig) *Services {
	profiles := profile.NewService(profile.NewRepository(db), log)
	listingRepo := listing.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	emailLogs := notification.NewRepository(db)

	return &Services{
		Profiles:     profiles,
		Listings:     listing.NewService(listingRepo, profiles, queue, log),
		Availability: availability.New(bookingRepo),
		Bookings: booking.NewManager(bookingRepo, queue, m, log, booking.Options{
			AutoConfirm:    cfg.AutoConfirm,
			EnqueueTimeout: cfg.EnqueueTimeout,
		}),
		Reviews:     review.NewGate(review.NewRepository(db), log),
		EmailLogs:   emailLogs,
		Cleanup:     notification.NewCleanupService(emailLogs, log),
		listingRepo: listingRepo,
	}
}

// Workers builds the task handlers on top of the services. queue receives the
// reminder fan-out.
func (s *Services) Workers(cfg *config.Config, sender mailer.Sender, queue tasks.Enqueuer, m *metrics.Metrics, log logrus.FieldLogger) (*worker.Handlers, error) {
	return worker.New(worker.Deps{
		Sender:   sender,
		EmailLog: s.EmailLogs,
		Bookings: s.Bookings,
		Queue:    queue,
		Cleaner:  s.Cleanup,
		Metrics:  m,
		Log:      log,
	}, worker.Options{
		Company:          cfg.App.Name,
		AdminEmails:      cfg.Mail.AdminEmails,
		SubjectPrefix:    cfg.Mail.SubjectPrefix,
		ReminderLeadDays: cfg.Maintenance.ReminderLeadDays,
		RetentionDays:    cfg.Maintenance.EmailLogRetentionDays,
	})
}

// Package booking owns the booking lifecycle: creation with availability
// checks, host confirmation, cancellation, deletion and completion.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"travelapp/internal/domain"
	"travelapp/internal/domain/availability"
	"travelapp/internal/logger"
	"travelapp/internal/metrics"
	"travelapp/internal/tasks"
)

const defaultEnqueueTimeout = 5 * time.Second

type Options struct {
	// AutoConfirm creates bookings as confirmed instead of pending.
	AutoConfirm    bool
	EnqueueTimeout time.Duration
}

type Manager struct {
	repo    *Repository
	queue   tasks.Enqueuer
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	opts    Options
	locks   *listingLocks
	now     func() time.Time
}

func NewManager(repo *Repository, queue tasks.Enqueuer, m *metrics.Metrics, log logrus.FieldLogger, opts Options) *Manager {
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = defaultEnqueueTimeout
	}
	return &Manager{
		repo:    repo,
		queue:   queue,
		metrics: m,
		log:     log,
		opts:    opts,
		locks:   newListingLocks(),
		now:     time.Now,
	}
}

// Create validates the request, checks availability under the listing lock
// and persists the booking with a price snapshot. The confirmation email is
// queued after commit; a queueing failure is reported in the result and does
// not undo the booking.
func (m *Manager) Create(ctx context.Context, guest *domain.Profile, in CreateInput) (*Result, error) {
	r := domain.NewDateRange(in.StartDate, in.EndDate)
	if !r.Valid() {
		return nil, ErrInvalidDateRange
	}
	if r.Start.Before(domain.Day(m.now())) {
		return nil, ErrStartInPast
	}
	if in.GuestCount < 1 {
		return nil, ErrInvalidGuestCount
	}

	release := m.locks.Lock(in.ListingID)
	var b *domain.Booking
	err := m.repo.InTx(ctx, func(tx *Repository) error {
		l, err := tx.LockListing(ctx, in.ListingID)
		if err != nil {
			return err
		}
		if !l.Bookable() {
			return ErrListingNotBookable
		}
		if in.GuestCount > l.MaxGuests {
			return fmt.Errorf("%w: listing allows at most %d guests", ErrCapacityExceeded, l.MaxGuests)
		}
		ok, err := availability.New(tx).IsAvailable(ctx, l.ID, r)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDatesUnavailable
		}

		status := domain.BookingPending
		if m.opts.AutoConfirm {
			status = domain.BookingConfirmed
		}
		b = &domain.Booking{
			ListingID:  l.ID,
			GuestID:    guest.ID,
			StartDate:  r.Start,
			EndDate:    r.End,
			GuestCount: in.GuestCount,
			TotalPrice: l.PricePerNight.Mul(decimal.NewFromInt(int64(r.Nights()))).Round(2),
			Status:     status,
		}
		if err := tx.Create(ctx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		b.Listing = l
		b.Guest = guest
		return nil
	})
	release()
	if err != nil {
		return nil, err
	}

	m.metrics.BookingCreated(string(b.Status))
	log := m.log.WithFields(logrus.Fields{"booking_id": b.ID, "listing_id": b.ListingID, "guest_id": b.GuestID})
	log.WithField("status", b.Status).Info("booking created")

	res := &Result{Booking: b}
	res.Notification = m.notify(ctx, log, tasks.TypeBookingConfirmation, confirmationPayload(b))
	return res, nil
}

// Confirm is a host action on a pending booking.
func (m *Manager) Confirm(ctx context.Context, actor *domain.Profile, id uuid.UUID) (*domain.Booking, error) {
	var b *domain.Booking
	err := m.repo.InTx(ctx, func(tx *Repository) error {
		var err error
		b, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !actor.Viewer().CanSeeBooking(b, b.Listing.HostID) {
			return ErrNotFound
		}
		if b.Listing.HostID != actor.ID {
			return fmt.Errorf("%w: only the listing host can confirm bookings", ErrForbidden)
		}
		if b.Status != domain.BookingPending {
			return fmt.Errorf("%w: only pending bookings can be confirmed", ErrInvalidTransition)
		}
		b.Status = domain.BookingConfirmed
		return tx.UpdateStatus(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	m.metrics.BookingTransition(string(domain.BookingConfirmed))
	m.log.WithFields(logrus.Fields{"booking_id": b.ID, "actor_id": actor.ID}).Info("booking confirmed")
	return b, nil
}

// Cancel is allowed to the guest and the listing host while the booking is
// not terminal.
func (m *Manager) Cancel(ctx context.Context, actor *domain.Profile, id uuid.UUID, reason string) (*Result, error) {
	reason = strings.TrimSpace(reason)
	var b *domain.Booking
	err := m.repo.InTx(ctx, func(tx *Repository) error {
		var err error
		b, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := m.checkManage(actor, b); err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(domain.BookingCancelled) {
			return fmt.Errorf("%w: cannot cancel %s booking", ErrInvalidTransition, b.Status)
		}
		now := m.now().UTC()
		// a finished stay is completed even before the sweep records it
		if b.CanBeCompleted(now) {
			return fmt.Errorf("%w: cannot cancel a finished stay", ErrInvalidTransition)
		}
		b.Status = domain.BookingCancelled
		b.CancellationReason = reason
		b.CancelledAt = &now
		return tx.UpdateStatus(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	m.metrics.BookingTransition(string(domain.BookingCancelled))
	log := m.log.WithFields(logrus.Fields{"booking_id": b.ID, "actor_id": actor.ID})
	log.Info("booking cancelled")

	res := &Result{Booking: b}
	res.Notification = m.notify(ctx, log, tasks.TypeBookingCancellation, cancellationPayload(b, reason))
	return res, nil
}

// Destroy deletes the booking. The cancellation email is queued first; a
// queueing failure is logged and does not block the deletion.
func (m *Manager) Destroy(ctx context.Context, actor *domain.Profile, id uuid.UUID) (Notification, error) {
	b, err := m.repo.Get(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if err := m.checkManage(actor, b); err != nil {
		return Notification{}, err
	}

	log := m.log.WithFields(logrus.Fields{"booking_id": b.ID, "actor_id": actor.ID})
	n := m.notify(ctx, log, tasks.TypeBookingCancellation, cancellationPayload(b, "Booking was deleted"))

	if err := m.repo.Delete(ctx, b.ID); err != nil {
		return n, err
	}
	log.Info("booking deleted")
	return n, nil
}

// Get hides bookings the actor may not see behind not-found.
func (m *Manager) Get(ctx context.Context, actor *domain.Profile, id uuid.UUID) (*domain.Booking, error) {
	b, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Viewer().CanSeeBooking(b, b.Listing.HostID) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (m *Manager) List(ctx context.Context, actor *domain.Profile, f ListFilter) (*Page, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
	}
	if f.StartDateFrom != nil && f.StartDateTo != nil && f.StartDateTo.Before(*f.StartDateFrom) {
		return nil, fmt.Errorf("%w: start_date_to is before start_date_from", ErrInvalidFilter)
	}
	f.normalize()

	items, total, err := m.repo.List(ctx, actor.Viewer(), f)
	if err != nil {
		return nil, err
	}
	page := &Page{Items: make([]View, 0, len(items)), Total: total, Limit: f.Limit, Offset: f.Offset}
	for i := range items {
		page.Items = append(page.Items, m.View(&items[i]))
	}
	return page, nil
}

func (m *Manager) View(b *domain.Booking) View {
	now := m.now()
	return View{
		Booking:       b,
		Nights:        b.Nights(),
		IsActive:      b.IsActive(now),
		CanBeReviewed: b.CanBeReviewed(now),
	}
}

// CompleteFinished materializes the completed status for confirmed stays
// that have ended.
func (m *Manager) CompleteFinished(ctx context.Context) (int64, error) {
	n, err := m.repo.CompleteFinished(ctx, m.now())
	if err != nil {
		return 0, err
	}
	m.metrics.BookingsCompleted(n)
	if n > 0 {
		m.log.WithField("count", n).Info("bookings completed")
	}
	return n, nil
}

// Reminders builds reminder payloads for confirmed stays starting in
// daysAhead days.
func (m *Manager) Reminders(ctx context.Context, daysAhead int) ([]tasks.BookingReminder, error) {
	day := domain.Day(m.now()).AddDate(0, 0, daysAhead)
	bookings, err := m.repo.ConfirmedStartingOn(ctx, day)
	if err != nil {
		return nil, err
	}
	out := make([]tasks.BookingReminder, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if b.Guest == nil || b.Guest.Email == "" {
			m.log.WithField("booking_id", b.ID).Warn("reminder skipped: guest has no email")
			continue
		}
		out = append(out, tasks.BookingReminder{
			BookingID:        b.ID,
			RecipientEmail:   b.Guest.Email,
			RecipientName:    b.Guest.DisplayName(),
			ListingTitle:     listingTitle(b),
			ListingCity:      listingCity(b),
			CheckIn:          b.StartDate.Format(domain.DateLayout),
			DaysUntilCheckIn: daysAhead,
		})
	}
	return out, nil
}

func (m *Manager) Stats(ctx context.Context, since time.Time) (*Stats, error) {
	return m.repo.Stats(ctx, since)
}

func (m *Manager) checkManage(actor *domain.Profile, b *domain.Booking) error {
	if !actor.Viewer().CanSeeBooking(b, b.Listing.HostID) {
		return ErrNotFound
	}
	if b.GuestID != actor.ID && b.Listing.HostID != actor.ID {
		return fmt.Errorf("%w: only the guest or the listing host can cancel", ErrForbidden)
	}
	return nil
}

func (m *Manager) notify(ctx context.Context, log logrus.FieldLogger, taskType string, payload any) Notification {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.EnqueueTimeout)
	defer cancel()

	info, err := m.queue.Enqueue(ctx, taskType, payload)
	if err != nil {
		m.metrics.EnqueueFailed(taskType)
		log.WithFields(logrus.Fields{
			"error_class": logger.ClassNotificationEnqueue,
			"task":        taskType,
		}).WithError(err).Error("notification enqueue failed")
		return Notification{Err: err}
	}
	log.WithFields(logrus.Fields{"task": taskType, "task_id": info.ID}).Debug("notification queued")
	return Notification{TaskID: info.ID}
}

func confirmationPayload(b *domain.Booking) tasks.BookingConfirmation {
	p := tasks.BookingConfirmation{
		BookingID:    b.ID,
		ListingTitle: listingTitle(b),
		ListingCity:  listingCity(b),
		CheckIn:      b.StartDate.Format(domain.DateLayout),
		CheckOut:     b.EndDate.Format(domain.DateLayout),
		Nights:       b.Nights(),
		GuestCount:   b.GuestCount,
		TotalPrice:   b.TotalPrice.StringFixed(2),
		Status:       string(b.Status),
	}
	if b.Guest != nil {
		p.RecipientEmail = b.Guest.Email
		p.RecipientName = b.Guest.DisplayName()
	}
	return p
}

func cancellationPayload(b *domain.Booking, reason string) tasks.BookingCancellation {
	p := tasks.BookingCancellation{
		BookingID:    b.ID,
		ListingTitle: listingTitle(b),
		CheckIn:      b.StartDate.Format(domain.DateLayout),
		CheckOut:     b.EndDate.Format(domain.DateLayout),
		Reason:       reason,
	}
	if b.Guest != nil {
		p.RecipientEmail = b.Guest.Email
		p.RecipientName = b.Guest.DisplayName()
	}
	return p
}

func listingTitle(b *domain.Booking) string {
	if b.Listing == nil {
		return ""
	}
	return b.Listing.Title
}

func listingCity(b *domain.Booking) string {
	if b.Listing == nil {
		return ""
	}
	return b.Listing.City
}

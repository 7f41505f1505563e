package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ActiveBookingStatuses are the statuses that occupy the calendar.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

func (s BookingStatus) BlocksAvailability() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ListingID          uuid.UUID       `json:"listing_id" gorm:"type:uuid;not null;index:idx_bookings_listing_dates,priority:1"`
	GuestID            uuid.UUID       `json:"guest_id" gorm:"type:uuid;not null;index"`
	StartDate          time.Time       `json:"start_date" gorm:"not null;index:idx_bookings_listing_dates,priority:2"`
	EndDate            time.Time       `json:"end_date" gorm:"not null;index:idx_bookings_listing_dates,priority:3"`
	GuestCount         int             `json:"guest_count" gorm:"not null;default:1"`
	TotalPrice         decimal.Decimal `json:"total_price" gorm:"type:numeric(10,2);not null"`
	Status             BookingStatus   `json:"status" gorm:"size:10;not null;default:pending;index"`
	CancellationReason string          `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Guest   *Profile `json:"guest,omitempty" gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE"`
}

func (b *Booking) Range() DateRange {
	return NewDateRange(b.StartDate, b.EndDate)
}

func (b *Booking) Nights() int {
	return b.Range().Nights()
}

// IsActive reports a confirmed stay that is currently in progress.
func (b *Booking) IsActive(now time.Time) bool {
	return b.Status == BookingConfirmed && b.Range().Covers(now)
}

// IsFinished reports whether the check-out day lies before today.
func (b *Booking) IsFinished(now time.Time) bool {
	return Day(b.EndDate).Before(Day(now))
}

func (b *Booking) CanBeCompleted(now time.Time) bool {
	return b.Status == BookingConfirmed && b.IsFinished(now)
}

func (b *Booking) CanBeReviewed(now time.Time) bool {
	return b.Status == BookingCompleted && b.IsFinished(now)
}

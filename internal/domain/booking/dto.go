package booking

import (
	"time"

	"github.com/google/uuid"

	"travelapp/internal/domain"
)

type CreateRequest struct {
	StartDate  string `json:"start_date" binding:"required" validate:"required"`
	EndDate    string `json:"end_date" binding:"required" validate:"required"`
	GuestCount *int   `json:"guest_count"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CreateInput is a booking request with parsed dates.
type CreateInput struct {
	ListingID  uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	GuestCount int
}

type ListFilter struct {
	Status        domain.BookingStatus
	ListingID     *uuid.UUID
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	Ordering      string
	Limit         int
	Offset        int
}

// View adds the derived read-time properties to a booking.
type View struct {
	*domain.Booking
	Nights        int  `json:"nights"`
	IsActive      bool `json:"is_active"`
	CanBeReviewed bool `json:"can_be_reviewed"`
}

type Page struct {
	Items  []View `json:"items"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Notification reports what happened to the side-effect email of an action.
type Notification struct {
	TaskID string `json:"task_id,omitempty"`
	Err    error  `json:"-"`
}

func (n Notification) Queued() bool {
	return n.Err == nil
}

type Result struct {
	Booking      *domain.Booking
	Notification Notification
}

// Stats is the snapshot produced by the analytics task.
type Stats struct {
	ByStatus         map[domain.BookingStatus]int64 `json:"by_status"`
	Total            int64                          `json:"total"`
	ApprovedListings int64                          `json:"approved_listings"`
	CreatedSince     int64                          `json:"created_since"`
	Since            string                         `json:"since"`
}

func (f *ListFilter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

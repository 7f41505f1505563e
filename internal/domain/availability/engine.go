// Package availability answers whether a listing is free for a date range.
package availability

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"travelapp/internal/domain"
)

var ErrInvalidRange = domain.NewError(domain.KindValidation, "INVALID_DATE_RANGE", "end date must be after start date")

// BookingSource returns candidate bookings for a listing whose dates may
// overlap r. The engine re-applies the overlap and status rules itself.
type BookingSource interface {
	ActiveOverlapping(ctx context.Context, listingID uuid.UUID, r domain.DateRange) ([]domain.Booking, error)
}

type Engine struct {
	bookings BookingSource
}

func New(bookings BookingSource) *Engine {
	return &Engine{bookings: bookings}
}

// ConflictingBookings returns the pending or confirmed bookings of the listing
// that overlap r, ordered by start date. Zero-night ranges are rejected.
func (e *Engine) ConflictingBookings(ctx context.Context, listingID uuid.UUID, r domain.DateRange) ([]domain.Booking, error) {
	if !r.Valid() {
		return nil, ErrInvalidRange
	}
	candidates, err := e.bookings.ActiveOverlapping(ctx, listingID, r)
	if err != nil {
		return nil, err
	}

	conflicts := make([]domain.Booking, 0, len(candidates))
	for _, b := range candidates {
		if b.ListingID == listingID && b.Status.BlocksAvailability() && b.Range().Overlaps(r) {
			conflicts = append(conflicts, b)
		}
	}
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].StartDate.Before(conflicts[j].StartDate)
	})
	return conflicts, nil
}

func (e *Engine) IsAvailable(ctx context.Context, listingID uuid.UUID, r domain.DateRange) (bool, error) {
	conflicts, err := e.ConflictingBookings(ctx, listingID, r)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

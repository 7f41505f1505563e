package booking

import (
	"travelapp/internal/domain"
	"travelapp/internal/domain/availability"
)

var (
	ErrNotFound        = domain.NewError(domain.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrListingNotFound = domain.NewError(domain.KindNotFound, "LISTING_NOT_FOUND", "listing not found")

	ErrInvalidDateRange  = availability.ErrInvalidRange
	ErrStartInPast       = domain.NewError(domain.KindValidation, "START_DATE_IN_PAST", "start date cannot be in the past")
	ErrInvalidGuestCount = domain.NewError(domain.KindValidation, "INVALID_GUEST_COUNT", "guest count must be at least 1")
	ErrInvalidFilter     = domain.NewError(domain.KindValidation, "INVALID_FILTER", "invalid booking filter")

	ErrCapacityExceeded   = domain.NewError(domain.KindEligibility, "GUEST_COUNT_EXCEEDS_CAPACITY", "guest count exceeds listing capacity")
	ErrDatesUnavailable   = domain.NewError(domain.KindEligibility, "DATES_UNAVAILABLE", "listing is not available for the selected dates")
	ErrListingNotBookable = domain.NewError(domain.KindEligibility, "LISTING_NOT_BOOKABLE", "listing is not open for bookings")

	ErrForbidden         = domain.NewError(domain.KindPermission, "FORBIDDEN", "you are not allowed to manage this booking")
	ErrInvalidTransition = domain.NewError(domain.KindInvalidState, "INVALID_STATUS_TRANSITION", "booking status does not allow this action")
)

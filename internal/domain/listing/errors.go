package listing

import "travelapp/internal/domain"

var (
	ErrNotFound      = domain.NewError(domain.KindNotFound, "LISTING_NOT_FOUND", "listing not found")
	ErrForbidden     = domain.NewError(domain.KindPermission, "FORBIDDEN", "only the listing's host can change it")
	ErrDeleteDenied  = domain.NewError(domain.KindPermission, "FORBIDDEN", "only the listing's host or an admin can delete it")
	ErrAdminOnly     = domain.NewError(domain.KindPermission, "FORBIDDEN", "only admins can moderate listings")
	ErrInvalidPrice  = domain.NewError(domain.KindValidation, "INVALID_PRICE", "price per night must be greater than zero")
	ErrInvalidStatus = domain.NewError(domain.KindValidation, "INVALID_STATUS", "unknown listing status")
	ErrInvalidFilter = domain.NewError(domain.KindValidation, "INVALID_FILTER", "invalid search filter")

	ErrHasActiveBookings = domain.NewError(domain.KindInvalidState, "LISTING_HAS_ACTIVE_BOOKINGS",
		"listing has pending or confirmed stays that have not ended")
)

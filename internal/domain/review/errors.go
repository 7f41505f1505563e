package review

import "travelapp/internal/domain"

var (
	ErrNotFound        = domain.NewError(domain.KindNotFound, "REVIEW_NOT_FOUND", "review not found")
	ErrBookingNotFound = domain.NewError(domain.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")

	ErrInvalidRating = domain.NewError(domain.KindValidation, "INVALID_RATING", "rating must be between 1 and 5")
	ErrEmptyResponse = domain.NewError(domain.KindValidation, "EMPTY_RESPONSE", "host_response is required")
	ErrInvalidFilter = domain.NewError(domain.KindValidation, "INVALID_FILTER", "invalid review filter")

	ErrNotReviewable   = domain.NewError(domain.KindEligibility, "BOOKING_NOT_COMPLETED", "only completed stays can be reviewed")
	ErrAlreadyReviewed = domain.NewError(domain.KindEligibility, "ALREADY_REVIEWED", "this booking already has a review")
	ErrNotBookingGuest = domain.NewError(domain.KindEligibility, "NOT_BOOKING_GUEST", "only the guest of the booking can review it")
	ErrListingMismatch = domain.NewError(domain.KindEligibility, "LISTING_MISMATCH", "listing does not match the booking")

	ErrForbidden = domain.NewError(domain.KindPermission, "FORBIDDEN", "only the listing host can respond to reviews")
)

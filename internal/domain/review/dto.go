package review

import (
	"github.com/google/uuid"

	"travelapp/internal/domain"
)

type CreateRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment" validate:"omitempty,max=2000"`
}

type RespondRequest struct {
	HostResponse string `json:"host_response" validate:"max=2000"`
}

type ListFilter struct {
	ListingID *uuid.UUID
	Rating    int
	Ordering  string
	Limit     int
	Offset    int
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

type View struct {
	*domain.Review
	HasHostResponse bool `json:"has_host_response"`
}

func NewView(r *domain.Review) View {
	return View{Review: r, HasHostResponse: r.HasHostResponse()}
}

type Page struct {
	Items  []View `json:"items"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

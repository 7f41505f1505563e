package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"travelapp/internal/domain"
)

type CreateRequest struct {
	Title         string              `json:"title" validate:"required,max=200"`
	Description   string              `json:"description" validate:"required"`
	PropertyType  domain.PropertyType `json:"property_type" validate:"required,oneof=apartment house room villa condo townhouse cottage cabin loft other"`
	RoomType      domain.RoomType     `json:"room_type" validate:"required,oneof=entire_place private_room shared_room hotel_room"`
	City          string              `json:"city" validate:"required,max=100"`
	County        string              `json:"county" validate:"required,max=100"`
	PostalCode    string              `json:"postal_code" validate:"max=20"`
	Latitude      *float64            `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64            `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Bedrooms      int                 `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int                 `json:"bathrooms" validate:"gte=0"`
	MaxGuests     int                 `json:"max_guests" validate:"gte=1"`
	PricePerNight decimal.Decimal     `json:"price_per_night"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Title         *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	City          *string          `json:"city" validate:"omitempty,max=100"`
	County        *string          `json:"county" validate:"omitempty,max=100"`
	Bedrooms      *int             `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms     *int             `json:"bathrooms" validate:"omitempty,gte=0"`
	MaxGuests     *int             `json:"max_guests" validate:"omitempty,gte=1"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`
}

type StatusRequest struct {
	Status domain.ListingStatus `json:"status" binding:"required"`
}

// SearchFilter holds the search parameters. Only approved listings are
// returned, except to a host filtering on their own listings or to an admin
// filtering on any host.
type SearchFilter struct {
	// Query matches title, description, city or county.
	Query         string
	HostID        *uuid.UUID
	City          string
	County        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinBedrooms   int
	MinBathrooms  int
	MinGuests     int
	PropertyType  domain.PropertyType
	RoomType      domain.RoomType
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	Ordering      string
	Limit         int
	Offset        int

	allStatuses bool
}

type Page struct {
	Items  []domain.Listing `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

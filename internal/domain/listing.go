package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingPending   ListingStatus = "pending"
	ListingApproved  ListingStatus = "approved"
	ListingRejected  ListingStatus = "rejected"
	ListingSuspended ListingStatus = "suspended"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingPending, ListingApproved, ListingRejected, ListingSuspended:
		return true
	}
	return false
}

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyRoom      PropertyType = "room"
	PropertyVilla     PropertyType = "villa"
	PropertyCondo     PropertyType = "condo"
	PropertyTownhouse PropertyType = "townhouse"
	PropertyCottage   PropertyType = "cottage"
	PropertyCabin     PropertyType = "cabin"
	PropertyLoft      PropertyType = "loft"
	PropertyOther     PropertyType = "other"
)

type RoomType string

const (
	RoomEntirePlace RoomType = "entire_place"
	RoomPrivate     RoomType = "private_room"
	RoomShared      RoomType = "shared_room"
	RoomHotel       RoomType = "hotel_room"
)

type Listing struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	HostID        uuid.UUID       `json:"host_id" gorm:"type:uuid;not null;index"`
	Title         string          `json:"title" gorm:"size:200;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	PropertyType  PropertyType    `json:"property_type" gorm:"size:20;not null;index"`
	RoomType      RoomType        `json:"room_type" gorm:"size:20;not null"`
	City          string          `json:"city" gorm:"size:100;index"`
	County        string          `json:"county" gorm:"size:100"`
	PostalCode    string          `json:"postal_code,omitempty" gorm:"size:20"`
	Latitude      *float64        `json:"latitude,omitempty"`
	Longitude     *float64        `json:"longitude,omitempty"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	MaxGuests     int             `json:"max_guests" gorm:"not null"`
	PricePerNight decimal.Decimal `json:"price_per_night" gorm:"type:numeric(10,2);not null;index"`
	Status        ListingStatus   `json:"status" gorm:"size:10;not null;default:pending;index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Host *Profile `json:"host,omitempty" gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE"`

	// Derived from reviews, filled by the listing repository.
	AverageRating *float64 `json:"average_rating" gorm:"-"`
	ReviewCount   int64    `json:"review_count" gorm:"-"`
}

func (l *Listing) Bookable() bool {
	return l.Status == ListingApproved
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID      uuid.UUID  `json:"booking_id" gorm:"type:uuid;not null;uniqueIndex"`
	ListingID      uuid.UUID  `json:"listing_id" gorm:"type:uuid;not null;index"`
	AuthorID       uuid.UUID  `json:"author_id" gorm:"type:uuid;not null;index"`
	Rating         int        `json:"rating" gorm:"not null"`
	Comment        *string    `json:"comment,omitempty" gorm:"type:text"`
	HostResponse   *string    `json:"host_response,omitempty" gorm:"type:text"`
	HostResponseAt *time.Time `json:"host_response_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Booking *Booking `json:"-" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Listing *Listing `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Author  *Profile `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (r *Review) HasHostResponse() bool {
	return r.HostResponse != nil && *r.HostResponse != ""
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

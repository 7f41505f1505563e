package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelapp/internal/domain"
)

func Profile(t *testing.T, db *gorm.DB, role domain.Role) *domain.Profile {
	t.Helper()
	id := uuid.New()
	p := &domain.Profile{
		ID:       id,
		Email:    id.String()[:8] + "@example.com",
		FullName: "Test " + string(role),
		Role:     role,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

// ListingOpts overrides fixture defaults; zero values keep the default.
type ListingOpts struct {
	Title     string
	City      string
	Price     string
	MaxGuests int
	Bedrooms  int
	Status    domain.ListingStatus
}

func Listing(t *testing.T, db *gorm.DB, hostID uuid.UUID, opts ListingOpts) *domain.Listing {
	t.Helper()
	if opts.Title == "" {
		opts.Title = "Cosy flat"
	}
	if opts.City == "" {
		opts.City = "Nairobi"
	}
	if opts.Price == "" {
		opts.Price = "100.00"
	}
	if opts.MaxGuests == 0 {
		opts.MaxGuests = 4
	}
	if opts.Bedrooms == 0 {
		opts.Bedrooms = 2
	}
	if opts.Status == "" {
		opts.Status = domain.ListingApproved
	}
	l := &domain.Listing{
		HostID:        hostID,
		Title:         opts.Title,
		Description:   "A place to stay",
		PropertyType:  domain.PropertyApartment,
		RoomType:      domain.RoomEntirePlace,
		City:          opts.City,
		County:        "Nairobi County",
		Bedrooms:      opts.Bedrooms,
		Bathrooms:     1,
		MaxGuests:     opts.MaxGuests,
		PricePerNight: decimal.RequireFromString(opts.Price),
		Status:        opts.Status,
	}
	if err := db.Omit(clause.Associations).Create(l).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

// Booking inserts a booking directly, bypassing availability checks.
func Booking(t *testing.T, db *gorm.DB, listing *domain.Listing, guestID uuid.UUID, start, end string, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	r := domain.NewDateRange(Date(t, start), Date(t, end))
	b := &domain.Booking{
		ListingID:  listing.ID,
		GuestID:    guestID,
		StartDate:  r.Start,
		EndDate:    r.End,
		GuestCount: 1,
		TotalPrice: listing.PricePerNight.Mul(decimal.NewFromInt(int64(r.Nights()))),
		Status:     status,
	}
	if err := db.Omit(clause.Associations).Create(b).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// Clock returns a fixed "now" for services that accept a clock.
func Clock(t *testing.T, s string) func() time.Time {
	d := Date(t, s).Add(9 * time.Hour)
	return func() time.Time { return d }
}

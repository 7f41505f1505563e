package domain

import "github.com/google/uuid"

// Viewer identifies who is reading. Visibility is derived from Access, never
// from the role string directly.
type Viewer struct {
	ProfileID uuid.UUID
	Role      Role
}

// Access is the capability set used to scope bookings and reviews.
type Access struct {
	All         bool // every record
	Own         bool // records the viewer authored (stays, reviews)
	OwnListings bool // records attached to listings the viewer hosts
}

func (v Viewer) Access() Access {
	switch v.Role {
	case RoleAdmin:
		return Access{All: true}
	case RoleHost:
		return Access{Own: true, OwnListings: true}
	case RoleGuest:
		return Access{Own: true}
	}
	return Access{}
}

func (v Viewer) CanSeeBooking(b *Booking, listingHostID uuid.UUID) bool {
	a := v.Access()
	switch {
	case a.All:
		return true
	case a.Own && b.GuestID == v.ProfileID:
		return true
	case a.OwnListings && listingHostID == v.ProfileID:
		return true
	}
	return false
}

func (v Viewer) CanSeeReview(r *Review, listingHostID uuid.UUID) bool {
	a := v.Access()
	switch {
	case a.All:
		return true
	case a.Own && r.AuthorID == v.ProfileID:
		return true
	case a.OwnListings && listingHostID == v.ProfileID:
		return true
	}
	return false
}

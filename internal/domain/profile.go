package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleHost, RoleAdmin:
		return true
	}
	return false
}

// Profile is the local projection of an identity issued by the external
// identity provider. ID equals the provider's subject.
type Profile struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email         string    `json:"email" gorm:"size:254;index"`
	FullName      string    `json:"full_name" gorm:"size:200"`
	Role          Role      `json:"role" gorm:"size:10;not null;default:guest;index"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

func (p *Profile) Viewer() Viewer {
	return Viewer{ProfileID: p.ID, Role: p.Role}
}

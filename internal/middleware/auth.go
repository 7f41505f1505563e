package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelapp/internal/domain"
	"travelapp/internal/pkg/jwt"
	"travelapp/internal/pkg/response"
)

const profileKey = "profile"

// ProfileResolver returns the local profile for a verified identity, creating
// it on first sight.
type ProfileResolver interface {
	Resolve(ctx context.Context, id uuid.UUID, email, name string) (*domain.Profile, error)
}

// JWTAuth verifies the bearer token issued by the identity provider and loads
// the caller's profile into the context.
func JWTAuth(tokens *jwt.Service, profiles ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			c.Abort()
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must use the Bearer scheme")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}
		id, err := claims.SubjectID()
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token subject is not a valid id")
			c.Abort()
			return
		}

		profile, err := profiles.Resolve(c.Request.Context(), id, claims.Email, claims.Name)
		if err != nil {
			response.Fail(c, err, gin.H{"profile_id": id.String()})
			c.Abort()
			return
		}

		SetProfile(c, profile)
		c.Next()
	}
}

func SetProfile(c *gin.Context, p *domain.Profile) {
	c.Set(profileKey, p)
	c.Set("user_id", p.ID.String())
	c.Set("role", string(p.Role))
}

func CurrentProfile(c *gin.Context) (*domain.Profile, bool) {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.Profile)
	return p, ok && p != nil
}

// MustProfile writes a 401 and returns false when no profile is attached.
func MustProfile(c *gin.Context) (*domain.Profile, bool) {
	p, ok := CurrentProfile(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return nil, false
	}
	return p, true
}

// OptionalJWTAuth authenticates when an Authorization header is present and
// lets anonymous requests through otherwise.
func OptionalJWTAuth(tokens *jwt.Service, profiles ProfileResolver) gin.HandlerFunc {
	auth := JWTAuth(tokens, profiles)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		auth(c)
	}
}

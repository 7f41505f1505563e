package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelapp/internal/domain"
)

func TestRateLimit_PerProfile(t *testing.T) {
	store, err := NewLimiterStore(nil, "test")
	require.NoError(t, err)
	limit, err := RateLimit(store, "2-M")
	require.NoError(t, err)

	alice := &domain.Profile{ID: uuid.New(), Role: domain.RoleGuest}
	bob := &domain.Profile{ID: uuid.New(), Role: domain.RoleGuest}
	current := alice

	router := gin.New()
	router.POST("/bookings", func(c *gin.Context) { SetProfile(c, current); c.Next() }, limit, func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	do := func() int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, do())
	assert.Equal(t, http.StatusCreated, do())
	assert.Equal(t, http.StatusTooManyRequests, do())

	current = bob
	assert.Equal(t, http.StatusCreated, do())
}

func TestRateLimit_InvalidRate(t *testing.T) {
	store, err := NewLimiterStore(nil, "test")
	require.NoError(t, err)
	_, err = RateLimit(store, "lots")
	assert.Error(t, err)
}

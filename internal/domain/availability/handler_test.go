package availability_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelapp/internal/database/dbtest"
	"travelapp/internal/domain"
	"travelapp/internal/domain/availability"
	"travelapp/internal/domain/booking"
	"travelapp/internal/domain/listing"
)

func TestHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	host := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{})
	dbtest.Booking(t, db, l, guest.ID, "2024-03-01", "2024-03-05", domain.BookingConfirmed)
	dbtest.Booking(t, db, l, guest.ID, "2024-03-06", "2024-03-08", domain.BookingCancelled)

	engine := availability.New(booking.NewRepository(db))
	r := gin.New()
	availability.NewHandler(engine, listing.NewRepository(db)).RegisterRoutes(r.Group("/api/v1"))

	base := "/api/v1/listings/" + l.ID.String() + "/availability"
	cases := []struct {
		name      string
		url       string
		code      int
		available bool
		conflicts int
		errCode   string
	}{
		{"overlap", base + "?start_date=2024-03-04&end_date=2024-03-06", http.StatusOK, false, 1, ""},
		{"back to back", base + "?start_date=2024-03-05&end_date=2024-03-06", http.StatusOK, true, 0, ""},
		{"cancelled ignored", base + "?start_date=2024-03-06&end_date=2024-03-08", http.StatusOK, true, 0, ""},
		{"malformed date", base + "?start_date=2024-13-01&end_date=2024-03-06", http.StatusBadRequest, false, 0, "INVALID_DATE"},
		{"missing params", base + "?start_date=2024-03-01", http.StatusBadRequest, false, 0, "VALIDATION_ERROR"},
		{"zero nights", base + "?start_date=2024-03-06&end_date=2024-03-06", http.StatusBadRequest, false, 0, "INVALID_DATE_RANGE"},
		{"unknown listing", "/api/v1/listings/" + uuid.NewString() + "/availability?start_date=2024-03-01&end_date=2024-03-02", http.StatusNotFound, false, 0, "LISTING_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))
			require.Equal(t, tc.code, w.Code, w.Body.String())

			var body struct {
				Data  availability.Result `json:"data"`
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.errCode != "" {
				assert.Equal(t, tc.errCode, body.Error.Code)
				return
			}
			assert.Equal(t, tc.available, body.Data.Available)
			assert.Equal(t, tc.conflicts, body.Data.ConflictingBookings)
		})
	}
}

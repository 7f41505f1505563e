package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDateRange_Overlaps(t *testing.T) {
	base := NewDateRange(mustDate(t, "2024-03-01"), mustDate(t, "2024-03-05"))

	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"identical", "2024-03-01", "2024-03-05", true},
		{"inside", "2024-03-02", "2024-03-03", true},
		{"straddles start", "2024-02-27", "2024-03-02", true},
		{"straddles end", "2024-03-04", "2024-03-08", true},
		{"back to back after", "2024-03-05", "2024-03-07", false},
		{"back to back before", "2024-02-25", "2024-03-01", false},
		{"disjoint", "2024-04-01", "2024-04-03", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := NewDateRange(mustDate(t, tc.start), mustDate(t, tc.end))
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestDateRange_Nights(t *testing.T) {
	r := NewDateRange(mustDate(t, "2024-03-01"), mustDate(t, "2024-03-04"))
	assert.True(t, r.Valid())
	assert.Equal(t, 3, r.Nights())

	zero := NewDateRange(mustDate(t, "2024-03-01"), mustDate(t, "2024-03-01"))
	assert.False(t, zero.Valid())
	assert.Equal(t, 0, zero.Nights())
}

func TestDateRange_NormalizesTimeOfDay(t *testing.T) {
	start := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, NewDateRange(start, end).Nights())
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("03/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransitionTo(BookingConfirmed))
	assert.True(t, BookingPending.CanTransitionTo(BookingCancelled))
	assert.True(t, BookingConfirmed.CanTransitionTo(BookingCancelled))
	assert.True(t, BookingConfirmed.CanTransitionTo(BookingCompleted))

	assert.False(t, BookingPending.CanTransitionTo(BookingCompleted))
	assert.False(t, BookingConfirmed.CanTransitionTo(BookingConfirmed))
	for _, next := range []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted} {
		assert.False(t, BookingCancelled.CanTransitionTo(next))
		assert.False(t, BookingCompleted.CanTransitionTo(next))
	}
}

func TestBooking_CanBeReviewed(t *testing.T) {
	now := mustDate(t, "2024-03-10")
	b := &Booking{
		StartDate: mustDate(t, "2024-03-01"),
		EndDate:   mustDate(t, "2024-03-05"),
		Status:    BookingCompleted,
	}
	assert.True(t, b.CanBeReviewed(now))

	b.Status = BookingConfirmed
	assert.False(t, b.CanBeReviewed(now))
	assert.True(t, b.CanBeCompleted(now))

	b.Status = BookingCompleted
	assert.False(t, b.CanBeReviewed(mustDate(t, "2024-03-05")))
}

func TestViewer_Access(t *testing.T) {
	guest := Viewer{ProfileID: uuid.New(), Role: RoleGuest}
	host := Viewer{ProfileID: uuid.New(), Role: RoleHost}
	admin := Viewer{ProfileID: uuid.New(), Role: RoleAdmin}
	stranger := Viewer{ProfileID: uuid.New(), Role: Role("unknown")}

	b := &Booking{GuestID: guest.ProfileID}
	assert.True(t, guest.CanSeeBooking(b, host.ProfileID))
	assert.True(t, host.CanSeeBooking(b, host.ProfileID))
	assert.True(t, admin.CanSeeBooking(b, host.ProfileID))
	assert.False(t, stranger.CanSeeBooking(b, host.ProfileID))

	otherHost := Viewer{ProfileID: uuid.New(), Role: RoleHost}
	assert.False(t, otherHost.CanSeeBooking(b, host.ProfileID))
}

func TestError_IsMatchesKindAndCode(t *testing.T) {
	coded := NewError(KindEligibility, "DATES_UNAVAILABLE", "dates unavailable")
	assert.ErrorIs(t, coded, ErrEligibility)
	assert.NotErrorIs(t, coded, ErrValidation)
	assert.ErrorIs(t, coded, NewError(KindEligibility, "DATES_UNAVAILABLE", "other text"))
	assert.NotErrorIs(t, coded, NewError(KindEligibility, "ALREADY_REVIEWED", ""))
}

package review

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"travelapp/internal/database/dbtest"
	"travelapp/internal/domain"
	"travelapp/internal/logger"
)

type fixture struct {
	db      *gorm.DB
	gate    *Gate
	host    *domain.Profile
	guest   *domain.Profile
	listing *domain.Listing
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	g := NewGate(NewRepository(db), logger.Discard())
	g.now = dbtest.Clock(t, "2024-03-10")
	host := dbtest.Profile(t, db, domain.RoleHost)
	return &fixture{
		db:      db,
		gate:    g,
		host:    host,
		guest:   dbtest.Profile(t, db, domain.RoleGuest),
		listing: dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{}),
	}
}

func (f *fixture) stay(t *testing.T, status domain.BookingStatus, start, end string) *domain.Booking {
	return dbtest.Booking(t, f.db, f.listing, f.guest.ID, start, end, status)
}

func (f *fixture) request(b *domain.Booking, rating int) CreateRequest {
	comment := " Lovely place "
	return CreateRequest{BookingID: b.ID, ListingID: b.ListingID, Rating: rating, Comment: &comment}
}

func TestGate_CreateOncePerCompletedBooking(t *testing.T) {
	f := newFixture(t)
	b := f.stay(t, domain.BookingCompleted, "2024-03-01", "2024-03-05")

	rv, err := f.gate.Create(context.Background(), f.guest, f.request(b, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, rv.Rating)
	assert.Equal(t, f.guest.ID, rv.AuthorID)
	require.NotNil(t, rv.Comment)
	assert.Equal(t, "Lovely place", *rv.Comment)

	_, err = f.gate.Create(context.Background(), f.guest, f.request(b, 4))
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.ErrorIs(t, err, domain.ErrEligibility)
}

func TestGate_CreateRejections(t *testing.T) {
	f := newFixture(t)
	completed := f.stay(t, domain.BookingCompleted, "2024-03-01", "2024-03-05")
	confirmed := f.stay(t, domain.BookingConfirmed, "2024-02-01", "2024-02-05")
	pending := f.stay(t, domain.BookingPending, "2024-04-01", "2024-04-05")
	// completed but checking out today
	endsToday := f.stay(t, domain.BookingCompleted, "2024-03-07", "2024-03-10")
	stranger := dbtest.Profile(t, f.db, domain.RoleGuest)
	otherListing := dbtest.Listing(t, f.db, f.host.ID, dbtest.ListingOpts{})

	wrongListing := f.request(completed, 5)
	wrongListing.ListingID = otherListing.ID
	unknown := f.request(completed, 5)
	unknown.BookingID = uuid.New()

	cases := []struct {
		name   string
		author *domain.Profile
		req    CreateRequest
		want   error
		kind   error
	}{
		{"rating too low", f.guest, f.request(completed, 0), ErrInvalidRating, domain.ErrValidation},
		{"rating too high", f.guest, f.request(completed, 6), ErrInvalidRating, domain.ErrValidation},
		{"unknown booking", f.guest, unknown, ErrBookingNotFound, domain.ErrNotFound},
		{"confirmed booking", f.guest, f.request(confirmed, 5), ErrNotReviewable, domain.ErrEligibility},
		{"pending booking", f.guest, f.request(pending, 5), ErrNotReviewable, domain.ErrEligibility},
		{"stay ends today", f.guest, f.request(endsToday, 5), ErrNotReviewable, domain.ErrEligibility},
		{"not the guest", stranger, f.request(completed, 5), ErrNotBookingGuest, domain.ErrEligibility},
		{"listing mismatch", f.guest, wrongListing, ErrListingMismatch, domain.ErrEligibility},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.gate.Create(context.Background(), tc.author, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&domain.Review{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestGate_ConcurrentCreatesStoreOneReview(t *testing.T) {
	f := newFixture(t)
	b := f.stay(t, domain.BookingCompleted, "2024-03-01", "2024-03-05")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.gate.Create(context.Background(), f.guest, f.request(b, 5)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
}

func TestGate_Respond(t *testing.T) {
	f := newFixture(t)
	b := f.stay(t, domain.BookingCompleted, "2024-03-01", "2024-03-05")
	rv, err := f.gate.Create(context.Background(), f.guest, f.request(b, 4))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.gate.Respond(ctx, f.guest, rv.ID, "thanks")
	assert.ErrorIs(t, err, ErrForbidden)

	stranger := dbtest.Profile(t, f.db, domain.RoleHost)
	_, err = f.gate.Respond(ctx, stranger, rv.ID, "thanks")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.gate.Respond(ctx, f.host, rv.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.gate.Respond(ctx, f.host, uuid.New(), "thanks")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := f.gate.Respond(ctx, f.host, rv.ID, "Thanks for staying")
	require.NoError(t, err)
	require.NotNil(t, first.HostResponseAt)

	second, err := f.gate.Respond(ctx, f.host, rv.ID, "Welcome back any time")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back any time", *second.HostResponse)

	stored, err := f.gate.Get(ctx, f.guest, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome back any time", *stored.HostResponse)
	assert.True(t, NewView(stored).HasHostResponse)
	assert.Equal(t, 4, stored.Rating)
}

func TestGate_ListScopes(t *testing.T) {
	f := newFixture(t)
	otherHost := dbtest.Profile(t, f.db, domain.RoleHost)
	otherListing := dbtest.Listing(t, f.db, otherHost.ID, dbtest.ListingOpts{})
	otherGuest := dbtest.Profile(t, f.db, domain.RoleGuest)
	admin := dbtest.Profile(t, f.db, domain.RoleAdmin)

	mine := f.stay(t, domain.BookingCompleted, "2024-03-01", "2024-03-05")
	elsewhere := dbtest.Booking(t, f.db, otherListing, otherGuest.ID, "2024-03-01", "2024-03-05", domain.BookingCompleted)
	ctx := context.Background()
	_, err := f.gate.Create(ctx, f.guest, f.request(mine, 5))
	require.NoError(t, err)
	_, err = f.gate.Create(ctx, otherGuest, CreateRequest{BookingID: elsewhere.ID, ListingID: otherListing.ID, Rating: 2})
	require.NoError(t, err)

	cases := []struct {
		name  string
		actor *domain.Profile
		want  int64
	}{
		{"admin", admin, 2},
		{"host of listing", f.host, 1},
		{"author", otherGuest, 1},
		{"unrelated host", dbtest.Profile(t, f.db, domain.RoleHost), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := f.gate.List(ctx, tc.actor, ListFilter{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, page.Total)
		})
	}

	page, err := f.gate.ListForListing(ctx, otherListing.ID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Items[0].Rating)

	_, err = f.gate.List(ctx, admin, ListFilter{Rating: 9})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

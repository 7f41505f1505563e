package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"travelapp/internal/database/dbtest"
	"travelapp/internal/domain"
	"travelapp/internal/domain/profile"
	"travelapp/internal/logger"
	"travelapp/internal/tasks"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(ctx context.Context, taskType string, payload any) (tasks.Info, error) {
	args := m.Called(ctx, taskType, payload)
	return args.Get(0).(tasks.Info), args.Error(1)
}

func setup(t *testing.T, q tasks.Enqueuer) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	profiles := profile.NewService(profile.NewRepository(db), logger.Discard())
	return NewService(NewRepository(db), profiles, q, logger.Discard()), db
}

func validCreate() CreateRequest {
	return CreateRequest{
		Title:         "Beach house",
		Description:   "Steps from the sand",
		PropertyType:  domain.PropertyHouse,
		RoomType:      domain.RoomEntirePlace,
		City:          "Mombasa",
		County:        "Mombasa",
		Bedrooms:      3,
		Bathrooms:     2,
		MaxGuests:     6,
		PricePerNight: decimal.RequireFromString("150.005"),
	}
}

func TestService_CreatePromotesGuestAndNotifiesAdmins(t *testing.T) {
	q := new(MockEnqueuer)
	q.On("Enqueue", mock.Anything, tasks.TypeAdminNotification, mock.MatchedBy(func(p tasks.AdminNotification) bool {
		return p.Subject == "New listing pending approval"
	})).Return(tasks.Info{ID: "t-1"}, nil).Once()
	svc, db := setup(t, q)
	guest := dbtest.Profile(t, db, domain.RoleGuest)

	l, err := svc.Create(context.Background(), guest, validCreate())
	require.NoError(t, err)
	assert.Equal(t, domain.ListingPending, l.Status)
	assert.Equal(t, "150.01", l.PricePerNight.StringFixed(2))

	var stored domain.Profile
	require.NoError(t, db.First(&stored, "id = ?", guest.ID).Error)
	assert.Equal(t, domain.RoleHost, stored.Role)
	q.AssertExpectations(t)
}

func TestService_CreateSurvivesEnqueueFailure(t *testing.T) {
	q := new(MockEnqueuer)
	q.On("Enqueue", mock.Anything, tasks.TypeAdminNotification, mock.Anything).
		Return(tasks.Info{}, errors.New("redis: connection refused"))
	db := dbtest.Open(t)
	log, hook := test.NewNullLogger()
	profiles := profile.NewService(profile.NewRepository(db), logger.Discard())
	svc := NewService(NewRepository(db), profiles, q, log)
	host := dbtest.Profile(t, db, domain.RoleHost)

	_, err := svc.Create(context.Background(), host, validCreate())
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logger.ClassNotificationEnqueue, hook.LastEntry().Data["error_class"])
}

func TestService_CreateValidation(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)

	req := validCreate()
	req.PricePerNight = decimal.Zero
	_, err := svc.Create(context.Background(), host, req)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	req = validCreate()
	req.MaxGuests = 0
	_, err = svc.Create(context.Background(), host, req)
	assert.ErrorIs(t, err, domain.ErrValidation)

	req = validCreate()
	req.PropertyType = "castle"
	_, err = svc.Create(context.Background(), host, req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_UpdateOnlyByHost(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	other := dbtest.Profile(t, db, domain.RoleHost)
	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{})

	price := decimal.RequireFromString("180")
	_, err := svc.Update(context.Background(), other, l.ID, UpdateRequest{PricePerNight: &price})
	assert.ErrorIs(t, err, domain.ErrPermission)

	updated, err := svc.Update(context.Background(), host, l.ID, UpdateRequest{PricePerNight: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.PricePerNight))

	neg := decimal.RequireFromString("-1")
	_, err = svc.Update(context.Background(), host, l.ID, UpdateRequest{PricePerNight: &neg})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_SetStatusAdminOnly(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	admin := dbtest.Profile(t, db, domain.RoleAdmin)
	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Status: domain.ListingPending})

	_, err := svc.SetStatus(context.Background(), host, l.ID, domain.ListingApproved)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.SetStatus(context.Background(), admin, l.ID, "published")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err := svc.SetStatus(context.Background(), admin, l.ID, domain.ListingApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingApproved, got.Status)

	_, err = svc.SetStatus(context.Background(), admin, uuid.New(), domain.ListingApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetVisibleHidesUnapproved(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Status: domain.ListingPending})

	_, err := svc.GetVisible(context.Background(), nil, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetVisible(context.Background(), guest, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetVisible(context.Background(), host, l.ID)
	assert.NoError(t, err)
}

func titles(p *Page) []string {
	out := make([]string, len(p.Items))
	for i, l := range p.Items {
		out[i] = l.Title
	}
	return out
}

func TestService_SearchFilters(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	ctx := context.Background()

	cheap := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "cheap", City: "Nairobi", Price: "50"})
	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "pricey", City: "Mombasa", Price: "400", Bedrooms: 5})
	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "hidden", Status: domain.ListingPending})

	page, err := svc.Search(ctx, nil, SearchFilter{Ordering: "price_per_night"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap", "pricey"}, titles(page))
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.Search(ctx, nil, SearchFilter{City: "mombasa"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pricey"}, titles(page))

	maxPrice := decimal.RequireFromString("100")
	page, err = svc.Search(ctx, nil, SearchFilter{MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap"}, titles(page))

	page, err = svc.Search(ctx, nil, SearchFilter{MinBedrooms: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"pricey"}, titles(page))

	// active booking on the cheap listing 2024-03-01..2024-03-05
	dbtest.Booking(t, db, cheap, guest.ID, "2024-03-01", "2024-03-05", domain.BookingConfirmed)

	from := dbtest.Date(t, "2024-03-03")
	page, err = svc.Search(ctx, nil, SearchFilter{AvailableFrom: &from, Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pricey"}, titles(page))

	// checking in on the check-out day is fine
	from = dbtest.Date(t, "2024-03-05")
	page, err = svc.Search(ctx, nil, SearchFilter{AvailableFrom: &from, Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap", "pricey"}, titles(page))

	// leaving on the other stay's check-in day is fine, leaving mid-stay is not
	to := dbtest.Date(t, "2024-03-01")
	page, err = svc.Search(ctx, nil, SearchFilter{AvailableTo: &to, Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap", "pricey"}, titles(page))
	to = dbtest.Date(t, "2024-03-04")
	page, err = svc.Search(ctx, nil, SearchFilter{AvailableTo: &to, Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pricey"}, titles(page))

	minPrice := decimal.RequireFromString("500")
	_, err = svc.Search(ctx, nil, SearchFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestService_SearchIgnoresCancelledBookings(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{})
	dbtest.Booking(t, db, l, guest.ID, "2024-03-01", "2024-03-05", domain.BookingCancelled)

	from := dbtest.Date(t, "2024-03-02")
	page, err := svc.Search(context.Background(), nil, SearchFilter{AvailableFrom: &from})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestRepository_RatingsAreDerived(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{})

	got, err := svc.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AverageRating)
	assert.Zero(t, got.ReviewCount)

	for _, rating := range []int{4, 5} {
		b := dbtest.Booking(t, db, l, guest.ID, "2024-01-01", "2024-01-03", domain.BookingCompleted)
		require.NoError(t, db.Create(&domain.Review{BookingID: b.ID, ListingID: l.ID, AuthorID: guest.ID, Rating: rating}).Error)
	}

	got, err = svc.Get(context.Background(), l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.InDelta(t, 4.5, *got.AverageRating, 0.001)
	assert.EqualValues(t, 2, got.ReviewCount)
}

func TestService_SearchFreeText(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	ctx := context.Background()

	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "Beach villa", City: "Mombasa"})
	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "Garden loft", City: "Nairobi"})

	page, err := svc.Search(ctx, nil, SearchFilter{Query: "VILLA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach villa"}, titles(page))

	page, err = svc.Search(ctx, nil, SearchFilter{Query: "mombasa"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach villa"}, titles(page))

	// description and county are searched too
	page, err = svc.Search(ctx, nil, SearchFilter{Query: "place to stay", Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach villa", "Garden loft"}, titles(page))
	page, err = svc.Search(ctx, nil, SearchFilter{Query: "nairobi county", Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach villa", "Garden loft"}, titles(page))

	// combined with other filters as AND
	page, err = svc.Search(ctx, nil, SearchFilter{Query: "place to stay", City: "nairobi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Garden loft"}, titles(page))

	page, err = svc.Search(ctx, nil, SearchFilter{Query: "castle"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestService_SearchMatchesWildcardsLiterally(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	ctx := context.Background()

	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "lakeside", City: "Mto_wa_Mbu"})
	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "hillside", City: "Mtoxwa"})

	page, err := svc.Search(ctx, nil, SearchFilter{City: "o_w"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lakeside"}, titles(page))

	page, err = svc.Search(ctx, nil, SearchFilter{City: "%"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = svc.Search(ctx, nil, SearchFilter{Query: "_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lakeside"}, titles(page))

	page, err = svc.Search(ctx, nil, SearchFilter{County: `\`})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestService_SearchByHost(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	host := dbtest.Profile(t, db, domain.RoleHost)
	other := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	admin := dbtest.Profile(t, db, domain.RoleAdmin)
	ctx := context.Background()

	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "approved"})
	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "pending", Status: domain.ListingPending})
	dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Title: "rejected", Status: domain.ListingRejected})
	dbtest.Listing(t, db, other.ID, dbtest.ListingOpts{Title: "elsewhere"})

	for name, viewer := range map[string]*domain.Profile{"anonymous": nil, "guest": guest, "other host": other} {
		page, err := svc.Search(ctx, viewer, SearchFilter{HostID: &host.ID})
		require.NoError(t, err, name)
		assert.Equal(t, []string{"approved"}, titles(page), name)
	}

	for name, viewer := range map[string]*domain.Profile{"owner": host, "admin": admin} {
		page, err := svc.Search(ctx, viewer, SearchFilter{HostID: &host.ID, Ordering: "title"})
		require.NoError(t, err, name)
		assert.Equal(t, []string{"approved", "pending", "rejected"}, titles(page), name)
		assert.EqualValues(t, 3, page.Total, name)
	}

	// without a host filter the owner sees the public result set
	page, err := svc.Search(ctx, host, SearchFilter{Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"approved", "elsewhere"}, titles(page))
}

func TestService_Delete(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }
	host := dbtest.Profile(t, db, domain.RoleHost)
	other := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	admin := dbtest.Profile(t, db, domain.RoleAdmin)
	ctx := context.Background()

	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{})
	past := dbtest.Booking(t, db, l, guest.ID, "2024-01-01", "2024-01-04", domain.BookingCompleted)
	require.NoError(t, db.Create(&domain.Review{BookingID: past.ID, ListingID: l.ID, AuthorID: guest.ID, Rating: 5}).Error)
	dbtest.Booking(t, db, l, guest.ID, "2024-02-01", "2024-02-04", domain.BookingCancelled)
	stay := dbtest.Booking(t, db, l, guest.ID, "2024-03-01", "2024-03-05", domain.BookingConfirmed)

	err := svc.Delete(ctx, other, l.ID)
	assert.ErrorIs(t, err, domain.ErrPermission)
	err = svc.Delete(ctx, guest, l.ID)
	assert.ErrorIs(t, err, ErrDeleteDenied)

	// the stay checks out today
	err = svc.Delete(ctx, host, l.ID)
	assert.ErrorIs(t, err, ErrHasActiveBookings)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	err = svc.Delete(ctx, admin, l.ID)
	assert.ErrorIs(t, err, ErrHasActiveBookings)
	_, err = svc.Get(ctx, l.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.Delete(ctx, host, l.ID))

	_, err = svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var bookings, reviews int64
	require.NoError(t, db.Model(&domain.Booking{}).Where("listing_id = ?", l.ID).Count(&bookings).Error)
	require.NoError(t, db.Model(&domain.Review{}).Where("listing_id = ?", l.ID).Count(&reviews).Error)
	assert.Zero(t, bookings)
	assert.Zero(t, reviews)
	require.Error(t, db.First(&domain.Booking{}, "id = ?", stay.ID).Error)

	err = svc.Delete(ctx, host, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DeleteByAdmin(t *testing.T) {
	svc, db := setup(t, new(MockEnqueuer))
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	host := dbtest.Profile(t, db, domain.RoleHost)
	guest := dbtest.Profile(t, db, domain.RoleGuest)
	admin := dbtest.Profile(t, db, domain.RoleAdmin)
	ctx := context.Background()

	l := dbtest.Listing(t, db, host.ID, dbtest.ListingOpts{Status: domain.ListingPending})
	dbtest.Booking(t, db, l, guest.ID, "2024-04-01", "2024-04-03", domain.BookingPending)

	err := svc.Delete(ctx, admin, l.ID)
	assert.ErrorIs(t, err, ErrHasActiveBookings)

	require.NoError(t, db.Model(&domain.Booking{}).Where("listing_id = ?", l.ID).
		Update("status", domain.BookingCancelled).Error)
	require.NoError(t, svc.Delete(ctx, admin, l.ID))
	_, err = svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

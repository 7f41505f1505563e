package listing

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelapp/internal/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

var orderings = map[string]string{
	"price_per_night":  "price_per_night ASC",
	"-price_per_night": "price_per_night DESC",
	"created_at":       "created_at ASC",
	"-created_at":      "created_at DESC",
	"title":            "title ASC",
	"-title":           "title DESC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern for a
// "LIKE ? ESCAPE '\'" clause; wildcards in s match literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, l *domain.Listing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachRatings(ctx, []*domain.Listing{&l}); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the listing together with its past bookings and reviews. It
// refuses with ErrHasActiveBookings while a pending or confirmed stay ends on
// or after today.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, today time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l domain.Listing
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var active int64
		err = tx.Model(&domain.Booking{}).
			Where("listing_id = ? AND status IN ? AND end_date >= ?", id, domain.ActiveBookingStatuses, domain.Day(today)).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrHasActiveBookings
		}

		if err := tx.Where("listing_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Booking{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Listing{}).Error
	})
}

func (r *Repository) Search(ctx context.Context, f SearchFilter) (*Page, error) {
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&domain.Listing{})
	if !f.allStatuses {
		q = q.Where("status = ?", domain.ListingApproved)
	}
	if f.HostID != nil {
		q = q.Where("host_id = ?", *f.HostID)
	}

	if f.Query != "" {
		p := containsPattern(f.Query)
		q = q.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(city) LIKE ? ESCAPE '\' OR LOWER(county) LIKE ? ESCAPE '\')`,
			p, p, p, p,
		)
	}
	if f.City != "" {
		q = q.Where(`LOWER(city) LIKE ? ESCAPE '\'`, containsPattern(f.City))
	}
	if f.County != "" {
		q = q.Where(`LOWER(county) LIKE ? ESCAPE '\'`, containsPattern(f.County))
	}
	if f.MinPrice != nil {
		q = q.Where("price_per_night >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price_per_night <= ?", *f.MaxPrice)
	}
	if f.MinBedrooms > 0 {
		q = q.Where("bedrooms >= ?", f.MinBedrooms)
	}
	if f.MinBathrooms > 0 {
		q = q.Where("bathrooms >= ?", f.MinBathrooms)
	}
	if f.MinGuests > 0 {
		q = q.Where("max_guests >= ?", f.MinGuests)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.RoomType != "" {
		q = q.Where("room_type = ?", f.RoomType)
	}
	// A listing is unavailable on a day when an active booking has
	// start <= day < end (check-in side) or start < day <= end (check-out side).
	if f.AvailableFrom != nil {
		day := domain.Day(*f.AvailableFrom)
		q = q.Where("NOT EXISTS (?)", r.activeBookings().Where("bookings.start_date <= ? AND bookings.end_date > ?", day, day))
	}
	if f.AvailableTo != nil {
		day := domain.Day(*f.AvailableTo)
		q = q.Where("NOT EXISTS (?)", r.activeBookings().Where("bookings.start_date < ? AND bookings.end_date >= ?", day, day))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	order, ok := orderings[f.Ordering]
	if !ok {
		order = orderings["-created_at"]
	}
	var items []domain.Listing
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Listing, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	if err := r.attachRatings(ctx, ptrs); err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (r *Repository) activeBookings() *gorm.DB {
	return r.db.Table("bookings").Select("1").
		Where("bookings.listing_id = listings.id").
		Where("bookings.status IN ?", domain.ActiveBookingStatuses)
}

type ratingRow struct {
	ListingID uuid.UUID
	Average   float64
	Total     int64
}

// attachRatings fills the derived average rating and review count.
func (r *Repository) attachRatings(ctx context.Context, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}

	var rows []ratingRow
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("listing_id, AVG(rating) AS average, COUNT(*) AS total").
		Where("listing_id IN ?", ids).
		Group("listing_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]ratingRow, len(rows))
	for _, row := range rows {
		byID[row.ListingID] = row
	}
	for _, l := range listings {
		row, ok := byID[l.ID]
		if !ok {
			l.AverageRating, l.ReviewCount = nil, 0
			continue
		}
		avg := math.Round(row.Average*100) / 100
		l.AverageRating = &avg
		l.ReviewCount = row.Total
	}
	return nil
}

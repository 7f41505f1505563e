package booking

import (
	"context"
	"errors"
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
	"start_date":   "start_date ASC",
	"-start_date":  "start_date DESC",
	"created_at":   "created_at ASC",
	"-created_at":  "created_at DESC",
	"total_price":  "total_price ASC",
	"-total_price": "total_price DESC",
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InTx runs fn against a repository bound to a single transaction.
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// LockListing loads the listing with a row lock held until the transaction ends.
func (r *Repository) LockListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ActiveOverlapping returns pending and confirmed bookings of the listing
// whose half-open range intersects rg.
func (r *Repository) ActiveOverlapping(ctx context.Context, listingID uuid.UUID, rg domain.DateRange) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status IN ?", listingID, domain.ActiveBookingStatuses).
		Where("start_date < ? AND end_date > ?", rg.End, rg.Start).
		Order("start_date ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate loads and row-locks a booking inside a transaction.
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) get(q *gorm.DB, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := q.Preload("Listing").Preload("Guest").First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, b *domain.Booking) error {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"status":              b.Status,
			"cancellation_reason": b.CancellationReason,
			"cancelled_at":        b.CancelledAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the booking together with its review.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.InTx(ctx, func(tx *Repository) error {
		if err := tx.db.Where("booking_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		res := tx.db.Where("id = ?", id).Delete(&domain.Booking{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// List returns the bookings the viewer may see. The scope is built from the
// viewer's capabilities; a viewer without any sees nothing.
func (r *Repository) List(ctx context.Context, viewer domain.Viewer, f ListFilter) ([]domain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})

	if a := viewer.Access(); !a.All {
		var (
			conds []string
			args  []any
		)
		if a.Own {
			conds = append(conds, "guest_id = ?")
			args = append(args, viewer.ProfileID)
		}
		if a.OwnListings {
			conds = append(conds, "listing_id IN (SELECT id FROM listings WHERE host_id = ?)")
			args = append(args, viewer.ProfileID)
		}
		if len(conds) == 0 {
			return []domain.Booking{}, 0, nil
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ListingID != nil {
		q = q.Where("listing_id = ?", *f.ListingID)
	}
	if f.StartDateFrom != nil {
		q = q.Where("start_date >= ?", domain.Day(*f.StartDateFrom))
	}
	if f.StartDateTo != nil {
		q = q.Where("start_date <= ?", domain.Day(*f.StartDateTo))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := orderings[f.Ordering]
	if !ok {
		order = orderings["-created_at"]
	}
	var out []domain.Booking
	err := q.Preload("Listing").
		Order(order).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&out).Error
	return out, total, err
}

// CompleteFinished marks confirmed bookings whose check-out day is before
// today as completed.
func (r *Repository) CompleteFinished(ctx context.Context, today time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("status = ? AND end_date < ?", domain.BookingConfirmed, domain.Day(today)).
		Update("status", domain.BookingCompleted)
	return res.RowsAffected, res.Error
}

// ConfirmedStartingOn returns confirmed bookings checking in on day.
func (r *Repository) ConfirmedStartingOn(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	d := domain.Day(day)
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Guest").
		Where("status = ? AND start_date >= ? AND start_date < ?", domain.BookingConfirmed, d, d.AddDate(0, 0, 1)).
		Order("start_date ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) Stats(ctx context.Context, since time.Time) (*Stats, error) {
	var rows []struct {
		Status domain.BookingStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	s := &Stats{ByStatus: make(map[domain.BookingStatus]int64, len(rows)), Since: since.UTC().Format(time.RFC3339)}
	for _, row := range rows {
		s.ByStatus[row.Status] = row.Count
		s.Total += row.Count
	}
	if err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("created_at >= ?", since).
		Count(&s.CreatedSince).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.Listing{}).
		Where("status = ?", domain.ListingApproved).
		Count(&s.ApprovedListings).Error; err != nil {
		return nil, err
	}
	return s, nil
}

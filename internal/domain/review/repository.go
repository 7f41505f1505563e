package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelapp/internal/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

var orderings = map[string]string{
	"rating":      "rating ASC",
	"-rating":     "rating DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// BookingForUpdate loads the reviewed booking with a row lock.
func (r *Repository) BookingForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).Where("booking_id = ?", bookingID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error
}

// Get loads a review with its listing, needed for host checks.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).Preload("Listing").Preload("Author").First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *Repository) SetHostResponse(ctx context.Context, id uuid.UUID, text string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("id = ?", id).
		Updates(map[string]any{"host_response": text, "host_response_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List applies the viewer's capabilities as an explicit predicate.
func (r *Repository) List(ctx context.Context, viewer *domain.Viewer, f ListFilter) ([]domain.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Review{})

	if viewer != nil {
		if a := viewer.Access(); !a.All {
			var (
				conds []string
				args  []any
			)
			if a.Own {
				conds = append(conds, "author_id = ?")
				args = append(args, viewer.ProfileID)
			}
			if a.OwnListings {
				conds = append(conds, "listing_id IN (SELECT id FROM listings WHERE host_id = ?)")
				args = append(args, viewer.ProfileID)
			}
			if len(conds) == 0 {
				return []domain.Review{}, 0, nil
			}
			q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
	}

	if f.ListingID != nil {
		q = q.Where("listing_id = ?", *f.ListingID)
	}
	if f.Rating != 0 {
		q = q.Where("rating = ?", f.Rating)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order, ok := orderings[f.Ordering]
	if !ok {
		order = orderings["-created_at"]
	}
	var out []domain.Review
	err := q.Preload("Author").Order(order).Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, total, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

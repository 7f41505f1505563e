// Package notification keeps the email delivery log and its retention.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelapp/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, entry *domain.EmailLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.EmailLog, error) {
	var out []domain.EmailLog
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// DeleteOlderThan removes entries created before now minus age.
func (r *Repository) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", time.Now().Add(-age)).
		Delete(&domain.EmailLog{})
	return res.RowsAffected, res.Error
}

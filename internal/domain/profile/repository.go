package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelapp/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FirstOrCreate inserts p unless a profile with the same id exists, and
// returns the stored row. Concurrent first requests converge on one row.
func (r *Repository) FirstOrCreate(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(p).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	res := r.db.WithContext(ctx).Model(&domain.Profile{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PromoteToHost upgrades guests only; hosts and admins keep their role.
func (r *Repository) PromoteToHost(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ? AND role = ?", id, domain.RoleGuest).
		Update("role", domain.RoleHost).Error
}

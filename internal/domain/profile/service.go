package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelapp/internal/domain"
)

type Service struct {
	repo *Repository
	log  logrus.FieldLogger
}

func NewService(repo *Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log}
}

// Resolve returns the profile for an identity-provider subject, creating a
// guest profile the first time the subject is seen.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, email, name string) (*domain.Profile, error) {
	p, err := s.repo.Get(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p, err = s.repo.FirstOrCreate(ctx, &domain.Profile{
		ID:       id,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		FullName: strings.TrimSpace(name),
		Role:     domain.RoleGuest,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	s.log.WithField("profile_id", id).Info("profile created")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) PromoteToHost(ctx context.Context, id uuid.UUID) error {
	return s.repo.PromoteToHost(ctx, id)
}

func (s *Service) SetRole(ctx context.Context, actor *domain.Profile, id uuid.UUID, role domain.Role) (*domain.Profile, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"profile_id": id, "role": role, "actor_id": actor.ID}).Info("profile role changed")
	return s.repo.Get(ctx, id)
}

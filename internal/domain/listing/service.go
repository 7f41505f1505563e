package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelapp/internal/domain"
	"travelapp/internal/logger"
	"travelapp/internal/pkg/validator"
	"travelapp/internal/tasks"
)

// HostPromoter upgrades a guest to host when they publish a listing.
type HostPromoter interface {
	PromoteToHost(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     *Repository
	profiles HostPromoter
	queue    tasks.Enqueuer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo *Repository, profiles HostPromoter, queue tasks.Enqueuer, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, profiles: profiles, queue: queue, log: log, now: time.Now}
}

// Create stores a new listing in pending status and asks admins to review it.
func (s *Service) Create(ctx context.Context, host *domain.Profile, req CreateRequest) (*domain.Listing, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if !req.PricePerNight.IsPositive() {
		return nil, ErrInvalidPrice
	}

	l := &domain.Listing{
		HostID:        host.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		PropertyType:  req.PropertyType,
		RoomType:      req.RoomType,
		City:          strings.TrimSpace(req.City),
		County:        strings.TrimSpace(req.County),
		PostalCode:    req.PostalCode,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		MaxGuests:     req.MaxGuests,
		PricePerNight: req.PricePerNight.Round(2),
		Status:        domain.ListingPending,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	if err := s.profiles.PromoteToHost(ctx, host.ID); err != nil {
		return nil, fmt.Errorf("promote host: %w", err)
	}

	log := s.log.WithFields(logrus.Fields{"listing_id": l.ID, "host_id": host.ID})
	log.Info("listing created")

	_, err := s.queue.Enqueue(ctx, tasks.TypeAdminNotification, tasks.AdminNotification{
		Subject: "New listing pending approval",
		Message: fmt.Sprintf("%s (%s, %s) was submitted by %s and is waiting for review. Listing id: %s",
			l.Title, l.City, l.County, host.DisplayName(), l.ID),
	})
	if err != nil {
		log.WithField("error_class", logger.ClassNotificationEnqueue).WithError(err).Error("admin notification enqueue failed")
	}
	return l, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.repo.Get(ctx, id)
}

// GetVisible hides listings that are not approved from everyone except their
// host and admins.
func (s *Service) GetVisible(ctx context.Context, viewer *domain.Profile, id uuid.UUID) (*domain.Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == domain.ListingApproved {
		return l, nil
	}
	if viewer != nil && (viewer.Role == domain.RoleAdmin || viewer.ID == l.HostID) {
		return l, nil
	}
	return nil, ErrNotFound
}

// Update changes listing details. Price changes never touch existing bookings.
func (s *Service) Update(ctx context.Context, actor *domain.Profile, id uuid.UUID, req UpdateRequest) (*domain.Listing, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.HostID != actor.ID {
		return nil, ErrForbidden
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.City != nil {
		fields["city"] = strings.TrimSpace(*req.City)
	}
	if req.County != nil {
		fields["county"] = strings.TrimSpace(*req.County)
	}
	if req.Bedrooms != nil {
		fields["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		fields["bathrooms"] = *req.Bathrooms
	}
	if req.MaxGuests != nil {
		fields["max_guests"] = *req.MaxGuests
	}
	if req.PricePerNight != nil {
		if !req.PricePerNight.IsPositive() {
			return nil, ErrInvalidPrice
		}
		fields["price_per_night"] = req.PricePerNight.Round(2)
	}
	if len(fields) == 0 {
		return l, nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, actor *domain.Profile, id uuid.UUID, status domain.ListingStatus) (*domain.Listing, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrAdminOnly
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"listing_id": id, "status": status, "actor_id": actor.ID}).Info("listing status changed")
	return s.repo.Get(ctx, id)
}

// Delete removes a listing on behalf of its host or an admin. Listings with
// stays still to come are kept; those bookings must be cancelled first so
// their guests are notified.
func (s *Service) Delete(ctx context.Context, actor *domain.Profile, id uuid.UUID) error {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && actor.ID != l.HostID {
		return ErrDeleteDenied
	}
	if err := s.repo.Delete(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"listing_id": id, "host_id": l.HostID, "actor_id": actor.ID}).Info("listing deleted")
	return nil
}

// Search returns matching listings. A HostID filter from that host or from an
// admin includes listings in every status.
func (s *Service) Search(ctx context.Context, viewer *domain.Profile, f SearchFilter) (*Page, error) {
	f.allStatuses = f.HostID != nil && viewer != nil && (viewer.Role == domain.RoleAdmin || viewer.ID == *f.HostID)
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidFilter)
	}
	if f.AvailableFrom != nil && f.AvailableTo != nil && !f.AvailableTo.After(*f.AvailableFrom) {
		return nil, fmt.Errorf("%w: available_to must be after available_from", ErrInvalidFilter)
	}
	return s.repo.Search(ctx, f)
}

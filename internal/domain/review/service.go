// Package review gates review creation on completed stays and lets hosts
// answer reviews of their listings.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelapp/internal/domain"
	"travelapp/internal/pkg/validator"
)

type Gate struct {
	repo *Repository
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewGate(repo *Repository, log logrus.FieldLogger) *Gate {
	return &Gate{repo: repo, log: log, now: time.Now}
}

// Create stores the review when the author stayed at the listing, the stay
// is completed and it has not been reviewed yet.
func (g *Gate) Create(ctx context.Context, author *domain.Profile, req CreateRequest) (*domain.Review, error) {
	if !domain.ValidRating(req.Rating) {
		return nil, ErrInvalidRating
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	rv := &domain.Review{
		BookingID: req.BookingID,
		ListingID: req.ListingID,
		AuthorID:  author.ID,
		Rating:    req.Rating,
		Comment:   trimmed(req.Comment),
	}
	err := g.repo.InTx(ctx, func(tx *Repository) error {
		b, err := tx.BookingForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if !b.CanBeReviewed(g.now()) {
			return ErrNotReviewable
		}
		exists, err := tx.ExistsForBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyReviewed
		}
		if b.GuestID != author.ID {
			return ErrNotBookingGuest
		}
		if b.ListingID != req.ListingID {
			return ErrListingMismatch
		}
		if err := tx.Create(ctx, rv); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyReviewed
			}
			return fmt.Errorf("insert review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"review_id":  rv.ID,
		"booking_id": rv.BookingID,
		"listing_id": rv.ListingID,
		"rating":     rv.Rating,
	}).Info("review created")
	return rv, nil
}

// Respond sets or replaces the host response. Earlier responses are not kept.
func (g *Gate) Respond(ctx context.Context, actor *domain.Profile, id uuid.UUID, text string) (*domain.Review, error) {
	rv, err := g.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Viewer().CanSeeReview(rv, rv.Listing.HostID) {
		return nil, ErrNotFound
	}
	if rv.Listing.HostID != actor.ID {
		return nil, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	at := g.now().UTC()
	if err := g.repo.SetHostResponse(ctx, id, text, at); err != nil {
		return nil, err
	}
	rv.HostResponse = &text
	rv.HostResponseAt = &at

	g.log.WithFields(logrus.Fields{"review_id": rv.ID, "actor_id": actor.ID}).Info("host responded to review")
	return rv, nil
}

func (g *Gate) Get(ctx context.Context, actor *domain.Profile, id uuid.UUID) (*domain.Review, error) {
	rv, err := g.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Viewer().CanSeeReview(rv, rv.Listing.HostID) {
		return nil, ErrNotFound
	}
	return rv, nil
}

// List returns the reviews visible to the actor.
func (g *Gate) List(ctx context.Context, actor *domain.Profile, f ListFilter) (*Page, error) {
	v := actor.Viewer()
	return g.list(ctx, &v, f)
}

// ListForListing is the public review feed of a listing.
func (g *Gate) ListForListing(ctx context.Context, listingID uuid.UUID, f ListFilter) (*Page, error) {
	f.ListingID = &listingID
	return g.list(ctx, nil, f)
}

func (g *Gate) list(ctx context.Context, viewer *domain.Viewer, f ListFilter) (*Page, error) {
	if f.Rating != 0 && !domain.ValidRating(f.Rating) {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidFilter, domain.MinRating, domain.MaxRating)
	}
	f.normalize()
	items, total, err := g.repo.List(ctx, viewer, f)
	if err != nil {
		return nil, err
	}
	page := &Page{Items: make([]View, 0, len(items)), Total: total, Limit: f.Limit, Offset: f.Offset}
	for i := range items {
		page.Items = append(page.Items, NewView(&items[i]))
	}
	return page, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

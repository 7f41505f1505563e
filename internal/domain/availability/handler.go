package availability

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelapp/internal/domain"
	"travelapp/internal/pkg/response"
)

type ListingLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

type Handler struct {
	engine   *Engine
	listings ListingLookup
}

func NewHandler(engine *Engine, listings ListingLookup) *Handler {
	return &Handler{engine: engine, listings: listings}
}

type Result struct {
	ListingID           uuid.UUID `json:"listing_id"`
	Available           bool      `json:"available"`
	StartDate           string    `json:"start_date"`
	EndDate             string    `json:"end_date"`
	Nights              int       `json:"nights"`
	ConflictingBookings int       `json:"conflicting_bookings"`
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/listings/:id/availability", h.Check)
}

// Check GET /api/v1/listings/:id/availability?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *Handler) Check(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid listing id")
		return
	}
	rawStart, rawEnd := c.Query("start_date"), c.Query("end_date")
	if rawStart == "" || rawEnd == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "start_date and end_date parameters are required")
		return
	}
	start, err := domain.ParseDate(rawStart)
	if err != nil {
		response.Fail(c, err)
		return
	}
	end, err := domain.ParseDate(rawEnd)
	if err != nil {
		response.Fail(c, err)
		return
	}

	if _, err := h.listings.Get(c.Request.Context(), id); err != nil {
		response.Fail(c, err, gin.H{"listing_id": id.String()})
		return
	}

	r := domain.NewDateRange(start, end)
	conflicts, err := h.engine.ConflictingBookings(c.Request.Context(), id, r)
	if err != nil {
		response.Fail(c, err, gin.H{"listing_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, Result{
		ListingID:           id,
		Available:           len(conflicts) == 0,
		StartDate:           r.Start.Format(domain.DateLayout),
		EndDate:             r.End.Format(domain.DateLayout),
		Nights:              r.Nights(),
		ConflictingBookings: len(conflicts),
	})
}

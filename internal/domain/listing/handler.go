package listing

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"travelapp/internal/domain"
	"travelapp/internal/middleware"
	"travelapp/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Search GET /api/v1/listings
func (h *Handler) Search(c *gin.Context) {
	viewer, _ := middleware.CurrentProfile(c)
	f, err := parseSearchFilter(c, viewer)
	if err != nil {
		response.Fail(c, err)
		return
	}
	page, err := h.svc.Search(c.Request.Context(), viewer, f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// Get GET /api/v1/listings/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	viewer, _ := middleware.CurrentProfile(c)
	l, err := h.svc.GetVisible(c.Request.Context(), viewer, id)
	if err != nil {
		response.Fail(c, err, gin.H{"listing_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, l)
}

// Create POST /api/v1/listings
func (h *Handler) Create(c *gin.Context) {
	host, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	l, err := h.svc.Create(c.Request.Context(), host, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, l)
}

// Update PATCH /api/v1/listings/:id
func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	l, err := h.svc.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Fail(c, err, gin.H{"listing_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, l)
}

// SetStatus PATCH /api/v1/listings/:id/status
func (h *Handler) SetStatus(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	l, err := h.svc.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.Fail(c, err, gin.H{"listing_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, l)
}

// Delete DELETE /api/v1/listings/:id
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		response.Fail(c, err, gin.H{"listing_id": id.String()})
		return
	}
	c.Status(http.StatusNoContent)
}

func listingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid listing id")
		return uuid.Nil, false
	}
	return id, true
}

// parseSearchFilter reads the query string. mine=true is shorthand for
// host_id set to the caller.
func parseSearchFilter(c *gin.Context, viewer *domain.Profile) (SearchFilter, error) {
	f := SearchFilter{
		Query:        strings.TrimSpace(c.Query("search")),
		City:         c.Query("city"),
		County:       c.Query("county"),
		PropertyType: domain.PropertyType(c.Query("property_type")),
		RoomType:     domain.RoomType(c.Query("room_type")),
		Ordering:     c.Query("ordering"),
	}

	if raw := c.Query("host_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, fmt.Errorf("%w: host_id must be a uuid", ErrInvalidFilter)
		}
		f.HostID = &id
	}
	if c.Query("mine") == "true" {
		if viewer == nil {
			return f, fmt.Errorf("%w: mine requires authentication", ErrInvalidFilter)
		}
		f.HostID = &viewer.ID
	}

	var err error
	if f.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return f, err
	}
	if f.AvailableFrom, err = queryDate(c, "available_from"); err != nil {
		return f, err
	}
	if f.AvailableTo, err = queryDate(c, "available_to"); err != nil {
		return f, err
	}
	for key, dst := range map[string]*int{
		"min_bedrooms":  &f.MinBedrooms,
		"min_bathrooms": &f.MinBathrooms,
		"min_guests":    &f.MinGuests,
		"limit":         &f.Limit,
		"offset":        &f.Offset,
	} {
		if *dst, err = queryInt(c, key); err != nil {
			return f, err
		}
	}
	return f, nil
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidFilter, key)
	}
	return &d, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidFilter, key)
	}
	return n, nil
}

package review

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelapp/internal/middleware"
	"travelapp/internal/pkg/response"
)

type Handler struct {
	gate *Gate
}

func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// Create POST /api/v1/reviews
func (h *Handler) Create(c *gin.Context) {
	author, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	rv, err := h.gate.Create(c.Request.Context(), author, req)
	if err != nil {
		response.Fail(c, err, gin.H{"booking_id": req.BookingID.String()})
		return
	}
	response.Success(c, http.StatusCreated, NewView(rv))
}

// Respond POST /api/v1/reviews/:id/respond
func (h *Handler) Respond(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid review id")
	if !ok {
		return
	}
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	rv, err := h.gate.Respond(c.Request.Context(), actor, id, req.HostResponse)
	if err != nil {
		response.Fail(c, err, gin.H{"review_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, NewView(rv))
}

// Get GET /api/v1/reviews/:id
func (h *Handler) Get(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid review id")
	if !ok {
		return
	}
	rv, err := h.gate.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err, gin.H{"review_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, NewView(rv))
}

// List GET /api/v1/reviews
func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	f, err := parseListFilter(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	page, err := h.gate.List(c.Request.Context(), actor, f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// ListForListing GET /api/v1/listings/:id/reviews
func (h *Handler) ListForListing(c *gin.Context) {
	id, ok := pathID(c, "invalid listing id")
	if !ok {
		return
	}
	f, err := parseListFilter(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	page, err := h.gate.ListForListing(c.Request.Context(), id, f)
	if err != nil {
		response.Fail(c, err, gin.H{"listing_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, page)
}

func pathID(c *gin.Context, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", msg)
		return uuid.Nil, false
	}
	return id, true
}

func parseListFilter(c *gin.Context) (ListFilter, error) {
	f := ListFilter{Ordering: c.Query("ordering")}
	if v := c.Query("listing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, ErrInvalidFilter
		}
		f.ListingID = &id
	}
	for key, dst := range map[string]*int{"rating": &f.Rating, "limit": &f.Limit, "offset": &f.Offset} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, ErrInvalidFilter
		}
		*dst = n
	}
	return f, nil
}

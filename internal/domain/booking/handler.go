package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelapp/internal/domain"
	"travelapp/internal/middleware"
	"travelapp/internal/pkg/response"
	"travelapp/internal/pkg/validator"
)

const (
	warnNotificationCode    = "NOTIFICATION_NOT_QUEUED"
	warnNotificationMessage = "Booking saved, but the notification email could not be queued"
	// TaskHeader carries the notification task id, pollable at /tasks/:task_id.
	TaskHeader = "X-Notification-Task-ID"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Create POST /api/v1/listings/:id/bookings
func (h *Handler) Create(c *gin.Context) {
	guest, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid listing id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		response.Fail(c, err)
		return
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		response.Fail(c, err)
		return
	}
	guests := 1
	if req.GuestCount != nil {
		guests = *req.GuestCount
	}

	res, err := h.manager.Create(c.Request.Context(), guest, CreateInput{
		ListingID:  listingID,
		StartDate:  start,
		EndDate:    end,
		GuestCount: guests,
	})
	if err != nil {
		response.Fail(c, err, gin.H{"listing_id": listingID.String()})
		return
	}
	h.respond(c, http.StatusCreated, h.manager.View(res.Booking), res.Notification)
}

// List GET /api/v1/bookings
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
	page, err := h.manager.List(c.Request.Context(), actor, f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// Get GET /api/v1/bookings/:id
func (h *Handler) Get(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.manager.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err, gin.H{"booking_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, h.manager.View(b))
}

// Confirm POST /api/v1/bookings/:id/confirm
func (h *Handler) Confirm(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.manager.Confirm(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err, gin.H{"booking_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, h.manager.View(b))
}

// Cancel POST /api/v1/bookings/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}
	if err := validator.Check(req); err != nil {
		response.Fail(c, err)
		return
	}

	res, err := h.manager.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		response.Fail(c, err, gin.H{"booking_id": id.String()})
		return
	}
	h.respond(c, http.StatusOK, h.manager.View(res.Booking), res.Notification)
}

// Delete DELETE /api/v1/bookings/:id
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	n, err := h.manager.Destroy(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err, gin.H{"booking_id": id.String()})
		return
	}
	h.respond(c, http.StatusOK, gin.H{"id": id, "deleted": true}, n)
}

func (h *Handler) respond(c *gin.Context, status int, data any, n Notification) {
	if !n.Queued() {
		response.SuccessWithWarning(c, status, data, warnNotificationCode, warnNotificationMessage)
		return
	}
	if n.TaskID != "" {
		c.Header(TaskHeader, n.TaskID)
	}
	response.Success(c, status, data)
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}

func parseListFilter(c *gin.Context) (ListFilter, error) {
	f := ListFilter{
		Status:   domain.BookingStatus(c.Query("status")),
		Ordering: c.Query("ordering"),
	}
	if v := c.Query("listing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, ErrInvalidFilter
		}
		f.ListingID = &id
	}
	if v := c.Query("start_date_from"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.StartDateFrom = &d
	}
	if v := c.Query("start_date_to"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.StartDateTo = &d
	}
	var err error
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(c, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ErrInvalidFilter
	}
	return n, nil
}

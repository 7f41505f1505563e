package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

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

type setRoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

// GetMe GET /api/v1/profiles/me
func (h *Handler) GetMe(c *gin.Context) {
	p, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, p)
}

// SetRole PATCH /api/v1/profiles/:id/role
func (h *Handler) SetRole(c *gin.Context) {
	actor, ok := middleware.MustProfile(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid profile id")
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.svc.SetRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		response.Fail(c, err, gin.H{"profile_id": id.String()})
		return
	}
	response.Success(c, http.StatusOK, p)
}

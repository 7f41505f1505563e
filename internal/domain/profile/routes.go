package profile

import (
	"github.com/gin-gonic/gin"

	"travelapp/internal/middleware"
)

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/profiles/me", h.GetMe)
	protected.PATCH("/profiles/:id/role", middleware.AdminOnly(), h.SetRole)
}

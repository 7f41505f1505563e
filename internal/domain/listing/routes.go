package listing

import (
	"github.com/gin-gonic/gin"

	"travelapp/internal/middleware"
)

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/listings", h.Search)
		public.GET("/listings/:id", h.Get)
	}

	if protected != nil {
		protected.POST("/listings", h.Create)
		protected.PATCH("/listings/:id", h.Update)
		protected.DELETE("/listings/:id", h.Delete)
		protected.PATCH("/listings/:id/status", middleware.AdminOnly(), h.SetStatus)
	}
}

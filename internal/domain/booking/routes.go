package booking

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts booking endpoints on the authenticated group. writes
// run in front of the mutating endpoints (rate limiting).
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, writes ...gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writes...), handler)
	}

	protected.POST("/listings/:id/bookings", guarded(h.Create)...)

	bookings := protected.Group("/bookings")
	{
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.POST("/:id/confirm", guarded(h.Confirm)...)
		bookings.POST("/:id/cancel", guarded(h.Cancel)...)
		bookings.DELETE("/:id", guarded(h.Delete)...)
	}
}

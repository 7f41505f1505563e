package review

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup, writes ...gin.HandlerFunc) {
	if public != nil {
		public.GET("/listings/:id/reviews", h.ListForListing)
	}

	if protected != nil {
		guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
			return append(append([]gin.HandlerFunc{}, writes...), handler)
		}
		protected.GET("/reviews", h.List)
		protected.GET("/reviews/:id", h.Get)
		protected.POST("/reviews", guarded(h.Create)...)
		protected.POST("/reviews/:id/respond", guarded(h.Respond)...)
	}
}

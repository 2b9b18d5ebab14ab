package http

import "github.com/gin-gonic/gin"

// Register mounts the home-services routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.browse)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.remove)
	rg.POST("/:id/bookings", h.book)
}

// RegisterBookings mounts the booking routes on the given group.
func (h *Handler) RegisterBookings(rg *gin.RouterGroup) {
	rg.GET("", h.myBookings)
	rg.GET("/incoming", h.incomingBookings)
	rg.POST("/:id/cancel", h.cancelBooking)
	rg.POST("/:id/complete", h.completeBooking)
}

package http

import "github.com/gin-gonic/gin"

// Register attaches listing routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.browse)
	rg.GET("/mine", h.mine)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/views", h.recordView)
}

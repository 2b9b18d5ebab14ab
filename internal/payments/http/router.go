package http

import "github.com/gin-gonic/gin"

// Register mounts the payment routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/verify", h.verify)
	rg.GET("/:id", h.status)
}

package http

import "github.com/gin-gonic/gin"

// Register mounts the messaging routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("/inquiries", h.startInquiry)
	rg.GET("/:id/messages", h.messages)
	rg.POST("/:id/messages", h.send)
	rg.POST("/:id/read", h.markRead)
}

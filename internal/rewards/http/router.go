package http

import "github.com/gin-gonic/gin"

// Register mounts the reward routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/checkin", h.checkIn)
	rg.POST("/spin", h.spin)
	rg.GET("/quests", h.quests)
	rg.POST("/quests/:id/claim", h.claimQuest)
	rg.POST("/mining/start", h.startMining)
	rg.GET("/mining", h.miningStatus)
	rg.POST("/mining/claim", h.claimMining)
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/rewards/domain"
)

// Service is the reward surface the handlers depend on.
type Service interface {
	CheckIn(ctx context.Context, uid string) (*domain.CheckInResult, error)
	Spin(ctx context.Context, uid string) (*domain.SpinResult, error)
	Quests(ctx context.Context, uid string) ([]domain.QuestStatus, error)
	ClaimQuest(ctx context.Context, uid, questID string) (*domain.SpinResult, error)
	StartMining(ctx context.Context, uid string) (*domain.MiningStatus, error)
	MiningStatus(ctx context.Context, uid string) (*domain.MiningStatus, error)
	ClaimMining(ctx context.Context, uid string) (*domain.MiningStatus, error)
}

// Handler exposes the reward endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a rewards Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) checkIn(c *gin.Context) {
	result, err := h.svc.CheckIn(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "checkIn": result})
}

func (h *Handler) spin(c *gin.Context) {
	result, err := h.svc.Spin(c.Request.Context(), c.GetString("pi_uid"))
	if errors.Is(err, domain.ErrSpinUnavailable) {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "spin": result})
}

func (h *Handler) quests(c *gin.Context) {
	statuses, err := h.svc.Quests(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "quests": statuses})
}

func (h *Handler) claimQuest(c *gin.Context) {
	result, err := h.svc.ClaimQuest(c.Request.Context(), c.GetString("pi_uid"), c.Param("id"))
	switch {
	case errors.Is(err, domain.ErrUnknownQuest):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrQuestNotComplete), errors.Is(err, domain.ErrQuestAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true, "claim": result})
	}
}

func (h *Handler) startMining(c *gin.Context) {
	status, err := h.svc.StartMining(c.Request.Context(), c.GetString("pi_uid"))
	if errors.Is(err, domain.ErrMiningActive) {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mining": status})
}

func (h *Handler) miningStatus(c *gin.Context) {
	status, err := h.svc.MiningStatus(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mining": status})
}

func (h *Handler) claimMining(c *gin.Context) {
	status, err := h.svc.ClaimMining(c.Request.Context(), c.GetString("pi_uid"))
	switch {
	case errors.Is(err, domain.ErrNoMiningSession), errors.Is(err, domain.ErrMiningNotReady):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true, "mining": status})
	}
}

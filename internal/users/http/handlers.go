package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/users/domain"
)

// Service is the user surface the handlers depend on.
type Service interface {
	Profile(ctx context.Context, uid string) (*domain.User, error)
	ToggleFavorite(ctx context.Context, uid, propertyID string) (bool, error)
}

// Handler exposes the user profile endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a users Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the user routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.POST("/me/favorites/:propertyId", h.toggleFavorite)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), c.GetString("pi_uid"))
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	added, err := h.svc.ToggleFavorite(c.Request.Context(), c.GetString("pi_uid"), c.Param("propertyId"))
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "favorited": added})
}

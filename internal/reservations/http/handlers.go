package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/reservations/domain"

	listingsdomain "github.com/casaloop/casaloop-backend/internal/listings/domain"
)

// Service is the reservation surface the handlers depend on.
type Service interface {
	Reserve(ctx context.Context, propertyID, uid string) (*domain.Reservation, error)
	Mine(ctx context.Context, uid string) ([]*domain.Reservation, error)
	Get(ctx context.Context, id, uid string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id, uid string) error
}

// Handler exposes the reservation endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a reservations Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the reservation routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.reserve)
	rg.GET("", h.mine)
	rg.GET("/:id", h.get)
	rg.POST("/:id/cancel", h.cancel)
}

type reserveReq struct {
	PropertyID string `json:"propertyId" binding:"required"`
}

func (h *Handler) reserve(c *gin.Context) {
	var req reserveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	res, err := h.svc.Reserve(c.Request.Context(), req.PropertyID, c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "reservation": res})
}

func (h *Handler) mine(c *gin.Context) {
	items, err := h.svc.Mine(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reservations": items})
}

func (h *Handler) get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reservation": res})
}

func (h *Handler) cancel(c *gin.Context) {
	err := h.svc.Cancel(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func handled(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrReservationNotFound), errors.Is(err, listingsdomain.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
	return true
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/trust/domain"
	"github.com/casaloop/casaloop-backend/internal/trust/service"
)

// Handler exposes trust-score routes.
type Handler struct {
	svc *service.TrustService
}

// NewHandler creates a trust HTTP handler.
func NewHandler(svc *service.TrustService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) evaluate(c *gin.Context) {
	eval, err := h.svc.Evaluate(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == domain.ErrVerificationNotFound {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "verification record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "trust": eval})
}

// Register attaches trust routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id", h.evaluate)
}

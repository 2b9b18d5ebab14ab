package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/payments/domain"
)

// Verifier is the service surface the handlers depend on.
type Verifier interface {
	Verify(ctx context.Context, req *domain.VerifyRequest) (*domain.VerifyResult, error)
	Status(ctx context.Context, paymentID string) (*domain.PaymentLog, error)
}

// Handler exposes the payment endpoints.
type Handler struct {
	svc Verifier
}

// NewHandler creates a payments Handler.
func NewHandler(svc Verifier) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) verify(c *gin.Context) {
	var req domain.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "success": false})
		return
	}
	req.UserAgent = c.GetHeader("User-Agent")
	req.IPAddress = c.ClientIP()

	// The authenticated identity wins over anything in the body.
	if uid := c.GetString("pi_uid"); uid != "" {
		req.UserID = uid
	}

	result, err := h.svc.Verify(c.Request.Context(), &req)
	if err != nil {
		var ve *domain.VerifyError
		if errors.As(err, &ve) {
			body := gin.H{"error": ve.Message, "success": false}
			if ve.Duplicate {
				body["duplicate"] = true
			}
			c.JSON(ve.Status, body)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "success": false})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) status(c *gin.Context) {
	entry, err := h.svc.Status(c.Request.Context(), c.Param("id"))
	if err == domain.ErrPaymentLogNotFound {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "payment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	// Only the payer may read the record.
	if uid := c.GetString("pi_uid"); uid != "" && uid != entry.UserID {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "payment": entry})
}

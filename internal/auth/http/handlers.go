package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	usersdomain "github.com/casaloop/casaloop-backend/internal/users/domain"
)

// Service is the auth surface the handlers depend on.
type Service interface {
	SignIn(ctx context.Context, accessToken string) (*usersdomain.User, error)
}

// Handler exposes the signin endpoint.
type Handler struct {
	svc Service
}

// NewHandler creates an auth Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the auth routes on the given group. Signin sits
// outside the authenticated group: it is how a session starts.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/signin", h.signIn)
}

type signInReq struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	user, err := h.svc.SignIn(c.Request.Context(), req.AccessToken)
	if errors.Is(err, usersdomain.ErrUserBanned) {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "account is banned"})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

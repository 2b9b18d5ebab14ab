package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/messaging/domain"
)

// Service is the messaging surface the handlers depend on.
type Service interface {
	Conversations(ctx context.Context, uid string) ([]*domain.Conversation, error)
	Messages(ctx context.Context, conversationID, uid string) ([]*domain.Message, error)
	Send(ctx context.Context, conversationID, senderID, senderName, text string) (*domain.Message, error)
	StartInquiry(ctx context.Context, buyerID, buyerName, ownerID, ownerName, propertyID, propertyTitle string) (*domain.Conversation, error)
	MarkRead(ctx context.Context, conversationID, uid string) error
}

// Handler exposes the messaging endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a messaging Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type sendMessageReq struct {
	Text string `json:"text" binding:"required"`
}

type startInquiryReq struct {
	OwnerID       string `json:"ownerId" binding:"required"`
	OwnerName     string `json:"ownerName"`
	PropertyID    string `json:"propertyId" binding:"required"`
	PropertyTitle string `json:"propertyTitle"`
}

func (h *Handler) list(c *gin.Context) {
	convs, err := h.svc.Conversations(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "conversations": convs})
}

func (h *Handler) messages(c *gin.Context) {
	msgs, err := h.svc.Messages(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": msgs})
}

func (h *Handler) send(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), c.Param("id"),
		c.GetString("pi_uid"), c.GetString("pi_username"), req.Text)
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": msg})
}

func (h *Handler) startInquiry(c *gin.Context) {
	var req startInquiryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	conv, err := h.svc.StartInquiry(c.Request.Context(),
		c.GetString("pi_uid"), c.GetString("pi_username"),
		req.OwnerID, req.OwnerName, req.PropertyID, req.PropertyTitle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "conversation": conv})
}

func (h *Handler) markRead(c *gin.Context) {
	err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handled maps messaging errors onto HTTP statuses; reports whether a
// response was written.
func handled(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
	return true
}

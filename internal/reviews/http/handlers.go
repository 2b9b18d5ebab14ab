package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/reviews/domain"
	"github.com/casaloop/casaloop-backend/internal/reviews/service"
)

// Service is the review surface the handlers depend on.
type Service interface {
	Submit(ctx context.Context, rev *domain.Review) (*domain.Review, error)
	ListByTarget(ctx context.Context, targetType, targetID string) ([]*domain.Review, error)
	Report(ctx context.Context, rep *domain.Report) (*domain.Report, error)
}

// Handler exposes the review and report endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a reviews Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the review routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.submit)
	rg.GET("", h.list)
}

// RegisterReports mounts the report route on the given group.
func (h *Handler) RegisterReports(rg *gin.RouterGroup) {
	rg.POST("", h.report)
}

type submitReviewReq struct {
	TargetType string `json:"targetType" binding:"required,oneof=property service"`
	TargetID   string `json:"targetId" binding:"required"`
	OwnerID    string `json:"ownerId" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

type reportReq struct {
	TargetType   string `json:"targetType" binding:"required"`
	TargetID     string `json:"targetId" binding:"required"`
	ReportedUser string `json:"reportedUser"`
	Reason       string `json:"reason" binding:"required"`
	Details      string `json:"details"`
}

func (h *Handler) submit(c *gin.Context) {
	var req submitReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	rev := &domain.Review{
		TargetType:   req.TargetType,
		TargetID:     req.TargetID,
		OwnerID:      req.OwnerID,
		ReviewerID:   c.GetString("pi_uid"),
		ReviewerName: c.GetString("pi_username"),
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	rev, err := h.svc.Submit(c.Request.Context(), rev)
	switch {
	case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, domain.ErrSelfReview):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, service.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusCreated, gin.H{"ok": true, "review": rev})
	}
}

func (h *Handler) list(c *gin.Context) {
	targetType := c.Query("targetType")
	targetID := c.Query("targetId")
	if targetType == "" || targetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "targetType and targetId are required"})
		return
	}

	items, err := h.svc.ListByTarget(c.Request.Context(), targetType, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reviews": items})
}

func (h *Handler) report(c *gin.Context) {
	var req reportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	rep := &domain.Report{
		TargetType:   req.TargetType,
		TargetID:     req.TargetID,
		ReportedUser: req.ReportedUser,
		ReporterID:   c.GetString("pi_uid"),
		Reason:       req.Reason,
		Details:      req.Details,
	}
	rep, err := h.svc.Report(c.Request.Context(), rep)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "report": rep})
}

package http

import (
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/providers/domain"
)

// Service is the provider surface the handlers depend on.
type Service interface {
	Create(ctx context.Context, sp *domain.ServiceProvider) (*domain.ServiceProvider, error)
	Browse(ctx context.Context, uid, category string) ([]*domain.ServiceProvider, error)
	Get(ctx context.Context, id string) (*domain.ServiceProvider, error)
	Update(ctx context.Context, id, uid string, updates []firestore.Update) error
	Deactivate(ctx context.Context, id, uid string) error
	Book(ctx context.Context, serviceID, customerID, date, timeSlot, notes string, hours float64) (*domain.ServiceBooking, error)
	MyBookings(ctx context.Context, uid string) ([]*domain.ServiceBooking, error)
	IncomingBookings(ctx context.Context, uid string) ([]*domain.ServiceBooking, error)
	Cancel(ctx context.Context, bookingID, uid string) error
	Complete(ctx context.Context, bookingID, uid string) error
}

// Handler exposes the home-services endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a providers Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type createServiceReq struct {
	Name         string   `json:"name" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	PricePerHour float64  `json:"pricePerHour" binding:"required,gt=0"`
	Skills       []string `json:"skills"`
	Experience   string   `json:"experience"`
	Availability string   `json:"availability"`
	Location     string   `json:"location"`
	Images       []string `json:"images"`
}

type updateServiceReq struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Description  *string  `json:"description"`
	PricePerHour *float64 `json:"pricePerHour"`
	Availability *string  `json:"availability"`
	Location     *string  `json:"location"`
}

type bookServiceReq struct {
	Date  string  `json:"date" binding:"required"`
	Time  string  `json:"time" binding:"required"`
	Hours float64 `json:"hours" binding:"required,gt=0"`
	Notes string  `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createServiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	sp := &domain.ServiceProvider{
		OwnerID:      c.GetString("pi_uid"),
		OwnerName:    c.GetString("pi_username"),
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		PricePerHour: req.PricePerHour,
		Skills:       req.Skills,
		Experience:   req.Experience,
		Availability: req.Availability,
		Location:     req.Location,
		Images:       req.Images,
	}
	sp, err := h.svc.Create(c.Request.Context(), sp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "service": sp})
}

func (h *Handler) browse(c *gin.Context) {
	items, err := h.svc.Browse(c.Request.Context(), c.GetString("pi_uid"), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "services": items})
}

func (h *Handler) get(c *gin.Context) {
	sp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": sp})
}

func (h *Handler) update(c *gin.Context) {
	var req updateServiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	updates := buildUpdates(&req)
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no fields to update"})
		return
	}

	err := h.svc.Update(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"), updates)
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) remove(c *gin.Context) {
	err := h.svc.Deactivate(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) book(c *gin.Context) {
	var req bookServiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	booking, err := h.svc.Book(c.Request.Context(), c.Param("id"),
		c.GetString("pi_uid"), req.Date, req.Time, req.Notes, req.Hours)
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "booking": booking})
}

func (h *Handler) myBookings(c *gin.Context) {
	items, err := h.svc.MyBookings(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bookings": items})
}

func (h *Handler) incomingBookings(c *gin.Context) {
	items, err := h.svc.IncomingBookings(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bookings": items})
}

func (h *Handler) cancelBooking(c *gin.Context) {
	err := h.svc.Cancel(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) completeBooking(c *gin.Context) {
	err := h.svc.Complete(c.Request.Context(), c.Param("id"), c.GetString("pi_uid"))
	if handled(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func buildUpdates(req *updateServiceReq) []firestore.Update {
	var updates []firestore.Update
	if req.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *req.Name})
	}
	if req.Category != nil {
		updates = append(updates, firestore.Update{Path: "category", Value: *req.Category})
	}
	if req.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *req.Description})
	}
	if req.PricePerHour != nil {
		updates = append(updates, firestore.Update{Path: "pricePerHour", Value: *req.PricePerHour})
	}
	if req.Availability != nil {
		updates = append(updates, firestore.Update{Path: "availability", Value: *req.Availability})
	}
	if req.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: *req.Location})
	}
	return updates
}

func handled(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrServiceNotFound), errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrInvalidHours):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
	return true
}

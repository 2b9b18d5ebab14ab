package http

import (
	"net/http"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"github.com/casaloop/casaloop-backend/internal/listings/domain"
	"github.com/casaloop/casaloop-backend/internal/listings/service"
)

// Handler exposes listing routes.
type Handler struct {
	svc *service.ListingService
}

// NewHandler creates a listings HTTP handler.
func NewHandler(svc *service.ListingService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) create(c *gin.Context) {
	var req createListingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	uid := c.GetString("pi_uid")
	username := c.GetString("pi_username")

	p := &domain.Property{
		Title:       req.Title,
		Price:       req.Price,
		Location:    req.Location,
		Type:        req.Type,
		Category:    req.Category,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Images:      req.Images,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		UserID:      uid,
		Username:    username,
		SellerName:  username,
	}

	created, err := h.svc.Create(c.Request.Context(), p)
	if err != nil {
		if err == domain.ErrListingBlocked {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "trust score too low to list"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "listing": created})
}

func (h *Handler) browse(c *gin.Context) {
	f := domain.Filter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Search:   c.Query("q"),
		SortBy:   c.Query("sort"),
	}
	f.MinPrice, _ = strconv.ParseFloat(c.Query("min_price"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(c.Query("max_price"), 64)
	f.MinBedrooms, _ = strconv.Atoi(c.Query("min_bedrooms"))
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.svc.Browse(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "listings": items, "total": total})
}

func (h *Handler) mine(c *gin.Context) {
	items, err := h.svc.Mine(c.Request.Context(), c.GetString("pi_uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "listings": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "listing": p})
}

func (h *Handler) update(c *gin.Context) {
	var req updateListingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	updates := buildUpdates(req)
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no fields to update"})
		return
	}

	err := h.svc.Update(c.Request.Context(), c.GetString("pi_uid"), c.Param("id"), updates)
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case domain.ErrPropertyNotFound:
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "listing not found"})
	case domain.ErrNotOwner:
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the owner"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.GetString("pi_uid"), c.Param("id"))
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case domain.ErrPropertyNotFound:
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "listing not found"})
	case domain.ErrNotOwner:
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the owner"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

func (h *Handler) recordView(c *gin.Context) {
	views, err := h.svc.RecordView(c.Request.Context(), c.GetString("pi_uid"), c.Param("id"))
	if err != nil {
		if err == domain.ErrPropertyNotFound {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "views": views})
}

func buildUpdates(req updateListingReq) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, v interface{}) {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}

	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.Type != nil {
		add("type", *req.Type)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Bedrooms != nil {
		add("bedrooms", *req.Bedrooms)
	}
	if req.Bathrooms != nil {
		add("bathrooms", *req.Bathrooms)
	}
	if req.Area != nil {
		add("area", *req.Area)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.ImageURL != nil {
		add("imageUrl", *req.ImageURL)
	}
	if req.Status != nil && (*req.Status == domain.StatusActive || *req.Status == domain.StatusInactive) {
		add("status", *req.Status)
	}

	return updates
}

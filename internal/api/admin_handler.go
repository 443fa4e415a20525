package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/service"
	"github.com/rs/zerolog"
)

// AdminHandler handles admin moderation endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// Login handles POST /v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPending handles GET /v1/admin/comparisons
func (h *AdminHandler) ListPending(c *gin.Context) {
	sort := models.SortOrder(c.DefaultQuery("sort", string(models.SortNewest)))

	comparisons, err := h.services.Comparison.ListPending(c.Request.Context(), sort)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"comparisons": comparisons,
		"count":       len(comparisons),
	})
}

// Approve handles POST /v1/admin/comparisons/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	cmp, err := h.services.Comparison.Approve(c.Request.Context(), c.Param("id"), c.GetString(reviewerIDKey))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// Reject handles POST /v1/admin/comparisons/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cmp, err := h.services.Comparison.Reject(c.Request.Context(), c.Param("id"), c.GetString(reviewerIDKey), req.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

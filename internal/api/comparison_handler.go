package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/service"
	"github.com/rs/zerolog"
)

// ComparisonHandler handles public comparison endpoints
type ComparisonHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewComparisonHandler creates a new ComparisonHandler
func NewComparisonHandler(services *service.Services, log zerolog.Logger) *ComparisonHandler {
	return &ComparisonHandler{
		services: services,
		log:      log.With().Str("handler", "comparison").Logger(),
	}
}

// Submit handles POST /v1/comparisons
func (h *ComparisonHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// Rate limit by email when supplied, otherwise by client IP
	req.ClientKey = req.Email
	if req.ClientKey == "" {
		req.ClientKey = c.ClientIP()
	}

	result, err := h.services.Comparison.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// 201 only for newly generated content; dedup hits answer 200 with the
	// existing record's status.
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// GetBySlug handles GET /v1/comparisons/:slug. Pending comparisons are
// returned too (submitter preview via direct link); only approved reads
// should be counted, which happens through the separate view endpoint.
func (h *ComparisonHandler) GetBySlug(c *gin.Context) {
	cmp, err := h.services.Comparison.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// RecordView handles POST /v1/comparisons/:slug/view
func (h *ComparisonHandler) RecordView(c *gin.Context) {
	if err := h.services.Comparison.RecordView(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

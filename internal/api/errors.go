package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/product-comparison-api/internal/models"
	"github.com/rs/zerolog"
)

// respondError maps the service error taxonomy onto HTTP responses. The
// caller-visible split is: fix your input (400), wait (429), log in (401),
// gone (404), or try again later (5xx).
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var (
		validationErr *models.ValidationError
		rateLimitErr  *models.RateLimitError
		authErr       *models.AuthorizationError
		notFoundErr   *models.NotFoundError
		generationErr *models.GenerationError
		persistErr    *models.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.As(err, &rateLimitErr):
		c.Header("Retry-After", strconv.Itoa(int(rateLimitErr.RetryAfter/time.Second)+1))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "too many requests, please try again later",
		})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": "comparison not found or already moderated"})
	case errors.As(err, &generationErr):
		log.Error().Err(generationErr.Unwrap()).Msg("Generation failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "comparison could not be generated, please try again",
		})
	case errors.As(err, &persistErr):
		log.Error().Err(persistErr.Unwrap()).Str("op", persistErr.Op).Msg("Persistence failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	default:
		log.Error().Err(err).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}

package generator

import (
	"context"

	"github.com/product-comparison-api/internal/models"
)

// Generator produces a structured comparison for two product names. The
// moderation lifecycle depends on this contract only, never on the client.
type Generator interface {
	Generate(ctx context.Context, productA, productB, category, language string) (*models.ComparisonPayload, error)
}

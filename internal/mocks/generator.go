package mocks

import (
	"context"

	"github.com/product-comparison-api/internal/models"
)

// MockGenerator is a mock implementation of generator.Generator
type MockGenerator struct {
	Payload       *models.ComparisonPayload
	GenerateError error
	GenerateCalls int
	LastProductA  string
	LastProductB  string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Payload: &models.ComparisonPayload{
			Summary:        "Both are capable options in their class.",
			Category:       "Smartphones",
			StrengthsA:     []string{"Better camera"},
			StrengthsB:     []string{"Longer battery life"},
			WeaknessesA:    []string{"Higher price"},
			WeaknessesB:    []string{"Slower updates"},
			Recommendation: "Pick A for photography, B for endurance.",
		},
	}
}

func (m *MockGenerator) Generate(ctx context.Context, productA, productB, category, language string) (*models.ComparisonPayload, error) {
	m.GenerateCalls++
	m.LastProductA = productA
	m.LastProductB = productB
	if m.GenerateError != nil {
		return nil, m.GenerateError
	}
	return m.Payload, nil
}

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/product-comparison-api/internal/config"
	"github.com/product-comparison-api/internal/models"
	"github.com/rs/zerolog"
)

const systemPrompt = `You are a product comparison expert. Given two product names, produce a factual, balanced comparison. Respond with ONLY valid JSON matching this shape:
{
  "summary": string,
  "category": string,
  "strengths_a": [string, ...],
  "strengths_b": [string, ...],
  "weaknesses_a": [string, ...],
  "weaknesses_b": [string, ...],
  "recommendation": string,
  "sections": [{"title": string, "body": string}, ...],
  "faqs": [{"question": string, "answer": string}, ...]
}
"sections" and "faqs" are optional. Do not wrap the JSON in markdown fences.`

// Client calls an OpenAI-compatible chat completions endpoint to generate
// comparisons. Remote failures are retried with linear backoff; store
// operations elsewhere are never retried.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxAttempts int
	httpClient  *http.Client
	log         zerolog.Logger
}

// NewClient creates a generator client from configuration
func NewClient(cfg *config.GeneratorConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log.With().Str("component", "generator").Logger(),
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces a comparison payload, retrying the remote call with
// linear backoff (1s, 2s) before the second and third attempts.
func (c *Client) Generate(ctx context.Context, productA, productB, category, language string) (*models.ComparisonPayload, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * time.Second
			c.log.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying comparison generation")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		payload, err := c.generateOnce(ctx, productA, productB, category, language)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("generation failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, productA, productB, category, language string) (*models.ComparisonPayload, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(productA, productB, category, language)},
		},
		Temperature:    0.3,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generator API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("generator API error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("generator API returned no choices")
	}

	return ParsePayload(chat.Choices[0].Message.Content)
}

func buildUserPrompt(productA, productB, category, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compare %q and %q.", productA, productB)
	if category != "" {
		fmt.Fprintf(&b, " Category: %s.", category)
	} else {
		b.WriteString(" Detect the product category yourself.")
	}
	switch language {
	case "", "en":
		b.WriteString(" Write in English.")
	default:
		fmt.Fprintf(&b, " Write in language code %q.", language)
	}
	return b.String()
}

// ParsePayload decodes and shape-validates the model output. Markdown fences
// around the JSON are tolerated even though the prompt forbids them.
func ParsePayload(raw string) (*models.ComparisonPayload, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload models.ComparisonPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if err := validateShape(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func validateShape(p *models.ComparisonPayload) error {
	if strings.TrimSpace(p.Summary) == "" {
		return fmt.Errorf("payload missing summary")
	}
	if strings.TrimSpace(p.Recommendation) == "" {
		return fmt.Errorf("payload missing recommendation")
	}
	if len(p.StrengthsA) == 0 || len(p.StrengthsB) == 0 {
		return fmt.Errorf("payload missing strengths for one or both products")
	}
	if len(p.WeaknessesA) == 0 || len(p.WeaknessesB) == 0 {
		return fmt.Errorf("payload missing weaknesses for one or both products")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/slug"
)

const (
	// MinNameLength is the minimum product name length
	MinNameLength = 3
	// MaxNameLength is the maximum product name length
	MaxNameLength = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SpamCheck decides whether a product name looks like garbage input.
// Pluggable so deployments can swap in a stricter heuristic.
type SpamCheck func(name string) bool

// Validator validates comparison submissions
type Validator struct {
	isSpammy SpamCheck
}

// NewValidator creates a validator with the default spam heuristic
func NewValidator() *Validator {
	return &Validator{isSpammy: DefaultSpamCheck}
}

// NewValidatorWithSpamCheck creates a validator with a custom spam heuristic
func NewValidatorWithSpamCheck(check SpamCheck) *Validator {
	return &Validator{isSpammy: check}
}

// ValidateSubmission checks a submission before any store or generator call.
// Returns a ValidationError describing the first failing guard.
func (v *Validator) ValidateSubmission(req *models.SubmitRequest) *models.ValidationError {
	if err := v.validateName("product_a", req.ProductA); err != nil {
		return err
	}
	if err := v.validateName("product_b", req.ProductB); err != nil {
		return err
	}

	// Self-comparison: reject when both names normalize to the same slug,
	// before the codec ever forms an "x-vs-x" key.
	if slug.Normalize(req.ProductA) == slug.Normalize(req.ProductB) {
		return &models.ValidationError{Message: "products must differ"}
	}

	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		return &models.ValidationError{Field: "email", Message: "invalid email format"}
	}

	return nil
}

func (v *Validator) validateName(field, name string) *models.ValidationError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &models.ValidationError{Field: field, Message: "product name is required"}
	}
	// Length limits are in characters, not bytes; accented names must not
	// lose half their budget to UTF-8 encoding.
	length := utf8.RuneCountInString(trimmed)
	if length < MinNameLength {
		return &models.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("product name must be at least %d characters", MinNameLength),
		}
	}
	if length > MaxNameLength {
		return &models.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("product name must be at most %d characters", MaxNameLength),
		}
	}
	if v.isSpammy(trimmed) {
		return &models.ValidationError{Field: field, Message: "product name failed sanity checks"}
	}
	if slug.Normalize(trimmed) == "" {
		return &models.ValidationError{Field: field, Message: "product name contains no usable characters"}
	}
	return nil
}

// ValidateRejectionReason normalizes a rejection reason: categorical reasons
// pass through unchanged, anything else is stored flagged as "Other: ...".
func ValidateRejectionReason(reason string) (string, *models.ValidationError) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", &models.ValidationError{Field: "reason", Message: "rejection reason is required"}
	}
	for _, allowed := range models.RejectionReasons {
		if trimmed == allowed {
			return trimmed, nil
		}
	}
	if strings.HasPrefix(trimmed, models.OtherReasonPrefix) {
		return trimmed, nil
	}
	return models.OtherReasonPrefix + trimmed, nil
}

// hasRepeatedRun reports whether any rune occurs five or more times in a row
func hasRepeatedRun(name string) bool {
	var prev rune
	run := 0
	for _, r := range name {
		if r == prev {
			run++
			if run >= 5 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// DefaultSpamCheck flags names that fail basic sanity checks: a single
// character repeated five or more times, no letters or digits at all, or
// keyboard-mash sequences.
func DefaultSpamCheck(name string) bool {
	lower := strings.ToLower(name)

	if hasRepeatedRun(lower) {
		return true
	}

	hasAlnum := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			hasAlnum = true
			break
		}
	}
	if !hasAlnum {
		return true
	}

	for _, mash := range []string{"asdf", "qwerty", "zxcv", "hjkl"} {
		if strings.Contains(lower, mash) {
			return true
		}
	}

	return false
}

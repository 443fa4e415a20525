package models

import (
	"time"
)

// Status represents the moderation state of a comparison
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ValidStatuses defines allowed comparison statuses
var ValidStatuses = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// Terminal reports whether the status admits no further transitions.
// View counting on approved records is not a status transition.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Comparison represents a generated product comparison under moderation
type Comparison struct {
	ID                string             `json:"id" db:"id"`
	ProductA          string             `json:"product_a" db:"product_a"`
	ProductB          string             `json:"product_b" db:"product_b"`
	Slug              string             `json:"slug" db:"slug"`
	Category          string             `json:"category" db:"category"`
	Language          string             `json:"language" db:"language"`
	Payload           *ComparisonPayload `json:"payload,omitempty" db:"-"`
	Status            Status             `json:"status" db:"status"`
	ReviewerID        string             `json:"reviewer_id,omitempty" db:"reviewer_id"`
	RejectionReason   string             `json:"rejection_reason,omitempty" db:"rejection_reason"`
	NotificationEmail string             `json:"-" db:"notification_email"`
	ViewCount         int64              `json:"view_count" db:"view_count"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
	ApprovedAt        *time.Time         `json:"approved_at,omitempty" db:"approved_at"`
}

// ComparisonPayload is the structured content produced by the generator.
// The moderation lifecycle treats it as opaque; only the generator client
// validates its shape.
type ComparisonPayload struct {
	Summary        string            `json:"summary"`
	Category       string            `json:"category,omitempty"`
	StrengthsA     []string          `json:"strengths_a"`
	StrengthsB     []string          `json:"strengths_b"`
	WeaknessesA    []string          `json:"weaknesses_a"`
	WeaknessesB    []string          `json:"weaknesses_b"`
	Recommendation string            `json:"recommendation"`
	Sections       []PayloadSection  `json:"sections,omitempty"`
	FAQs           []PayloadQuestion `json:"faqs,omitempty"`
}

// PayloadSection is an optional extended content block
type PayloadSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PayloadQuestion is an optional FAQ entry
type PayloadQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SubmitRequest represents a comparison submission
type SubmitRequest struct {
	ProductA string `json:"product_a"`
	ProductB string `json:"product_b"`
	Category string `json:"category,omitempty"`
	Language string `json:"language,omitempty"`
	Email    string `json:"email,omitempty"`

	// ClientKey identifies the caller for rate limiting (email if given,
	// otherwise client IP). Set by the handler, never by the client body.
	ClientKey string `json:"-"`
}

// SubmitResult is the outcome of a submission
type SubmitResult struct {
	Status  Status             `json:"status"`
	Slug    string             `json:"slug"`
	Payload *ComparisonPayload `json:"payload,omitempty"`

	// Created reports whether this submission generated new content rather
	// than deduplicating against an existing record. Drives the 201 vs 200
	// response split.
	Created bool `json:"created"`

	// PendingLost is set when generation succeeded but the record could not
	// be persisted; the content is returned but never entered moderation.
	PendingLost bool `json:"moderation_unavailable,omitempty"`
}

// SortOrder controls admin list ordering
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// RejectionReasons is the fixed set of categorical rejection reasons.
// Anything else is stored as free text flagged with the "Other: " prefix.
var RejectionReasons = []string{
	"Spam",
	"Duplicate",
	"Inappropriate content",
	"Low quality",
	"Not a product",
}

const OtherReasonPrefix = "Other: "

// Stats summarizes the moderation queue for the metrics endpoint
type Stats struct {
	Pending    int   `json:"pending"`
	Approved   int   `json:"approved"`
	Rejected   int   `json:"rejected"`
	TotalViews int64 `json:"total_views"`
}

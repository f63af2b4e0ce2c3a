package dto

import (
	"time"

	"github.com/google/uuid"
)

// ReportMessageRequest represents a user report against a message. Reasons
// beyond the storage bound are truncated, not rejected.
type ReportMessageRequest struct {
	Reason string `json:"reason"`
}

// ReportResponse represents one report with its reporter and reported
// message joined in for moderator review
type ReportResponse struct {
	ID               int64      `json:"id"`
	MessageID        uuid.UUID  `json:"messageId"`
	ReporterID       int64      `json:"reporterId"`
	ReporterUsername string     `json:"reporterUsername"`
	Reason           *string    `json:"reason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	Reviewed         bool       `json:"reviewed"`
	ReviewedAt       *time.Time `json:"reviewedAt,omitempty"`

	Message *MessageResponse `json:"message,omitempty"`
}

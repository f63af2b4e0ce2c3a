package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxReportReasonLength bounds the stored reason text; longer input is truncated.
const MaxReportReasonLength = 500

// Report represents a user report against a message. Multiple reports per
// message are all retained.
type Report struct {
	ID         int64      `json:"id" db:"id"`
	MessageID  uuid.UUID  `json:"messageId" db:"message_id"`
	ReporterID int64      `json:"reporterId" db:"reporter_id"`
	Reason     *string    `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	Reviewed   bool       `json:"reviewed" db:"reviewed"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty" db:"reviewed_at"`

	// Joined context for moderator listings
	Reporter *User    `json:"reporter,omitempty"`
	Message  *Message `json:"message,omitempty"`
}

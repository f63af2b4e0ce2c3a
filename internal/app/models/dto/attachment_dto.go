package dto

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentResponse represents an uploaded media file with its resolved
// public URL
type AttachmentResponse struct {
	ID        uuid.UUID `json:"id"`
	MimeType  string    `json:"mimeType"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment represents an uploaded media file referenced by messages,
// either directly via Message.AttachmentID or through inline media tokens
// embedded in message text.
type Attachment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UploaderID int64     `json:"uploaderId" db:"uploader_id"`
	MimeType   string    `json:"mimeType" db:"mime_type"`
	FileName   string    `json:"fileName" db:"file_name"`
	StorageKey string    `json:"-" db:"storage_key"`
	FileSize   int64     `json:"fileSize" db:"file_size"`
	Width      *int      `json:"width,omitempty" db:"width"`
	Height     *int      `json:"height,omitempty" db:"height"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

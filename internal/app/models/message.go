package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType represents the content type of a message
type ContentType string

const (
	ContentTypeText   ContentType = "text"
	ContentTypeImage  ContentType = "image"
	ContentTypeVideo  ContentType = "video"
	ContentTypeSystem ContentType = "system"
)

// Message represents a feed post, chat message or thread reply.
// IDs are opaque UUIDs; ordering is defined solely by CreatedAt paired
// with the id as a deterministic tiebreaker.
type Message struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	ConversationID int64       `json:"conversationId" db:"conversation_id"`
	SenderID       *int64      `json:"senderId,omitempty" db:"sender_id"` // nil => system message
	ParentID       *uuid.UUID  `json:"parentId,omitempty" db:"parent_id"` // thread root reference
	ContentText    string      `json:"contentText" db:"content_text"`
	ContentType    ContentType `json:"contentType" db:"content_type"`
	AttachmentID   *uuid.UUID  `json:"attachmentId,omitempty" db:"attachment_id"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	EditedAt       *time.Time  `json:"editedAt,omitempty" db:"edited_at"`
	Deleted        bool        `json:"deleted" db:"deleted"`

	// Related entities
	Sender     *User       `json:"sender,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Hidden returns a copy with content cleared, used for soft-deleted rows.
// The row keeps its position so threads and pagination windows stay valid.
func (m Message) Hidden() Message {
	m.ContentText = ""
	m.AttachmentID = nil
	m.Attachment = nil
	return m
}

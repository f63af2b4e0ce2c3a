package models

import (
	"time"

	"github.com/google/uuid"
)

// Reaction represents a user's reaction to a message.
// At most one reaction per (message, user); last write wins.
type Reaction struct {
	MessageID uuid.UUID `json:"messageId" db:"message_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Label     string    `json:"label" db:"label"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Joined reactor context for listings
	User *User `json:"user,omitempty"`
}

// ReadPointer is the per-(conversation, user) high-water mark of read
// messages. Marking read at message M means "read through M".
type ReadPointer struct {
	ConversationID int64     `json:"conversationId" db:"conversation_id"`
	UserID         int64     `json:"userId" db:"user_id"`
	LastReadID     uuid.UUID `json:"lastReadId" db:"last_read_message_id"`
	LastReadAt     time.Time `json:"lastReadAt" db:"last_read_at"`
}

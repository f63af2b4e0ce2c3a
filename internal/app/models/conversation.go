package models

import "time"

// ConversationType represents the kind of conversation
type ConversationType string

const (
	ConversationTypeDirect  ConversationType = "direct"
	ConversationTypeGroup   ConversationType = "group"
	ConversationTypeGeneral ConversationType = "general"
)

// ParticipantRole represents a participant's role within a conversation
type ParticipantRole string

const (
	ParticipantRoleOwner  ParticipantRole = "owner"
	ParticipantRoleMember ParticipantRole = "member"
)

// Conversation represents a chat conversation or the public feed channel.
// Exactly one conversation of type 'general' exists system-wide.
type Conversation struct {
	ID        int64            `json:"id" db:"id"`
	Type      ConversationType `json:"type" db:"conv_type"`
	Title     *string          `json:"title,omitempty" db:"title"`
	DirectKey *string          `json:"-" db:"direct_key"` // "<minUserID>:<maxUserID>" for direct pairs
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`

	// Related entities
	Participants []*Participant `json:"participants,omitempty"`
}

// Participant represents a user's membership in a conversation
type Participant struct {
	ConversationID int64           `json:"conversationId" db:"conversation_id"`
	UserID         int64           `json:"userId" db:"user_id"`
	Role           ParticipantRole `json:"role" db:"role"`
	JoinedAt       time.Time       `json:"joinedAt" db:"joined_at"`

	User *User `json:"user,omitempty"`
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Request DTOs ---

// CreateGroupRequest represents data for creating a group conversation
type CreateGroupRequest struct {
	Title     string  `json:"title" binding:"required,max=255"`
	MemberIDs []int64 `json:"memberIds"`
}

// DirectConversationRequest resolves the direct conversation with another user
type DirectConversationRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

// AddParticipantRequest represents data for adding a user to a group
type AddParticipantRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

// MarkReadRequest advances the caller's read pointer to the given message
type MarkReadRequest struct {
	MessageID uuid.UUID `json:"messageId" binding:"required"`
}

// --- Response DTOs ---

// ParticipantResponse represents one conversation member
type ParticipantResponse struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// ConversationResponse represents a conversation with its members
type ConversationResponse struct {
	ID           int64                 `json:"id"`
	Type         string                `json:"type"`
	Title        *string               `json:"title,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	Participants []ParticipantResponse `json:"participants,omitempty"`
}

// ConversationSummaryResponse is one row of the caller's conversation list
type ConversationSummaryResponse struct {
	ID              int64                 `json:"id"`
	Type            string                `json:"type"`
	Title           *string               `json:"title,omitempty"`
	LastMessageText *string               `json:"lastMessageText,omitempty"`
	LastMessageAt   *time.Time            `json:"lastMessageAt,omitempty"`
	UnreadCount     int                   `json:"unreadCount"`
	Participants    []ParticipantResponse `json:"participants,omitempty"`
}

// UnreadCountResponse reports the unread total for one conversation
type UnreadCountResponse struct {
	ConversationID int64 `json:"conversationId"`
	UnreadCount    int   `json:"unreadCount"`
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Request DTOs ---

// PostMessageRequest represents data for posting a message to a
// conversation or the public feed. A message needs text, an attachment,
// or both; the service rejects fully empty posts.
type PostMessageRequest struct {
	ContentText  string     `json:"contentText" binding:"max=10000"`
	AttachmentID *uuid.UUID `json:"attachmentId,omitempty"`
	ParentID     *uuid.UUID `json:"parentId,omitempty"`
}

// EditMessageRequest represents data for editing a message's text
type EditMessageRequest struct {
	ContentText string `json:"contentText" binding:"required,max=10000"`
}

// PageRequest represents cursor pagination query parameters. A missing or
// unparsable cursor starts from the newest page. The limit binds as a
// pointer so an absent parameter and an explicit zero stay distinguishable.
type PageRequest struct {
	Cursor string `form:"cursor"`
	Limit  *int   `form:"limit"`
}

// FeedPageRequest extends pagination with the optional hashtag filter
type FeedPageRequest struct {
	PageRequest
	Hashtag string `form:"hashtag"`
}

// --- Response DTOs ---

// MessageResponse represents one message with hydrated sender, media and
// aggregate context
type MessageResponse struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID int64      `json:"conversationId"`
	ParentID       *uuid.UUID `json:"parentId,omitempty"`
	ContentText    string     `json:"contentText"`
	ContentType    string     `json:"contentType"`
	CreatedAt      time.Time  `json:"createdAt"`
	EditedAt       *time.Time `json:"editedAt,omitempty"`
	Deleted        bool       `json:"deleted"`

	// nil sender means a system message
	Sender *UserBasicResponse `json:"sender,omitempty"`

	// Direct attachment first, then inline media in order of appearance
	Attachments []AttachmentResponse `json:"attachments,omitempty"`

	Reactions  map[string]int `json:"reactions,omitempty"`
	ReplyCount int            `json:"replyCount"`
}

// MessagePageResponse represents one page of messages with the cursor for
// the next page
type MessagePageResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor *string           `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

// ThreadResponse represents a thread root with its replies oldest-first
type ThreadResponse struct {
	Root    MessageResponse   `json:"root"`
	Replies []MessageResponse `json:"replies"`
}

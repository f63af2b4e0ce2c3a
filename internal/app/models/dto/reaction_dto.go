package dto

import (
	"time"

	"github.com/google/uuid"
)

// ReactRequest sets the caller's reaction on a message. Reacting twice
// replaces the previous label.
type ReactRequest struct {
	Label string `json:"label" binding:"required,max=32"`
}

// ReactionResponse represents one user's reaction on a message
type ReactionResponse struct {
	MessageID uuid.UUID `json:"messageId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

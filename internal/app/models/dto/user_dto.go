package dto

import "time"

// UserResponse represents a user's full public profile
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Bio         *string   `json:"bio,omitempty"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	IsModerator bool      `json:"isModerator"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserBasicResponse represents the minimal user context embedded in
// messages, participant lists and social listings
type UserBasicResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"` // hashed, excluded from JSON
	Bio         *string    `json:"bio,omitempty" db:"bio"`
	AvatarID    *uuid.UUID `json:"avatarId,omitempty" db:"avatar_id"`
	IsModerator bool       `json:"isModerator" db:"is_moderator"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	Avatar *Attachment `json:"avatar,omitempty"` // Relation, no db tag
}

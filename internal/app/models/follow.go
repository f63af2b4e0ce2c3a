package models

import "time"

// Follow is a directed follower edge. No self-edges; inserts are idempotent.
type Follow struct {
	FollowerID int64     `json:"followerId" db:"follower_id"`
	FollowedID int64     `json:"followedId" db:"followed_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Block is a directed block edge. No self-edges; inserts are idempotent.
type Block struct {
	BlockerID int64     `json:"blockerId" db:"blocker_id"`
	BlockedID int64     `json:"blockedId" db:"blocked_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

package helpers

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize  = 30
	MaxPageSize      = 100
	MaxThreadReplies = 200
)

// Cursor is a composite keyset cursor over (created_at, id). The message id
// acts as a deterministic tiebreaker so rows with identical timestamps never
// straddle a page boundary ambiguously.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%s", c.CreatedAt.UnixMicro(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor token. A malformed or stale token
// returns nil so the caller starts from the beginning instead of erroring;
// infinite-scroll clients hold cursors across reconnects.
func DecodeCursor(token string) *Cursor {
	if token == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil
	}
	return &Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: id}
}

// ClampLimit bounds a caller-supplied page size to [1, MaxPageSize]. A nil
// limit means the caller sent nothing and gets the default; an explicit zero
// or negative value clamps to 1.
func ClampLimit(limit *int) int {
	if limit == nil {
		return DefaultPageSize
	}
	if *limit < 1 {
		return 1
	}
	if *limit > MaxPageSize {
		return MaxPageSize
	}
	return *limit
}

// ClampThreadLimit bounds the single-page thread reply limit to
// [1, MaxThreadReplies].
func ClampThreadLimit(limit int) int {
	if limit <= 0 || limit > MaxThreadReplies {
		return MaxThreadReplies
	}
	return limit
}

// NormalizeHashtag lowercases a tag and ensures the leading '#', so the feed
// filter matches the stored "#tag" form regardless of caller input.
func NormalizeHashtag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}

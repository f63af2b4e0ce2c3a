package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
)

// ReadPointerRepository handles database operations for per-user read
// high-water marks
type ReadPointerRepository struct {
	db *pgxpool.Pool
}

// NewReadPointerRepository creates a new ReadPointerRepository
func NewReadPointerRepository(db *pgxpool.Pool) *ReadPointerRepository {
	return &ReadPointerRepository{db: db}
}

// Advance moves the user's read pointer forward to the given message.
// The pointer only moves forward: marking an older message read after a
// newer one is a no-op.
func (r *ReadPointerRepository) Advance(ctx context.Context, pointer *models.ReadPointer) error {
	query := `
		INSERT INTO read_pointers (conversation_id, user_id, last_read_message_id, last_read_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (conversation_id, user_id)
		DO UPDATE SET
			last_read_message_id = EXCLUDED.last_read_message_id,
			last_read_at = EXCLUDED.last_read_at
		WHERE (EXCLUDED.last_read_at, EXCLUDED.last_read_message_id)
		    > (read_pointers.last_read_at, read_pointers.last_read_message_id)
	`

	_, err := r.db.Exec(ctx, query,
		pointer.ConversationID,
		pointer.UserID,
		pointer.LastReadID,
		pointer.LastReadAt,
	)
	if err != nil {
		return fmt.Errorf("error advancing read pointer: %w", err)
	}

	return nil
}

// Get retrieves the user's read pointer for a conversation, nil when the
// user has never marked anything read there.
func (r *ReadPointerRepository) Get(ctx context.Context, conversationID, userID int64) (*models.ReadPointer, error) {
	query := `
		SELECT conversation_id, user_id, last_read_message_id, last_read_at
		FROM read_pointers
		WHERE conversation_id = $1 AND user_id = $2
	`

	var pointer models.ReadPointer
	err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(
		&pointer.ConversationID,
		&pointer.UserID,
		&pointer.LastReadID,
		&pointer.LastReadAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving read pointer: %w", err)
	}

	return &pointer, nil
}

// UnreadCount counts messages in a conversation the user has not read.
// Own messages, system broadcasts from the user, and soft-deleted rows do
// not count toward unread.
func (r *ReadPointerRepository) UnreadCount(ctx context.Context, conversationID, userID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages m
		LEFT JOIN read_pointers rp
		    ON rp.conversation_id = m.conversation_id AND rp.user_id = $2
		WHERE m.conversation_id = $1
		  AND m.deleted = FALSE
		  AND (m.sender_id IS NULL OR m.sender_id <> $2)
		  AND (rp.last_read_at IS NULL
		       OR (m.created_at, m.id) > (rp.last_read_at, rp.last_read_message_id))
	`

	var count int
	if err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}

	return count, nil
}

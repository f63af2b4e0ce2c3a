package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/dberrors"
)

// ConversationRepository handles database operations for conversations
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// DirectKey builds the unordered-pair key for a direct conversation.
func DirectKey(userA, userB int64) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%d:%d", userA, userB)
}

// GetByID retrieves a conversation by id
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	query := `
		SELECT id, conv_type, title, direct_key, created_at
		FROM conversations
		WHERE id = $1
	`

	var conv models.Conversation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.Type,
		&conv.Title,
		&conv.DirectKey,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Conversation not found")
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}

	return &conv, nil
}

// GetGeneral retrieves the single system-wide general conversation.
func (r *ConversationRepository) GetGeneral(ctx context.Context) (*models.Conversation, error) {
	query := `
		SELECT id, conv_type, title, direct_key, created_at
		FROM conversations
		WHERE conv_type = 'general'
	`

	var conv models.Conversation
	err := r.db.QueryRow(ctx, query).Scan(
		&conv.ID,
		&conv.Type,
		&conv.Title,
		&conv.DirectKey,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("General conversation not provisioned")
		}
		return nil, fmt.Errorf("error retrieving general conversation: %w", err)
	}

	return &conv, nil
}

// Create inserts a new conversation row
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) (int64, error) {
	query := `
		INSERT INTO conversations (conv_type, title, direct_key)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, conv.Type, conv.Title, conv.DirectKey).
		Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating conversation: %w", err)
	}

	return conv.ID, nil
}

// GetOrCreateDirect resolves the direct conversation for an unordered user
// pair, creating it if needed. Safe under concurrent calls from both sides:
// a racing insert trips the unique constraint on direct_key and the winner's
// row is re-read, so both callers converge on one conversation.
func (r *ConversationRepository) GetOrCreateDirect(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error) {
	key := DirectKey(userA, userB)

	existing, err := r.getByDirectKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	conv := &models.Conversation{
		Type:      models.ConversationTypeDirect,
		DirectKey: &key,
	}

	insert := `
		INSERT INTO conversations (conv_type, title, direct_key)
		VALUES ($1, NULL, $2)
		RETURNING id, created_at
	`
	err = r.db.QueryRow(ctx, insert, conv.Type, key).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "conversations_direct_key_key") {
			// Lost the race; the other side's row wins
			winner, getErr := r.getByDirectKey(ctx, key)
			if getErr != nil {
				return nil, false, fmt.Errorf("error resolving racing direct conversation: %w", getErr)
			}
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("error creating direct conversation: %w", err)
	}

	return conv, true, nil
}

func (r *ConversationRepository) getByDirectKey(ctx context.Context, key string) (*models.Conversation, error) {
	query := `
		SELECT id, conv_type, title, direct_key, created_at
		FROM conversations
		WHERE direct_key = $1
	`

	var conv models.Conversation
	err := r.db.QueryRow(ctx, query, key).Scan(
		&conv.ID,
		&conv.Type,
		&conv.Title,
		&conv.DirectKey,
		&conv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ConversationSummary is one row of a user's conversation list: the
// conversation plus last-activity and unread aggregates computed per request.
type ConversationSummary struct {
	Conversation    models.Conversation
	LastMessageText *string
	LastMessageAt   *time.Time
	LastDeleted     bool
	UnreadCount     int
}

// ListForUser returns the conversations the user participates in, with
// per-conversation unread counts and last-message context, sorted by most
// recent activity (conversation creation time when no messages exist).
func (r *ConversationRepository) ListForUser(ctx context.Context, userID int64) ([]*ConversationSummary, error) {
	// The lateral joins compute the unread and last-message aggregates on
	// every read instead of maintaining counters.
	query := `
		SELECT
			c.id, c.conv_type, c.title, c.created_at,
			lm.content_text, lm.created_at, COALESCE(lm.deleted, FALSE),
			COALESCE(unread.cnt, 0)
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id AND p.user_id = $1
		LEFT JOIN read_pointers rp ON rp.conversation_id = c.id AND rp.user_id = $1
		LEFT JOIN LATERAL (
			SELECT m.content_text, m.created_at, m.deleted
			FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS cnt
			FROM messages m
			WHERE m.conversation_id = c.id
			  AND m.deleted = FALSE
			  AND (m.sender_id IS NULL OR m.sender_id <> $1)
			  AND (rp.last_read_at IS NULL
			       OR (m.created_at, m.id) > (rp.last_read_at, rp.last_read_message_id))
		) unread ON TRUE
		ORDER BY COALESCE(lm.created_at, c.created_at) DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var summaries []*ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		if err := rows.Scan(
			&s.Conversation.ID,
			&s.Conversation.Type,
			&s.Conversation.Title,
			&s.Conversation.CreatedAt,
			&s.LastMessageText,
			&s.LastMessageAt,
			&s.LastDeleted,
			&s.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("error scanning conversation row: %w", err)
		}
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return summaries, nil
}

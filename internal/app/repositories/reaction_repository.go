package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
)

// ReactionRepository handles database operations for message reactions
type ReactionRepository struct {
	db *pgxpool.Pool
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *pgxpool.Pool) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Upsert sets a user's reaction on a message. One reaction per user per
// message: a second reaction replaces the first.
func (r *ReactionRepository) Upsert(ctx context.Context, reaction *models.Reaction) error {
	query := `
		INSERT INTO reactions (message_id, user_id, label)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id)
		DO UPDATE SET label = EXCLUDED.label, created_at = NOW()
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		reaction.MessageID,
		reaction.UserID,
		reaction.Label,
	).Scan(&reaction.CreatedAt)

	if err != nil {
		return fmt.Errorf("error upserting reaction: %w", err)
	}

	return nil
}

// Delete removes a user's reaction from a message. Removing an absent
// reaction is a no-op.
func (r *ReactionRepository) Delete(ctx context.Context, messageID uuid.UUID, userID int64) error {
	query := squirrel.Delete("reactions").
		Where("message_id = ? AND user_id = ?", messageID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error removing reaction: %w", err)
	}

	return nil
}

// ReactionCounts are the per-label totals for one message.
type ReactionCounts map[string]int

// CountsFor aggregates reaction counts per label for a batch of messages,
// computed fresh on every call.
func (r *ReactionRepository) CountsFor(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]ReactionCounts, error) {
	counts := make(map[uuid.UUID]ReactionCounts)
	if len(messageIDs) == 0 {
		return counts, nil
	}

	query := squirrel.Select("message_id", "label", "COUNT(*)").
		From("reactions").
		Where(squirrel.Eq{"message_id": messageIDs}).
		GroupBy("message_id", "label").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID uuid.UUID
		var label string
		var count int
		if err := rows.Scan(&messageID, &label, &count); err != nil {
			return nil, fmt.Errorf("error scanning reaction count row: %w", err)
		}
		if counts[messageID] == nil {
			counts[messageID] = make(ReactionCounts)
		}
		counts[messageID][label] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction count rows: %w", err)
	}

	return counts, nil
}

// ListForMessage returns every reaction on one message with reactor context.
func (r *ReactionRepository) ListForMessage(ctx context.Context, messageID uuid.UUID) ([]*models.Reaction, error) {
	query := squirrel.Select("r.message_id", "r.user_id", "r.label", "r.created_at", "u.username").
		From("reactions r").
		Join("users u ON u.id = r.user_id").
		Where("r.message_id = ?", messageID).
		OrderBy("r.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var reactions []*models.Reaction
	for rows.Next() {
		var reaction models.Reaction
		var user models.User
		if err := rows.Scan(
			&reaction.MessageID,
			&reaction.UserID,
			&reaction.Label,
			&reaction.CreatedAt,
			&user.Username,
		); err != nil {
			return nil, fmt.Errorf("error scanning reaction row: %w", err)
		}
		user.ID = reaction.UserID
		reaction.User = &user
		reactions = append(reactions, &reaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction rows: %w", err)
	}

	return reactions, nil
}

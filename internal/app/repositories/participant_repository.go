package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
)

// ParticipantRepository handles database operations for conversation participants
type ParticipantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// IsParticipant checks if a user has a participant row in a conversation
func (r *ParticipantRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	query := squirrel.Select("1").
		From("participants").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var exists int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// ListByConversationID retrieves all participants for a conversation with
// their user context
func (r *ParticipantRepository) ListByConversationID(ctx context.Context, conversationID int64) ([]*models.Participant, error) {
	query := squirrel.Select(
		"p.conversation_id", "p.user_id", "p.role", "p.joined_at",
		"u.username", "u.avatar_id",
	).
		From("participants p").
		Join("users u ON u.id = p.user_id").
		Where("p.conversation_id = ?", conversationID).
		OrderBy("p.joined_at ASC").
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

	var participants []*models.Participant
	for rows.Next() {
		var participant models.Participant
		var user models.User
		if err := rows.Scan(
			&participant.ConversationID,
			&participant.UserID,
			&participant.Role,
			&participant.JoinedAt,
			&user.Username,
			&user.AvatarID,
		); err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		user.ID = participant.UserID
		participant.User = &user
		participants = append(participants, &participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}

	return participants, nil
}

// ListByConversationIDs retrieves participants for a set of conversations in
// one query, keyed by conversation id.
func (r *ParticipantRepository) ListByConversationIDs(ctx context.Context, conversationIDs []int64) (map[int64][]*models.Participant, error) {
	result := make(map[int64][]*models.Participant)
	if len(conversationIDs) == 0 {
		return result, nil
	}

	query := squirrel.Select(
		"p.conversation_id", "p.user_id", "p.role", "p.joined_at",
		"u.username", "u.avatar_id",
	).
		From("participants p").
		Join("users u ON u.id = p.user_id").
		Where(squirrel.Eq{"p.conversation_id": conversationIDs}).
		OrderBy("p.conversation_id", "p.joined_at ASC").
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
		var participant models.Participant
		var user models.User
		if err := rows.Scan(
			&participant.ConversationID,
			&participant.UserID,
			&participant.Role,
			&participant.JoinedAt,
			&user.Username,
			&user.AvatarID,
		); err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		user.ID = participant.UserID
		participant.User = &user
		result[participant.ConversationID] = append(result[participant.ConversationID], &participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}

	return result, nil
}

// Add inserts a participant row. Adding an existing participant is a no-op.
func (r *ParticipantRepository) Add(ctx context.Context, conversationID, userID int64, role models.ParticipantRole) error {
	query := `
		INSERT INTO participants (conversation_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, conversationID, userID, role); err != nil {
		return fmt.Errorf("error adding participant: %w", err)
	}

	return nil
}

// Remove deletes a participant row. Removing an absent participant is a no-op.
func (r *ParticipantRepository) Remove(ctx context.Context, conversationID, userID int64) error {
	query := squirrel.Delete("participants").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error removing participant: %w", err)
	}

	return nil
}

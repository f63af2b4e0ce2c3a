package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BlockRepository handles database operations for block edges
type BlockRepository struct {
	db *pgxpool.Pool
}

// NewBlockRepository creates a new BlockRepository
func NewBlockRepository(db *pgxpool.Pool) *BlockRepository {
	return &BlockRepository{db: db}
}

// Add inserts a block edge. Returns false without error when the edge
// already existed.
func (r *BlockRepository) Add(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, blockerID, blockedID)
	if err != nil {
		return false, fmt.Errorf("error creating block: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Remove deletes a block edge. Removing an absent edge is a no-op.
func (r *BlockRepository) Remove(ctx context.Context, blockerID, blockedID int64) error {
	query := squirrel.Delete("blocks").
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error removing block: %w", err)
	}

	return nil
}

// IsBlockedEither reports whether a block exists in either direction
// between the two users.
func (r *BlockRepository) IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`

	var blocked bool
	if err := r.db.QueryRow(ctx, query, userA, userB).Scan(&blocked); err != nil {
		return false, fmt.Errorf("error checking block: %w", err)
	}

	return blocked, nil
}

// BlockedIDs returns the union of users blocked by and blocking the given
// user, for filtering suggestion and listing surfaces.
func (r *BlockRepository) BlockedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	query := `
		SELECT blocked_id FROM blocks WHERE blocker_id = $1
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_id = $1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	blocked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning blocked id: %w", err)
		}
		blocked[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocked ids: %w", err)
	}

	return blocked, nil
}

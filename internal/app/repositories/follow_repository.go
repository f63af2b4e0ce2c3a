package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
)

// FollowRepository handles database operations for follower edges
type FollowRepository struct {
	db *pgxpool.Pool
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{db: db}
}

// Add inserts a follower edge. Returns false without error when the edge
// already existed.
func (r *FollowRepository) Add(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("error creating follow: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Remove deletes a follower edge. Removing an absent edge is a no-op.
func (r *FollowRepository) Remove(ctx context.Context, followerID, followedID int64) error {
	query := squirrel.Delete("follows").
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error removing follow: %w", err)
	}

	return nil
}

// Exists reports whether follower follows followed.
func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, followerID, followedID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking follow: %w", err)
	}

	return exists, nil
}

// ListFollowing returns the users the given user follows, newest edge first.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID int64) ([]*models.User, error) {
	return r.listEdgeUsers(ctx, "f.followed_id", "f.follower_id", userID)
}

// ListFollowers returns the users following the given user, newest edge first.
func (r *FollowRepository) ListFollowers(ctx context.Context, userID int64) ([]*models.User, error) {
	return r.listEdgeUsers(ctx, "f.follower_id", "f.followed_id", userID)
}

func (r *FollowRepository) listEdgeUsers(ctx context.Context, selectSide, whereSide string, userID int64) ([]*models.User, error) {
	query := squirrel.Select("u.id", "u.username", "u.bio", "u.avatar_id").
		From("follows f").
		Join("users u ON u.id = " + selectSide).
		Where(whereSide+" = ?", userID).
		OrderBy("f.created_at DESC").
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

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Bio, &user.AvatarID); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// FollowedIDs returns the set of user ids the given user follows.
func (r *FollowRepository) FollowedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT followed_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	followed := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning followed id: %w", err)
		}
		followed[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating followed ids: %w", err)
	}

	return followed, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/helpers"
)

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

var messageColumns = []string{
	"m.id", "m.conversation_id", "m.sender_id", "m.parent_id",
	"m.content_text", "m.content_type", "m.attachment_id",
	"m.created_at", "m.edited_at", "m.deleted",
	"u.username", "u.avatar_id",
	"a.uploader_id", "a.mime_type", "a.file_name", "a.storage_key",
	"a.file_size", "a.width", "a.height", "a.created_at",
}

func messageSelect() squirrel.SelectBuilder {
	return squirrel.Select(messageColumns...).
		From("messages m").
		LeftJoin("users u ON u.id = m.sender_id").
		LeftJoin("attachments a ON a.id = m.attachment_id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var message models.Message
	var username *string
	var avatarID *uuid.UUID
	var uploaderID *int64
	var mimeType, fileName, storageKey *string
	var fileSize *int64
	var width, height *int
	var attachmentCreatedAt *time.Time

	err := row.Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.ParentID,
		&message.ContentText,
		&message.ContentType,
		&message.AttachmentID,
		&message.CreatedAt,
		&message.EditedAt,
		&message.Deleted,
		&username,
		&avatarID,
		&uploaderID,
		&mimeType,
		&fileName,
		&storageKey,
		&fileSize,
		&width,
		&height,
		&attachmentCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if message.SenderID != nil && username != nil {
		message.Sender = &models.User{
			ID:       *message.SenderID,
			Username: *username,
			AvatarID: avatarID,
		}
	}

	if message.AttachmentID != nil && uploaderID != nil {
		attachment := &models.Attachment{
			ID:         *message.AttachmentID,
			UploaderID: *uploaderID,
		}
		if mimeType != nil {
			attachment.MimeType = *mimeType
		}
		if fileName != nil {
			attachment.FileName = *fileName
		}
		if storageKey != nil {
			attachment.StorageKey = *storageKey
		}
		if fileSize != nil {
			attachment.FileSize = *fileSize
		}
		attachment.Width = width
		attachment.Height = height
		if attachmentCreatedAt != nil {
			attachment.CreatedAt = *attachmentCreatedAt
		}
		message.Attachment = attachment
	}

	return &message, nil
}

// Create inserts a new message. The caller supplies the opaque id.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (
			id, conversation_id, sender_id, parent_id,
			content_text, content_type, attachment_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ID,
		message.ConversationID,
		message.SenderID,
		message.ParentID,
		message.ContentText,
		message.ContentType,
		message.AttachmentID,
	).Scan(&message.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}

	return nil
}

// GetByID retrieves a message with its sender and direct attachment joined
func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	query := messageSelect().Where("m.id = ?", id)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	message, err := scanMessage(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Message not found")
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}

	return message, nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Message, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// ListConversationPage fetches a descending keyset page of a conversation's
// history. Soft-deleted rows are included so thread structure and pagination
// windows stay valid; the service hides their content.
func (r *MessageRepository) ListConversationPage(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int) ([]*models.Message, error) {
	query := messageSelect().
		Where("m.conversation_id = ?", conversationID).
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(uint64(limit))

	if cursor != nil {
		query = query.Where("(m.created_at, m.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	return r.queryMessages(ctx, query)
}

// ListFeedPage fetches a descending keyset page of the public feed. System
// and soft-deleted messages never appear; the optional hashtag filter is a
// case-insensitive substring match applied before windowing so page
// boundaries remain correct under filtering.
func (r *MessageRepository) ListFeedPage(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int, hashtag string) ([]*models.Message, error) {
	query := messageSelect().
		Where("m.conversation_id = ?", conversationID).
		Where("m.content_type <> ?", models.ContentTypeSystem).
		Where("m.deleted = FALSE").
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(uint64(limit))

	if cursor != nil {
		query = query.Where("(m.created_at, m.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	if hashtag != "" {
		query = query.Where("m.content_text ILIKE ?", "%"+hashtag+"%")
	}

	return r.queryMessages(ctx, query)
}

// ListThreadReplies fetches a thread's replies oldest-first, single page.
func (r *MessageRepository) ListThreadReplies(ctx context.Context, parentID uuid.UUID, limit int) ([]*models.Message, error) {
	query := messageSelect().
		Where("m.parent_id = ?", parentID).
		OrderBy("m.created_at ASC", "m.id ASC").
		Limit(uint64(limit))

	return r.queryMessages(ctx, query)
}

// MarkEdited updates a message's text and stamps the edit time. Creation time
// and ordering position are untouched.
func (r *MessageRepository) MarkEdited(ctx context.Context, id uuid.UUID, newText string) (time.Time, error) {
	query := `
		UPDATE messages
		SET content_text = $2, edited_at = NOW()
		WHERE id = $1
		RETURNING edited_at
	`

	var editedAt time.Time
	if err := r.db.QueryRow(ctx, query, id, newText).Scan(&editedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, apperrors.NewNotFoundError("Message not found")
		}
		return time.Time{}, fmt.Errorf("error editing message: %w", err)
	}

	return editedAt, nil
}

// MarkDeleted performs the logical delete: the row and its position persist,
// only the flag flips.
func (r *MessageRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE messages SET deleted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Message not found")
	}
	return nil
}

// ReplyCounts returns the number of replies per thread root, grouped fresh
// per request
func (r *MessageRepository) ReplyCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	if len(ids) == 0 {
		return counts, nil
	}

	query := squirrel.Select("parent_id", "COUNT(*)").
		From("messages").
		Where(squirrel.Eq{"parent_id": ids}).
		GroupBy("parent_id").
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
		var parentID uuid.UUID
		var count int
		if err := rows.Scan(&parentID, &count); err != nil {
			return nil, fmt.Errorf("error scanning reply count row: %w", err)
		}
		counts[parentID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reply count rows: %w", err)
	}

	return counts, nil
}

// RecentDistinctSenders returns the distinct senders among the most recent
// window of non-system messages in a conversation, most recent first.
func (r *MessageRepository) RecentDistinctSenders(ctx context.Context, conversationID int64, window int) ([]int64, error) {
	query := `
		SELECT sender_id
		FROM (
			SELECT sender_id, created_at, id
			FROM messages
			WHERE conversation_id = $1
			  AND sender_id IS NOT NULL
			  AND deleted = FALSE
			  AND content_type <> 'system'
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		GROUP BY sender_id
		ORDER BY MAX(created_at) DESC
	`

	rows, err := r.db.Query(ctx, query, conversationID, window)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning sender row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sender rows: %w", err)
	}

	return ids, nil
}

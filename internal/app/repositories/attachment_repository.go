package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/pkg/apperrors"
)

// AttachmentRepository handles database operations for attachments
type AttachmentRepository struct {
	db *pgxpool.Pool
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts a new attachment record
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	query := `
		INSERT INTO attachments (id, uploader_id, mime_type, file_name, storage_key, file_size, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		attachment.ID,
		attachment.UploaderID,
		attachment.MimeType,
		attachment.FileName,
		attachment.StorageKey,
		attachment.FileSize,
		attachment.Width,
		attachment.Height,
	).Scan(&attachment.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating attachment: %w", err)
	}

	return nil
}

// GetByID retrieves an attachment by id
func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	query := squirrel.Select(attachmentColumns()...).
		From("attachments").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	attachment, err := scanAttachment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Attachment not found")
		}
		return nil, fmt.Errorf("error retrieving attachment: %w", err)
	}

	return attachment, nil
}

// GetByIDs retrieves multiple attachments keyed by id. Unknown ids are
// silently absent from the result map.
func (r *AttachmentRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Attachment, error) {
	attachments := make(map[uuid.UUID]*models.Attachment)
	if len(ids) == 0 {
		return attachments, nil
	}

	query := squirrel.Select(attachmentColumns()...).
		From("attachments").
		Where(squirrel.Eq{"id": ids}).
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
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning attachment row: %w", err)
		}
		attachments[attachment.ID] = attachment
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachment rows: %w", err)
	}

	return attachments, nil
}

func attachmentColumns() []string {
	return []string{"id", "uploader_id", "mime_type", "file_name", "storage_key", "file_size", "width", "height", "created_at"}
}

func scanAttachment(row pgx.Row) (*models.Attachment, error) {
	var attachment models.Attachment
	err := row.Scan(
		&attachment.ID,
		&attachment.UploaderID,
		&attachment.MimeType,
		&attachment.FileName,
		&attachment.StorageKey,
		&attachment.FileSize,
		&attachment.Width,
		&attachment.Height,
		&attachment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

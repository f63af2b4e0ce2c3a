package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/pkg/apperrors"
)

// ReportRepository handles database operations for message reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report. Duplicate reports from the same user are
// retained as separate rows.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (message_id, reporter_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		report.MessageID,
		report.ReporterID,
		report.Reason,
	).Scan(&report.ID, &report.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating report: %w", err)
	}

	return nil
}

// ListPending returns unreviewed reports newest-first with reporter and
// reported-message context joined in.
func (r *ReportRepository) ListPending(ctx context.Context, limit int) ([]*models.Report, error) {
	query := `
		SELECT
			rep.id, rep.message_id, rep.reporter_id, rep.reason,
			rep.created_at, rep.reviewed, rep.reviewed_at,
			u.username,
			m.conversation_id, m.sender_id, m.content_text, m.content_type,
			m.created_at, m.deleted
		FROM reports rep
		JOIN users u ON u.id = rep.reporter_id
		JOIN messages m ON m.id = rep.message_id
		WHERE rep.reviewed = FALSE
		ORDER BY rep.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var report models.Report
		var reporter models.User
		var message models.Message
		if err := rows.Scan(
			&report.ID,
			&report.MessageID,
			&report.ReporterID,
			&report.Reason,
			&report.CreatedAt,
			&report.Reviewed,
			&report.ReviewedAt,
			&reporter.Username,
			&message.ConversationID,
			&message.SenderID,
			&message.ContentText,
			&message.ContentType,
			&message.CreatedAt,
			&message.Deleted,
		); err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		reporter.ID = report.ReporterID
		message.ID = report.MessageID
		report.Reporter = &reporter
		report.Message = &message
		reports = append(reports, &report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, nil
}

// Resolve marks a report reviewed. Resolving an already reviewed report
// leaves its original review time untouched.
func (r *ReportRepository) Resolve(ctx context.Context, id int64) error {
	query := `
		UPDATE reports
		SET reviewed = TRUE, reviewed_at = COALESCE(reviewed_at, NOW())
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error resolving report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Report not found")
	}

	return nil
}

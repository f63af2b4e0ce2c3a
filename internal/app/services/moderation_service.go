package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
)

// pendingReportsLimit bounds one moderation queue listing.
const pendingReportsLimit = 100

// ModerationService defines the interface for the report queue
type ModerationService interface {
	ReportMessage(ctx context.Context, reporterID int64, messageID uuid.UUID, req *dto.ReportMessageRequest) (*dto.ReportResponse, error)
	ListPendingReports(ctx context.Context) ([]dto.ReportResponse, error)
	ResolveReport(ctx context.Context, reportID int64) error
}

// moderationServiceImpl implements ModerationService
type moderationServiceImpl struct {
	reportStore  reportStore
	messageStore messageStore
	hydrator     *messageHydrator
	logger       zerolog.Logger
}

// NewModerationService creates a new ModerationService
func NewModerationService(
	reportStore reportStore,
	messageStore messageStore,
	hydrator *messageHydrator,
	logger zerolog.Logger,
) ModerationService {
	return &moderationServiceImpl{
		reportStore:  reportStore,
		messageStore: messageStore,
		hydrator:     hydrator,
		logger:       logger,
	}
}

// ReportMessage files a report against a message. Every report is retained,
// including repeats from the same user. An overlong reason is truncated to
// the storage bound rather than rejected.
func (s *moderationServiceImpl) ReportMessage(ctx context.Context, reporterID int64, messageID uuid.UUID, req *dto.ReportMessageRequest) (*dto.ReportResponse, error) {
	if _, err := s.messageStore.GetByID(ctx, messageID); err != nil {
		return nil, err
	}

	report := &models.Report{
		MessageID:  messageID,
		ReporterID: reporterID,
	}

	reason := truncateReason(strings.TrimSpace(req.Reason))
	if reason != "" {
		report.Reason = &reason
	}

	if err := s.reportStore.Create(ctx, report); err != nil {
		s.logger.Error().Err(err).Str("messageID", messageID.String()).Msg("Failed to create report")
		return nil, err
	}

	s.logger.Info().
		Int64("reportID", report.ID).
		Str("messageID", messageID.String()).
		Int64("reporterID", reporterID).
		Msg("Message reported")

	return &dto.ReportResponse{
		ID:         report.ID,
		MessageID:  report.MessageID,
		ReporterID: report.ReporterID,
		Reason:     report.Reason,
		CreatedAt:  report.CreatedAt,
	}, nil
}

// truncateReason bounds the reason to the storage limit without splitting a
// multi-byte rune, so the stored text stays valid UTF-8.
func truncateReason(reason string) string {
	if len(reason) <= models.MaxReportReasonLength {
		return reason
	}
	cut := models.MaxReportReasonLength
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}

// ListPendingReports returns the unreviewed report queue newest-first with
// reported-message context for moderators.
func (s *moderationServiceImpl) ListPendingReports(ctx context.Context) ([]dto.ReportResponse, error) {
	reports, err := s.reportStore.ListPending(ctx, pendingReportsLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list pending reports")
		return nil, err
	}

	responses := make([]dto.ReportResponse, 0, len(reports))
	for _, report := range reports {
		response := dto.ReportResponse{
			ID:         report.ID,
			MessageID:  report.MessageID,
			ReporterID: report.ReporterID,
			Reason:     report.Reason,
			CreatedAt:  report.CreatedAt,
			Reviewed:   report.Reviewed,
			ReviewedAt: report.ReviewedAt,
		}
		if report.Reporter != nil {
			response.ReporterUsername = report.Reporter.Username
		}
		if report.Message != nil {
			response.Message = s.hydrator.hydrateOne(ctx, report.Message)
		}
		responses = append(responses, response)
	}

	return responses, nil
}

// ResolveReport marks a report reviewed. Resolving twice is harmless; the
// first review time stands.
func (s *moderationServiceImpl) ResolveReport(ctx context.Context, reportID int64) error {
	return s.reportStore.Resolve(ctx, reportID)
}

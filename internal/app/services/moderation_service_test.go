package services

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
)

func newTestModerationService(reports *fakeReportStore, messages *fakeMessageStore) ModerationService {
	hydrator := newTestHydrator(nil, nil, messages)
	return NewModerationService(reports, messages, hydrator, zerolog.Nop())
}

func TestReportMessage(t *testing.T) {
	message := testMessage(1, 11, "sketchy", time.Now())
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}

	var stored *models.Report
	reports := &fakeReportStore{
		createFn: func(ctx context.Context, report *models.Report) error {
			report.ID = 1
			report.CreatedAt = time.Now()
			stored = report
			return nil
		},
	}

	svc := newTestModerationService(reports, messages)

	response, err := svc.ReportMessage(context.Background(), 10, message.ID, &dto.ReportMessageRequest{Reason: "  spam  "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), response.ID)
	require.NotNil(t, stored.Reason)
	assert.Equal(t, "spam", *stored.Reason)
}

func TestReportMessageBlankReason(t *testing.T) {
	message := testMessage(1, 11, "no comment", time.Now())
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}
	reports := &fakeReportStore{
		createFn: func(ctx context.Context, report *models.Report) error {
			assert.Nil(t, report.Reason, "whitespace-only reason stored as absent")
			return nil
		},
	}

	_, err := newTestModerationService(reports, messages).ReportMessage(context.Background(), 10, message.ID, &dto.ReportMessageRequest{Reason: "   "})
	require.NoError(t, err)
}

func TestReportMessageTruncatesReason(t *testing.T) {
	message := testMessage(1, 11, "wall of text", time.Now())
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}

	tests := []struct {
		name    string
		reason  string
		wantLen int
	}{
		{"ascii", strings.Repeat("x", models.MaxReportReasonLength+100), models.MaxReportReasonLength},
		// 3-byte runes: the byte bound falls mid-rune, truncation must back up
		{"multibyte", strings.Repeat("€", 300), models.MaxReportReasonLength - models.MaxReportReasonLength%3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &fakeReportStore{
				createFn: func(ctx context.Context, report *models.Report) error {
					require.NotNil(t, report.Reason)
					assert.Len(t, *report.Reason, tt.wantLen)
					assert.True(t, utf8.ValidString(*report.Reason), "truncation must not split a rune")
					return nil
				},
			}

			_, err := newTestModerationService(reports, messages).ReportMessage(context.Background(), 10, message.ID, &dto.ReportMessageRequest{Reason: tt.reason})
			require.NoError(t, err)
		})
	}
}

func TestReportUnknownMessage(t *testing.T) {
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return nil, apperrors.NewNotFoundError("Message not found")
		},
	}

	_, err := newTestModerationService(&fakeReportStore{}, messages).ReportMessage(context.Background(), 10, uuid.New(), &dto.ReportMessageRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListPendingReportsHydratesMessages(t *testing.T) {
	reported := testMessage(1, 11, "reported content", time.Now())
	reason := "spam"
	reports := &fakeReportStore{
		listPendingFn: func(ctx context.Context, limit int) ([]*models.Report, error) {
			assert.Equal(t, pendingReportsLimit, limit)
			return []*models.Report{
				{
					ID:         1,
					MessageID:  reported.ID,
					ReporterID: 10,
					Reason:     &reason,
					CreatedAt:  time.Now(),
					Reporter:   &models.User{ID: 10, Username: "snitch"},
					Message:    reported,
				},
			}, nil
		},
	}

	svc := newTestModerationService(reports, &fakeMessageStore{})

	list, err := svc.ListPendingReports(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "snitch", list[0].ReporterUsername)
	require.NotNil(t, list[0].Message)
	assert.Equal(t, "reported content", list[0].Message.ContentText)
}

func TestResolveReportPassesThrough(t *testing.T) {
	resolved := int64(0)
	reports := &fakeReportStore{
		resolveFn: func(ctx context.Context, id int64) error {
			resolved = id
			return nil
		},
	}

	err := newTestModerationService(reports, &fakeMessageStore{}).ResolveReport(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resolved)
}

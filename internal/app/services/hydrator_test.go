package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/repositories"
)

func testAttachment(key string) *models.Attachment {
	return &models.Attachment{
		ID:         uuid.New(),
		MimeType:   "image/jpeg",
		FileName:   key + ".jpg",
		FileSize:   1024,
		StorageKey: key,
		CreatedAt:  time.Now(),
	}
}

func TestHydrateDirectAndInlineMedia(t *testing.T) {
	direct := testAttachment("direct")
	inline := testAttachment("inline")

	message := testMessage(1, 10, fmt.Sprintf("look [media:%s] and again [media:%s]", direct.ID, inline.ID), time.Now())
	message.AttachmentID = &direct.ID
	message.Attachment = direct

	attachments := &fakeAttachmentStore{
		getByIDsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Attachment, error) {
			return map[uuid.UUID]*models.Attachment{direct.ID: direct, inline.ID: inline}, nil
		},
	}

	h := newTestHydrator(attachments, nil, &fakeMessageStore{})

	response := h.hydrateOne(context.Background(), message)

	// Direct attachment first, inline token referencing it not doubled
	require.Len(t, response.Attachments, 2)
	assert.Equal(t, direct.ID, response.Attachments[0].ID)
	assert.Equal(t, inline.ID, response.Attachments[1].ID)
	assert.Equal(t, "http://localhost:8080/uploads/direct", response.Attachments[0].URL)
}

func TestHydrateUnknownInlineMediaSkipped(t *testing.T) {
	message := testMessage(1, 10, fmt.Sprintf("broken [media:%s]", uuid.New()), time.Now())

	attachments := &fakeAttachmentStore{
		getByIDsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Attachment, error) {
			return map[uuid.UUID]*models.Attachment{}, nil
		},
	}

	h := newTestHydrator(attachments, nil, &fakeMessageStore{})

	response := h.hydrateOne(context.Background(), message)
	assert.Empty(t, response.Attachments)
}

func TestHydrateDeletedMessage(t *testing.T) {
	direct := testAttachment("direct")
	message := testMessage(1, 10, "had content", time.Now())
	message.AttachmentID = &direct.ID
	message.Attachment = direct
	message.Deleted = true

	reactions := &fakeReactionStore{
		countsForFn: func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error) {
			return map[uuid.UUID]repositories.ReactionCounts{
				message.ID: {"🔥": 3},
			}, nil
		},
	}

	h := newTestHydrator(nil, reactions, &fakeMessageStore{})

	response := h.hydrateOne(context.Background(), message)

	assert.True(t, response.Deleted)
	assert.Empty(t, response.ContentText)
	assert.Empty(t, response.Attachments)
	assert.Nil(t, response.Reactions)
	require.NotNil(t, response.Sender, "sender stays visible on deleted messages")
}

func TestHydrateAggregates(t *testing.T) {
	message := testMessage(1, 10, "dank", time.Now())

	reactions := &fakeReactionStore{
		countsForFn: func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error) {
			return map[uuid.UUID]repositories.ReactionCounts{
				message.ID: {"🔥": 2, "💚": 1},
			}, nil
		},
	}
	messages := &fakeMessageStore{
		replyCountsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
			return map[uuid.UUID]int{message.ID: 4}, nil
		},
	}

	h := newTestHydrator(nil, reactions, messages)

	response := h.hydrateOne(context.Background(), message)
	assert.Equal(t, 4, response.ReplyCount)
	assert.Equal(t, map[string]int{"🔥": 2, "💚": 1}, response.Reactions)
}

func TestHydrateSurvivesAggregateFailures(t *testing.T) {
	inline := testAttachment("inline")
	message := testMessage(1, 10, fmt.Sprintf("still here [media:%s]", inline.ID), time.Now())

	attachments := &fakeAttachmentStore{
		getByIDsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Attachment, error) {
			return nil, fmt.Errorf("storage down")
		},
	}
	reactions := &fakeReactionStore{
		countsForFn: func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error) {
			return nil, fmt.Errorf("reactions down")
		},
	}
	messages := &fakeMessageStore{
		replyCountsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
			return nil, fmt.Errorf("replies down")
		},
	}

	h := newTestHydrator(attachments, reactions, messages)

	// A failing aggregate or media lookup degrades to empty enrichment
	// instead of losing the page
	responses := h.hydrate(context.Background(), []*models.Message{message})
	require.Len(t, responses, 1)
	assert.Equal(t, message.ContentText, responses[0].ContentText)
	assert.Nil(t, responses[0].Reactions)
	assert.Zero(t, responses[0].ReplyCount)
	assert.Empty(t, responses[0].Attachments)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/repositories"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/websocket"
)

func newTestReactionService(
	reactions *fakeReactionStore,
	messages *fakeMessageStore,
	participants *fakeParticipantStore,
	conversations *fakeConversationStore,
	events *fakeEvents,
) ReactionService {
	if participants == nil {
		participants = &fakeParticipantStore{}
	}
	if conversations == nil {
		conversations = generalConversations()
	}
	return NewReactionService(reactions, messages, participants, conversations, events, zerolog.Nop())
}

func TestReactReplacesPreviousLabel(t *testing.T) {
	message := testMessage(1, 11, "nice nug", time.Now())

	var upserted *models.Reaction
	reactions := &fakeReactionStore{
		upsertFn: func(ctx context.Context, reaction *models.Reaction) error {
			upserted = reaction
			return nil
		},
		countsForFn: func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error) {
			return map[uuid.UUID]repositories.ReactionCounts{
				message.ID: {"💚": 1},
			}, nil
		},
	}
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}
	events := &fakeEvents{}

	svc := newTestReactionService(reactions, messages, nil, nil, events)

	totals, err := svc.React(context.Background(), message.ID, 10, &dto.ReactRequest{Label: "💚"})
	require.NoError(t, err)

	require.NotNil(t, upserted)
	assert.Equal(t, message.ID, upserted.MessageID)
	assert.Equal(t, int64(10), upserted.UserID)
	assert.Equal(t, "💚", upserted.Label)
	assert.Equal(t, map[string]int{"💚": 1}, totals)

	require.Len(t, events.events, 1)
	assert.Equal(t, websocket.EventReactionUpdated, events.events[0].Type)
	assert.Equal(t, message.ConversationID, events.events[0].ConversationID)
}

func TestReactToDeletedMessage(t *testing.T) {
	message := testMessage(1, 11, "gone", time.Now())
	message.Deleted = true
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}

	svc := newTestReactionService(&fakeReactionStore{}, messages, nil, nil, &fakeEvents{})

	_, err := svc.React(context.Background(), message.ID, 10, &dto.ReactRequest{Label: "🔥"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestReactNonParticipant(t *testing.T) {
	message := testMessage(3, 11, "private", time.Now())
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}
	conversations := &fakeConversationStore{
		getByIDFn: func(ctx context.Context, id int64) (*models.Conversation, error) {
			return &models.Conversation{ID: id, Type: models.ConversationTypeGroup}, nil
		},
	}
	participants := &fakeParticipantStore{
		isParticipantFn: func(ctx context.Context, conversationID, userID int64) (bool, error) {
			return false, nil
		},
	}

	svc := newTestReactionService(&fakeReactionStore{}, messages, participants, conversations, &fakeEvents{})

	_, err := svc.React(context.Background(), message.ID, 10, &dto.ReactRequest{Label: "🔥"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUnreactBroadcastsEmptyTotals(t *testing.T) {
	message := testMessage(1, 11, "meh", time.Now())
	reactions := &fakeReactionStore{
		deleteFn: func(ctx context.Context, messageID uuid.UUID, userID int64) error {
			return nil
		},
		countsForFn: func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error) {
			return map[uuid.UUID]repositories.ReactionCounts{}, nil
		},
	}
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}
	events := &fakeEvents{}

	svc := newTestReactionService(reactions, messages, nil, nil, events)

	totals, err := svc.Unreact(context.Background(), message.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{}, totals, "no reactions left still yields an empty map, not nil")

	require.Len(t, events.events, 1)
	assert.Equal(t, websocket.EventReactionUpdated, events.events[0].Type)
}

func TestListReactionsIncludesUsername(t *testing.T) {
	message := testMessage(1, 11, "who liked this", time.Now())
	reactedAt := time.Now()
	reactions := &fakeReactionStore{
		listForMessageFn: func(ctx context.Context, messageID uuid.UUID) ([]*models.Reaction, error) {
			return []*models.Reaction{
				{
					MessageID: messageID,
					UserID:    10,
					Label:     "🔥",
					CreatedAt: reactedAt,
					User:      &models.User{ID: 10, Username: "tokemaster"},
				},
			}, nil
		},
	}
	messages := &fakeMessageStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
			return message, nil
		},
	}

	svc := newTestReactionService(reactions, messages, nil, nil, &fakeEvents{})

	list, err := svc.ListReactions(context.Background(), message.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tokemaster", list[0].Username)
	assert.Equal(t, "🔥", list[0].Label)
}

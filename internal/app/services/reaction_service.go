package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/websocket"
)

// ReactionService defines the interface for reaction operations
type ReactionService interface {
	React(ctx context.Context, messageID uuid.UUID, userID int64, req *dto.ReactRequest) (map[string]int, error)
	Unreact(ctx context.Context, messageID uuid.UUID, userID int64) (map[string]int, error)
	ListReactions(ctx context.Context, messageID uuid.UUID, userID int64) ([]dto.ReactionResponse, error)
}

// reactionServiceImpl implements ReactionService
type reactionServiceImpl struct {
	reactionStore     reactionStore
	messageStore      messageStore
	participantStore  participantStore
	conversationStore conversationStore
	events            eventSink
	logger            zerolog.Logger
}

// NewReactionService creates a new ReactionService
func NewReactionService(
	reactionStore reactionStore,
	messageStore messageStore,
	participantStore participantStore,
	conversationStore conversationStore,
	events eventSink,
	logger zerolog.Logger,
) ReactionService {
	return &reactionServiceImpl{
		reactionStore:     reactionStore,
		messageStore:      messageStore,
		participantStore:  participantStore,
		conversationStore: conversationStore,
		events:            events,
		logger:            logger,
	}
}

// React sets the caller's reaction on a message. A user holds at most one
// reaction per message; reacting again replaces the previous label.
func (s *reactionServiceImpl) React(ctx context.Context, messageID uuid.UUID, userID int64, req *dto.ReactRequest) (map[string]int, error) {
	message, err := s.loadAccessible(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	if message.Deleted {
		return nil, apperrors.NewInvalidArgumentError("Cannot react to a deleted message")
	}

	reaction := &models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Label:     req.Label,
	}
	if err := s.reactionStore.Upsert(ctx, reaction); err != nil {
		s.logger.Error().Err(err).Str("messageID", messageID.String()).Msg("Failed to upsert reaction")
		return nil, err
	}

	return s.broadcastCounts(ctx, message, userID)
}

// Unreact removes the caller's reaction from a message. Removing an absent
// reaction is a no-op.
func (s *reactionServiceImpl) Unreact(ctx context.Context, messageID uuid.UUID, userID int64) (map[string]int, error) {
	message, err := s.loadAccessible(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.reactionStore.Delete(ctx, messageID, userID); err != nil {
		return nil, err
	}

	return s.broadcastCounts(ctx, message, userID)
}

// ListReactions returns every reaction on a message with reactor context
func (s *reactionServiceImpl) ListReactions(ctx context.Context, messageID uuid.UUID, userID int64) ([]dto.ReactionResponse, error) {
	if _, err := s.loadAccessible(ctx, messageID, userID); err != nil {
		return nil, err
	}

	reactions, err := s.reactionStore.ListForMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReactionResponse, 0, len(reactions))
	for _, reaction := range reactions {
		response := dto.ReactionResponse{
			MessageID: reaction.MessageID,
			UserID:    reaction.UserID,
			Label:     reaction.Label,
			CreatedAt: reaction.CreatedAt,
		}
		if reaction.User != nil {
			response.Username = reaction.User.Username
		}
		responses = append(responses, response)
	}

	return responses, nil
}

func (s *reactionServiceImpl) loadAccessible(ctx context.Context, messageID uuid.UUID, userID int64) (*models.Message, error) {
	message, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	conv, err := s.conversationStore.GetByID(ctx, message.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.Type == models.ConversationTypeGeneral {
		return message, nil
	}

	isParticipant, err := s.participantStore.IsParticipant(ctx, message.ConversationID, userID)
	if err != nil {
		return nil, err
	}
	if !isParticipant {
		return nil, apperrors.NewForbiddenError("Not a participant of this conversation")
	}

	return message, nil
}

// broadcastCounts recomputes the message's reaction totals and pushes them
// to connected clients.
func (s *reactionServiceImpl) broadcastCounts(ctx context.Context, message *models.Message, userID int64) (map[string]int, error) {
	counts, err := s.reactionStore.CountsFor(ctx, []uuid.UUID{message.ID})
	if err != nil {
		return nil, err
	}

	totals := map[string]int(counts[message.ID])
	if totals == nil {
		totals = map[string]int{}
	}

	s.events.Broadcast(&websocket.Event{
		Type:           websocket.EventReactionUpdated,
		ConversationID: message.ConversationID,
		SenderID:       userID,
		MessageID:      message.ID.String(),
		Payload:        totals,
	})

	return totals, nil
}

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/filestorage"
	"github.com/budline/budline/internal/pkg/websocket"
)

// ConversationService defines the interface for conversation operations
type ConversationService interface {
	ListConversations(ctx context.Context, userID int64) ([]dto.ConversationSummaryResponse, error)
	GetConversation(ctx context.Context, conversationID, userID int64) (*dto.ConversationResponse, error)
	GetOrCreateDirect(ctx context.Context, userID, otherID int64) (*dto.ConversationResponse, error)
	CreateGroup(ctx context.Context, ownerID int64, req *dto.CreateGroupRequest) (*dto.ConversationResponse, error)
	AddParticipant(ctx context.Context, conversationID, actorID, userID int64) error
	RemoveParticipant(ctx context.Context, conversationID, actorID, userID int64) error
	MarkRead(ctx context.Context, conversationID, userID int64, messageID uuid.UUID) error
	UnreadCount(ctx context.Context, conversationID, userID int64) (int, error)
	CanAccess(ctx context.Context, conversationID, userID int64) (bool, error)
}

// conversationServiceImpl implements ConversationService
type conversationServiceImpl struct {
	conversationStore conversationStore
	participantStore  participantStore
	messageStore      messageStore
	readPointerStore  readPointerStore
	userStore         userStore
	blockStore        blockStore
	urls              filestorage.URLResolver
	events            eventSink
	logger            zerolog.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversationStore conversationStore,
	participantStore participantStore,
	messageStore messageStore,
	readPointerStore readPointerStore,
	userStore userStore,
	blockStore blockStore,
	urls filestorage.URLResolver,
	events eventSink,
	logger zerolog.Logger,
) ConversationService {
	return &conversationServiceImpl{
		conversationStore: conversationStore,
		participantStore:  participantStore,
		messageStore:      messageStore,
		readPointerStore:  readPointerStore,
		userStore:         userStore,
		blockStore:        blockStore,
		urls:              urls,
		events:            events,
		logger:            logger,
	}
}

// ListConversations returns the caller's conversations sorted by most
// recent activity, with unread counts and last-message context.
func (s *conversationServiceImpl) ListConversations(ctx context.Context, userID int64) ([]dto.ConversationSummaryResponse, error) {
	summaries, err := s.conversationStore.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to list conversations")
		return nil, err
	}

	conversationIDs := make([]int64, 0, len(summaries))
	for _, summary := range summaries {
		conversationIDs = append(conversationIDs, summary.Conversation.ID)
	}
	participants, err := s.participantStore.ListByConversationIDs(ctx, conversationIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConversationSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		response := dto.ConversationSummaryResponse{
			ID:            summary.Conversation.ID,
			Type:          string(summary.Conversation.Type),
			Title:         summary.Conversation.Title,
			LastMessageAt: summary.LastMessageAt,
			UnreadCount:   summary.UnreadCount,
			Participants:  s.participantResponses(participants[summary.Conversation.ID]),
		}
		// A soft-deleted last message keeps its timestamp but hides its text
		if !summary.LastDeleted {
			response.LastMessageText = summary.LastMessageText
		}
		responses = append(responses, response)
	}

	return responses, nil
}

// GetConversation retrieves a conversation with its participants
func (s *conversationServiceImpl) GetConversation(ctx context.Context, conversationID, userID int64) (*dto.ConversationResponse, error) {
	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	ok, err := s.CanAccess(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewForbiddenError("Not a participant of this conversation")
	}

	return s.buildResponse(ctx, conv)
}

// GetOrCreateDirect resolves the direct conversation between the caller and
// another user, creating it on first contact. Both callers converge on the
// same conversation regardless of who starts it.
func (s *conversationServiceImpl) GetOrCreateDirect(ctx context.Context, userID, otherID int64) (*dto.ConversationResponse, error) {
	if userID == otherID {
		return nil, apperrors.NewInvalidArgumentError("Cannot start a conversation with yourself")
	}

	if _, err := s.userStore.FindByID(ctx, otherID); err != nil {
		return nil, err
	}

	blocked, err := s.blockStore.IsBlockedEither(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.NewForbiddenError("Conversation is blocked")
	}

	conv, created, err := s.conversationStore.GetOrCreateDirect(ctx, userID, otherID)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Int64("otherID", otherID).Msg("Failed to resolve direct conversation")
		return nil, err
	}

	if created {
		if err := s.participantStore.Add(ctx, conv.ID, userID, models.ParticipantRoleMember); err != nil {
			return nil, err
		}
		if err := s.participantStore.Add(ctx, conv.ID, otherID, models.ParticipantRoleMember); err != nil {
			return nil, err
		}
		s.logger.Info().Int64("conversationID", conv.ID).Msg("Direct conversation created")
	}

	return s.buildResponse(ctx, conv)
}

// CreateGroup creates a group conversation with the caller as owner
func (s *conversationServiceImpl) CreateGroup(ctx context.Context, ownerID int64, req *dto.CreateGroupRequest) (*dto.ConversationResponse, error) {
	owner, err := s.userStore.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		Type:  models.ConversationTypeGroup,
		Title: &req.Title,
	}
	if _, err := s.conversationStore.Create(ctx, conv); err != nil {
		s.logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Failed to create group")
		return nil, err
	}

	if err := s.participantStore.Add(ctx, conv.ID, ownerID, models.ParticipantRoleOwner); err != nil {
		return nil, err
	}

	for _, memberID := range req.MemberIDs {
		if memberID == ownerID {
			continue
		}
		blocked, err := s.blockStore.IsBlockedEither(ctx, ownerID, memberID)
		if err != nil {
			return nil, err
		}
		if blocked {
			continue
		}
		if err := s.participantStore.Add(ctx, conv.ID, memberID, models.ParticipantRoleMember); err != nil {
			return nil, err
		}
	}

	if err := s.postSystemMessage(ctx, conv.ID, fmt.Sprintf("%s created the group", owner.Username)); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, conv)
}

// AddParticipant adds a user to a group conversation. Only the owner may
// add members; re-adding an existing member is a no-op.
func (s *conversationServiceImpl) AddParticipant(ctx context.Context, conversationID, actorID, userID int64) error {
	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Type != models.ConversationTypeGroup {
		return apperrors.NewInvalidArgumentError("Membership is managed only for group conversations")
	}

	if err := s.requireOwner(ctx, conversationID, actorID); err != nil {
		return err
	}

	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	already, err := s.participantStore.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	if err := s.participantStore.Add(ctx, conversationID, userID, models.ParticipantRoleMember); err != nil {
		return err
	}

	return s.postSystemMessage(ctx, conversationID, fmt.Sprintf("%s joined", user.Username))
}

// RemoveParticipant removes a user from a group conversation. Members may
// remove themselves; the owner may remove anyone else.
func (s *conversationServiceImpl) RemoveParticipant(ctx context.Context, conversationID, actorID, userID int64) error {
	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Type != models.ConversationTypeGroup {
		return apperrors.NewInvalidArgumentError("Membership is managed only for group conversations")
	}

	if actorID != userID {
		if err := s.requireOwner(ctx, conversationID, actorID); err != nil {
			return err
		}
	}

	isParticipant, err := s.participantStore.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !isParticipant {
		return nil
	}

	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.participantStore.Remove(ctx, conversationID, userID); err != nil {
		return err
	}

	return s.postSystemMessage(ctx, conversationID, fmt.Sprintf("%s left", user.Username))
}

// MarkRead advances the caller's read pointer to the given message. The
// pointer is a high-water mark: marking an older message after a newer one
// does not move it back.
func (s *conversationServiceImpl) MarkRead(ctx context.Context, conversationID, userID int64, messageID uuid.UUID) error {
	ok, err := s.CanAccess(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("Not a participant of this conversation")
	}

	message, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.ConversationID != conversationID {
		return apperrors.NewInvalidArgumentError("Message belongs to another conversation")
	}

	return s.readPointerStore.Advance(ctx, &models.ReadPointer{
		ConversationID: conversationID,
		UserID:         userID,
		LastReadID:     message.ID,
		LastReadAt:     message.CreatedAt,
	})
}

// UnreadCount reports how many messages the caller has not read in a
// conversation. Own and soft-deleted messages never count.
func (s *conversationServiceImpl) UnreadCount(ctx context.Context, conversationID, userID int64) (int, error) {
	ok, err := s.CanAccess(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperrors.NewForbiddenError("Not a participant of this conversation")
	}

	return s.readPointerStore.UnreadCount(ctx, conversationID, userID)
}

// CanAccess reports whether the user may read a conversation. The general
// conversation is open to every authenticated user.
func (s *conversationServiceImpl) CanAccess(ctx context.Context, conversationID, userID int64) (bool, error) {
	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return false, err
	}
	if conv.Type == models.ConversationTypeGeneral {
		return true, nil
	}
	return s.participantStore.IsParticipant(ctx, conversationID, userID)
}

func (s *conversationServiceImpl) requireOwner(ctx context.Context, conversationID, userID int64) error {
	participants, err := s.participantStore.ListByConversationID(ctx, conversationID)
	if err != nil {
		return err
	}
	for _, p := range participants {
		if p.UserID == userID && p.Role == models.ParticipantRoleOwner {
			return nil
		}
	}
	return apperrors.NewForbiddenError("Only the group owner can manage members")
}

// postSystemMessage records a membership change as a system message in the
// conversation and notifies connected clients.
func (s *conversationServiceImpl) postSystemMessage(ctx context.Context, conversationID int64, text string) error {
	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		ContentText:    text,
		ContentType:    models.ContentTypeSystem,
	}

	if err := s.messageStore.Create(ctx, message); err != nil {
		return err
	}

	s.events.Broadcast(&websocket.Event{
		Type:           websocket.EventMessageNew,
		ConversationID: conversationID,
		MessageID:      message.ID.String(),
		Payload:        message,
	})

	return nil
}

func (s *conversationServiceImpl) buildResponse(ctx context.Context, conv *models.Conversation) (*dto.ConversationResponse, error) {
	participants, err := s.participantStore.ListByConversationID(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ConversationResponse{
		ID:           conv.ID,
		Type:         string(conv.Type),
		Title:        conv.Title,
		CreatedAt:    conv.CreatedAt,
		Participants: s.participantResponses(participants),
	}, nil
}

func (s *conversationServiceImpl) participantResponses(participants []*models.Participant) []dto.ParticipantResponse {
	responses := make([]dto.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		pr := dto.ParticipantResponse{
			UserID:   p.UserID,
			Role:     string(p.Role),
			JoinedAt: p.JoinedAt,
		}
		if p.User != nil {
			pr.Username = p.User.Username
			if p.User.Avatar != nil {
				url := s.urls.ResolveURL(p.User.Avatar.StorageKey)
				pr.AvatarURL = &url
			}
		}
		responses = append(responses, pr)
	}
	return responses
}

package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/helpers"
	"github.com/budline/budline/internal/pkg/websocket"
)

// MessageService defines the interface for message operations
type MessageService interface {
	GetHistory(ctx context.Context, conversationID, userID int64, page *dto.PageRequest) (*dto.MessagePageResponse, error)
	GetMessage(ctx context.Context, messageID uuid.UUID, userID int64) (*dto.MessageResponse, error)
	GetThread(ctx context.Context, messageID uuid.UUID, userID int64, limit int) (*dto.ThreadResponse, error)
	PostMessage(ctx context.Context, conversationID, senderID int64, req *dto.PostMessageRequest) (*dto.MessageResponse, error)
	EditMessage(ctx context.Context, messageID uuid.UUID, userID int64, req *dto.EditMessageRequest) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, messageID uuid.UUID, userID int64, isModerator bool) error
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	messageStore      messageStore
	conversationStore conversationStore
	participantStore  participantStore
	attachmentStore   attachmentStore
	blockStore        blockStore
	hydrator          *messageHydrator
	events            eventSink
	logger            zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageStore messageStore,
	conversationStore conversationStore,
	participantStore participantStore,
	attachmentStore attachmentStore,
	blockStore blockStore,
	hydrator *messageHydrator,
	events eventSink,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messageStore:      messageStore,
		conversationStore: conversationStore,
		participantStore:  participantStore,
		attachmentStore:   attachmentStore,
		blockStore:        blockStore,
		hydrator:          hydrator,
		events:            events,
		logger:            logger,
	}
}

// checkAccess verifies the user may read and write the conversation. The
// general conversation is open to every authenticated user; everything else
// requires a participant row.
func (s *messageServiceImpl) checkAccess(ctx context.Context, conv *models.Conversation, userID int64) error {
	if conv.Type == models.ConversationTypeGeneral {
		return nil
	}

	isParticipant, err := s.participantStore.IsParticipant(ctx, conv.ID, userID)
	if err != nil {
		return err
	}
	if !isParticipant {
		return apperrors.NewForbiddenError("Not a participant of this conversation")
	}

	return nil
}

// checkDirectBlock rejects writes into a direct conversation when either
// side has blocked the other.
func (s *messageServiceImpl) checkDirectBlock(ctx context.Context, conv *models.Conversation, userID int64) error {
	if conv.Type != models.ConversationTypeDirect {
		return nil
	}

	participants, err := s.participantStore.ListByConversationID(ctx, conv.ID)
	if err != nil {
		return err
	}
	for _, p := range participants {
		if p.UserID == userID {
			continue
		}
		blocked, err := s.blockStore.IsBlockedEither(ctx, userID, p.UserID)
		if err != nil {
			return err
		}
		if blocked {
			return apperrors.NewForbiddenError("Conversation is blocked")
		}
	}

	return nil
}

// GetHistory retrieves one page of conversation history, oldest-first within
// the page. Soft-deleted messages appear with hidden content so pagination
// windows and thread structure stay stable.
func (s *messageServiceImpl) GetHistory(ctx context.Context, conversationID, userID int64, page *dto.PageRequest) (*dto.MessagePageResponse, error) {
	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, conv, userID); err != nil {
		return nil, err
	}

	limit := helpers.ClampLimit(page.Limit)
	cursor := helpers.DecodeCursor(page.Cursor)

	// Over-fetch by one to learn whether an older page exists
	messages, err := s.messageStore.ListConversationPage(ctx, conversationID, cursor, limit+1)
	if err != nil {
		s.logger.Error().Err(err).Int64("conversationID", conversationID).Msg("Failed to list conversation page")
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	var nextCursor *string
	if hasMore && len(messages) > 0 {
		oldest := messages[len(messages)-1]
		token := helpers.Cursor{CreatedAt: oldest.CreatedAt, ID: oldest.ID}.Encode()
		nextCursor = &token
	}

	// The store returns newest-first; chat history reads oldest-first
	reverse(messages)

	return &dto.MessagePageResponse{
		Messages:   s.hydrator.hydrate(ctx, messages),
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// GetMessage retrieves a single message by id
func (s *messageServiceImpl) GetMessage(ctx context.Context, messageID uuid.UUID, userID int64) (*dto.MessageResponse, error) {
	message, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	conv, err := s.conversationStore.GetByID(ctx, message.ConversationID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, conv, userID); err != nil {
		return nil, err
	}

	return s.hydrator.hydrateOne(ctx, message), nil
}

// GetThread retrieves a thread root with its replies oldest-first. Asking
// for the thread of a reply resolves to that reply's root.
func (s *messageServiceImpl) GetThread(ctx context.Context, messageID uuid.UUID, userID int64, limit int) (*dto.ThreadResponse, error) {
	root, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if root.ParentID != nil {
		root, err = s.messageStore.GetByID(ctx, *root.ParentID)
		if err != nil {
			return nil, err
		}
	}

	conv, err := s.conversationStore.GetByID(ctx, root.ConversationID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, conv, userID); err != nil {
		return nil, err
	}

	replies, err := s.messageStore.ListThreadReplies(ctx, root.ID, helpers.ClampThreadLimit(limit))
	if err != nil {
		return nil, err
	}

	// Root first so the batch aggregates cover it too
	responses := s.hydrator.hydrate(ctx, append([]*models.Message{root}, replies...))

	return &dto.ThreadResponse{
		Root:    responses[0],
		Replies: responses[1:],
	}, nil
}

// PostMessage creates a message in a conversation. A message needs text, an
// attachment, or both. Replying to a reply attaches to that reply's root so
// threads stay single level.
func (s *messageServiceImpl) PostMessage(ctx context.Context, conversationID, senderID int64, req *dto.PostMessageRequest) (*dto.MessageResponse, error) {
	text := strings.TrimSpace(req.ContentText)
	if text == "" && req.AttachmentID == nil {
		return nil, apperrors.NewInvalidArgumentError("Message needs text or an attachment")
	}

	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, conv, senderID); err != nil {
		return nil, err
	}
	if err := s.checkDirectBlock(ctx, conv, senderID); err != nil {
		return nil, err
	}

	contentType := models.ContentTypeText
	if req.AttachmentID != nil {
		attachment, err := s.attachmentStore.GetByID(ctx, *req.AttachmentID)
		if err != nil {
			return nil, err
		}
		contentType = contentTypeForMime(attachment.MimeType)
	}

	parentID := req.ParentID
	if parentID != nil {
		parent, err := s.messageStore.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.ConversationID != conversationID {
			return nil, apperrors.NewInvalidArgumentError("Thread root belongs to another conversation")
		}
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       &senderID,
		ParentID:       parentID,
		ContentText:    text,
		ContentType:    contentType,
		AttachmentID:   req.AttachmentID,
	}

	if err := s.messageStore.Create(ctx, message); err != nil {
		s.logger.Error().Err(err).Int64("conversationID", conversationID).Msg("Failed to create message")
		return nil, err
	}

	// Re-read to pick up joined sender and attachment context
	created, err := s.messageStore.GetByID(ctx, message.ID)
	if err != nil {
		return nil, err
	}

	response := s.hydrator.hydrateOne(ctx, created)

	s.events.Broadcast(&websocket.Event{
		Type:           websocket.EventMessageNew,
		ConversationID: conversationID,
		SenderID:       senderID,
		MessageID:      message.ID.String(),
		Payload:        response,
	})

	return response, nil
}

// EditMessage updates a message's text. Only the author may edit; system and
// deleted messages are immutable. The message keeps its ordering position.
func (s *messageServiceImpl) EditMessage(ctx context.Context, messageID uuid.UUID, userID int64, req *dto.EditMessageRequest) (*dto.MessageResponse, error) {
	message, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.SenderID == nil || *message.SenderID != userID {
		return nil, apperrors.NewForbiddenError("Only the author can edit a message")
	}
	if message.Deleted {
		return nil, apperrors.NewInvalidArgumentError("Cannot edit a deleted message")
	}

	text := strings.TrimSpace(req.ContentText)
	if text == "" && message.AttachmentID == nil {
		return nil, apperrors.NewInvalidArgumentError("Message needs text or an attachment")
	}

	editedAt, err := s.messageStore.MarkEdited(ctx, messageID, text)
	if err != nil {
		return nil, err
	}

	message.ContentText = text
	message.EditedAt = &editedAt

	response := s.hydrator.hydrateOne(ctx, message)

	s.events.Broadcast(&websocket.Event{
		Type:           websocket.EventMessageEdited,
		ConversationID: message.ConversationID,
		SenderID:       userID,
		MessageID:      messageID.String(),
		Payload:        response,
	})

	return response, nil
}

// DeleteMessage soft-deletes a message. The author or a moderator may
// delete; deleting twice is a no-op.
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, messageID uuid.UUID, userID int64, isModerator bool) error {
	message, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	isAuthor := message.SenderID != nil && *message.SenderID == userID
	if !isAuthor && !isModerator {
		return apperrors.NewForbiddenError("Only the author or a moderator can delete a message")
	}

	if message.Deleted {
		return nil
	}

	if err := s.messageStore.MarkDeleted(ctx, messageID); err != nil {
		return err
	}

	s.events.Broadcast(&websocket.Event{
		Type:           websocket.EventMessageDeleted,
		ConversationID: message.ConversationID,
		SenderID:       userID,
		MessageID:      messageID.String(),
	})

	return nil
}

func contentTypeForMime(mimeType string) models.ContentType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.ContentTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return models.ContentTypeVideo
	default:
		return models.ContentTypeText
	}
}

func reverse(messages []*models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/filestorage"
	"github.com/budline/budline/internal/pkg/mediatoken"
)

// messageHydrator assembles message responses: it hides deleted content,
// resolves direct and inline media, and folds in reaction and reply
// aggregates computed fresh per request. Enrichment is best effort: a
// failing aggregate or media lookup degrades to empty values for the
// affected messages instead of failing the page.
type messageHydrator struct {
	attachmentStore attachmentStore
	reactionStore   reactionStore
	messageStore    messageStore
	urls            filestorage.URLResolver
	logger          zerolog.Logger
}

func newMessageHydrator(
	attachmentStore attachmentStore,
	reactionStore reactionStore,
	messageStore messageStore,
	urls filestorage.URLResolver,
	logger zerolog.Logger,
) *messageHydrator {
	return &messageHydrator{
		attachmentStore: attachmentStore,
		reactionStore:   reactionStore,
		messageStore:    messageStore,
		urls:            urls,
		logger:          logger,
	}
}

// hydrateOne builds the response for a single message.
func (h *messageHydrator) hydrateOne(ctx context.Context, message *models.Message) *dto.MessageResponse {
	responses := h.hydrate(ctx, []*models.Message{message})
	return &responses[0]
}

// hydrate builds responses for a batch of messages in input order.
func (h *messageHydrator) hydrate(ctx context.Context, messages []*models.Message) []dto.MessageResponse {
	responses := make([]dto.MessageResponse, 0, len(messages))
	if len(messages) == 0 {
		return responses
	}

	ids := make([]uuid.UUID, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	reactionCounts, err := h.reactionStore.CountsFor(ctx, ids)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load reaction counts, continuing without")
		reactionCounts = nil
	}

	replyCounts, err := h.messageStore.ReplyCounts(ctx, ids)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load reply counts, continuing without")
		replyCounts = nil
	}

	inlineIDs := h.collectInlineMedia(messages)
	inline, err := h.attachmentStore.GetByIDs(ctx, inlineIDs)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load inline media, continuing without")
		inline = nil
	}

	for _, m := range messages {
		responses = append(responses, h.buildResponse(m, reactionCounts[m.ID], replyCounts[m.ID], inline))
	}

	return responses
}

// collectInlineMedia gathers the inline media ids referenced across visible
// message texts, skipping soft-deleted rows.
func (h *messageHydrator) collectInlineMedia(messages []*models.Message) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, m := range messages {
		if m.Deleted {
			continue
		}
		for _, id := range mediatoken.Parse(m.ContentText) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (h *messageHydrator) buildResponse(
	message *models.Message,
	reactions map[string]int,
	replyCount int,
	inline map[uuid.UUID]*models.Attachment,
) dto.MessageResponse {
	m := *message
	if m.Deleted {
		m = m.Hidden()
	}

	response := dto.MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		ParentID:       m.ParentID,
		ContentText:    m.ContentText,
		ContentType:    string(m.ContentType),
		CreatedAt:      m.CreatedAt,
		EditedAt:       m.EditedAt,
		Deleted:        m.Deleted,
		ReplyCount:     replyCount,
	}

	if m.Sender != nil {
		response.Sender = h.userBasic(m.Sender)
	}

	if m.Deleted {
		return response
	}

	if len(reactions) > 0 {
		response.Reactions = map[string]int(reactions)
	}

	// Direct attachment first, then inline media in order of first
	// appearance. A token repeating the direct attachment is not doubled.
	seen := make(map[uuid.UUID]bool)
	if m.Attachment != nil {
		response.Attachments = append(response.Attachments, h.attachmentResponse(m.Attachment))
		seen[m.Attachment.ID] = true
	}
	for _, id := range mediatoken.Parse(m.ContentText) {
		if seen[id] {
			continue
		}
		seen[id] = true
		if attachment, ok := inline[id]; ok {
			response.Attachments = append(response.Attachments, h.attachmentResponse(attachment))
		}
	}

	return response
}

func (h *messageHydrator) attachmentResponse(attachment *models.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        attachment.ID,
		MimeType:  attachment.MimeType,
		FileName:  attachment.FileName,
		FileSize:  attachment.FileSize,
		Width:     attachment.Width,
		Height:    attachment.Height,
		URL:       h.urls.ResolveURL(attachment.StorageKey),
		CreatedAt: attachment.CreatedAt,
	}
}

func (h *messageHydrator) userBasic(user *models.User) *dto.UserBasicResponse {
	response := &dto.UserBasicResponse{
		ID:       user.ID,
		Username: user.Username,
	}
	if user.Avatar != nil {
		url := h.urls.ResolveURL(user.Avatar.StorageKey)
		response.AvatarURL = &url
	}
	return response
}

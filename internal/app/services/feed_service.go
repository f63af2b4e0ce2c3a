package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/helpers"
)

// FeedService defines the interface for public feed operations. The feed is
// a view over the single general conversation: newest-first, system and
// deleted messages excluded.
type FeedService interface {
	GetFeed(ctx context.Context, req *dto.FeedPageRequest) (*dto.MessagePageResponse, error)
	PostToFeed(ctx context.Context, senderID int64, req *dto.PostMessageRequest) (*dto.MessageResponse, error)
}

// feedServiceImpl implements FeedService
type feedServiceImpl struct {
	conversationStore conversationStore
	messageStore      messageStore
	messageService    MessageService
	hydrator          *messageHydrator
	logger            zerolog.Logger
}

// NewFeedService creates a new FeedService
func NewFeedService(
	conversationStore conversationStore,
	messageStore messageStore,
	messageService MessageService,
	hydrator *messageHydrator,
	logger zerolog.Logger,
) FeedService {
	return &feedServiceImpl{
		conversationStore: conversationStore,
		messageStore:      messageStore,
		messageService:    messageService,
		hydrator:          hydrator,
		logger:            logger,
	}
}

// GetFeed retrieves one newest-first page of the public feed with an
// optional hashtag filter. The filter narrows the set before windowing, so
// filtered pages paginate correctly.
func (s *feedServiceImpl) GetFeed(ctx context.Context, req *dto.FeedPageRequest) (*dto.MessagePageResponse, error) {
	general, err := s.conversationStore.GetGeneral(ctx)
	if err != nil {
		return nil, err
	}

	limit := helpers.ClampLimit(req.Limit)
	cursor := helpers.DecodeCursor(req.Cursor)

	hashtag := ""
	if req.Hashtag != "" {
		hashtag = helpers.NormalizeHashtag(req.Hashtag)
	}

	messages, err := s.messageStore.ListFeedPage(ctx, general.ID, cursor, limit+1, hashtag)
	if err != nil {
		s.logger.Error().Err(err).Str("hashtag", hashtag).Msg("Failed to list feed page")
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	var nextCursor *string
	if hasMore && len(messages) > 0 {
		last := messages[len(messages)-1]
		token := helpers.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		nextCursor = &token
	}

	return &dto.MessagePageResponse{
		Messages:   s.hydrator.hydrate(ctx, messages),
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// PostToFeed posts a message into the general conversation
func (s *feedServiceImpl) PostToFeed(ctx context.Context, senderID int64, req *dto.PostMessageRequest) (*dto.MessageResponse, error) {
	general, err := s.conversationStore.GetGeneral(ctx)
	if err != nil {
		return nil, err
	}

	return s.messageService.PostMessage(ctx, general.ID, senderID, req)
}

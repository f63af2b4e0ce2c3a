package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/repositories"
	"github.com/budline/budline/internal/pkg/auth"
	"github.com/budline/budline/internal/pkg/filestorage"
	"github.com/budline/budline/internal/pkg/helpers"
	"github.com/budline/budline/internal/pkg/websocket"
)

// Store contracts consumed by the services. The repository types satisfy
// them; tests substitute in-package fakes.

type userStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
}

type conversationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	GetGeneral(ctx context.Context) (*models.Conversation, error)
	Create(ctx context.Context, conv *models.Conversation) (int64, error)
	GetOrCreateDirect(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error)
	ListForUser(ctx context.Context, userID int64) ([]*repositories.ConversationSummary, error)
}

type participantStore interface {
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ListByConversationID(ctx context.Context, conversationID int64) ([]*models.Participant, error)
	ListByConversationIDs(ctx context.Context, conversationIDs []int64) (map[int64][]*models.Participant, error)
	Add(ctx context.Context, conversationID, userID int64, role models.ParticipantRole) error
	Remove(ctx context.Context, conversationID, userID int64) error
}

type messageStore interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListConversationPage(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int) ([]*models.Message, error)
	ListFeedPage(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int, hashtag string) ([]*models.Message, error)
	ListThreadReplies(ctx context.Context, parentID uuid.UUID, limit int) ([]*models.Message, error)
	MarkEdited(ctx context.Context, id uuid.UUID, newText string) (editedAt time.Time, err error)
	MarkDeleted(ctx context.Context, id uuid.UUID) error
	ReplyCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
	RecentDistinctSenders(ctx context.Context, conversationID int64, window int) ([]int64, error)
}

type attachmentStore interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Attachment, error)
}

type reactionStore interface {
	Upsert(ctx context.Context, reaction *models.Reaction) error
	Delete(ctx context.Context, messageID uuid.UUID, userID int64) error
	CountsFor(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error)
	ListForMessage(ctx context.Context, messageID uuid.UUID) ([]*models.Reaction, error)
}

type readPointerStore interface {
	Advance(ctx context.Context, pointer *models.ReadPointer) error
	Get(ctx context.Context, conversationID, userID int64) (*models.ReadPointer, error)
	UnreadCount(ctx context.Context, conversationID, userID int64) (int, error)
}

type followStore interface {
	Add(ctx context.Context, followerID, followedID int64) (bool, error)
	Remove(ctx context.Context, followerID, followedID int64) error
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)
	ListFollowing(ctx context.Context, userID int64) ([]*models.User, error)
	ListFollowers(ctx context.Context, userID int64) ([]*models.User, error)
	FollowedIDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

type blockStore interface {
	Add(ctx context.Context, blockerID, blockedID int64) (bool, error)
	Remove(ctx context.Context, blockerID, blockedID int64) error
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)
	BlockedIDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

type reportStore interface {
	Create(ctx context.Context, report *models.Report) error
	ListPending(ctx context.Context, limit int) ([]*models.Report, error)
	Resolve(ctx context.Context, id int64) error
}

// eventSink is the notification port to the websocket hub. Services call it
// after successful writes; delivery is best effort.
type eventSink interface {
	Broadcast(event *websocket.Event)
}

// Services holds all the service instances
type Services struct {
	AuthService         AuthService
	FeedService         FeedService
	ConversationService ConversationService
	MessageService      MessageService
	ReactionService     ReactionService
	SocialService       SocialService
	ModerationService   ModerationService
	AttachmentService   AttachmentService
}

// NewServices initializes all services
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	storage *filestorage.LocalStorage,
	hub *websocket.Hub,
	logger zerolog.Logger,
) *Services {
	hydrator := newMessageHydrator(
		repos.AttachmentRepository,
		repos.ReactionRepository,
		repos.MessageRepository,
		storage,
		logger.With().Str("component", "hydrator").Logger(),
	)

	messageService := NewMessageService(
		repos.MessageRepository,
		repos.ConversationRepository,
		repos.ParticipantRepository,
		repos.AttachmentRepository,
		repos.BlockRepository,
		hydrator,
		hub,
		logger.With().Str("service", "message").Logger(),
	)

	return &Services{
		AuthService: NewAuthService(
			repos.UserRepository,
			jwtService,
			storage,
			logger.With().Str("service", "auth").Logger(),
		),
		FeedService: NewFeedService(
			repos.ConversationRepository,
			repos.MessageRepository,
			messageService,
			hydrator,
			logger.With().Str("service", "feed").Logger(),
		),
		ConversationService: NewConversationService(
			repos.ConversationRepository,
			repos.ParticipantRepository,
			repos.MessageRepository,
			repos.ReadPointerRepository,
			repos.UserRepository,
			repos.BlockRepository,
			storage,
			hub,
			logger.With().Str("service", "conversation").Logger(),
		),
		MessageService: messageService,
		ReactionService: NewReactionService(
			repos.ReactionRepository,
			repos.MessageRepository,
			repos.ParticipantRepository,
			repos.ConversationRepository,
			hub,
			logger.With().Str("service", "reaction").Logger(),
		),
		SocialService: NewSocialService(
			repos.FollowRepository,
			repos.BlockRepository,
			repos.UserRepository,
			repos.ConversationRepository,
			repos.MessageRepository,
			storage,
			logger.With().Str("service", "social").Logger(),
		),
		ModerationService: NewModerationService(
			repos.ReportRepository,
			repos.MessageRepository,
			hydrator,
			logger.With().Str("service", "moderation").Logger(),
		),
		AttachmentService: NewAttachmentService(
			repos.AttachmentRepository,
			storage,
			logger.With().Str("service", "attachment").Logger(),
		),
	}
}

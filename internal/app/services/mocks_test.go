package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/repositories"
	"github.com/budline/budline/internal/pkg/helpers"
	"github.com/budline/budline/internal/pkg/websocket"
)

// Function-field fakes for the store contracts. Tests set only the methods
// they expect to be called; anything else panics loudly.

type fakeUserStore struct {
	createFn         func(ctx context.Context, user *models.User) (int64, error)
	findByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	findByIDsFn      func(ctx context.Context, ids []int64) (map[int64]*models.User, error)
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) (int64, error) {
	return f.createFn(ctx, user)
}
func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.findByUsernameFn(ctx, username)
}
func (f *fakeUserStore) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	return f.findByIDsFn(ctx, ids)
}

type fakeConversationStore struct {
	getByIDFn           func(ctx context.Context, id int64) (*models.Conversation, error)
	getGeneralFn        func(ctx context.Context) (*models.Conversation, error)
	createFn            func(ctx context.Context, conv *models.Conversation) (int64, error)
	getOrCreateDirectFn func(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error)
	listForUserFn       func(ctx context.Context, userID int64) ([]*repositories.ConversationSummary, error)
}

func (f *fakeConversationStore) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeConversationStore) GetGeneral(ctx context.Context) (*models.Conversation, error) {
	return f.getGeneralFn(ctx)
}
func (f *fakeConversationStore) Create(ctx context.Context, conv *models.Conversation) (int64, error) {
	return f.createFn(ctx, conv)
}
func (f *fakeConversationStore) GetOrCreateDirect(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error) {
	return f.getOrCreateDirectFn(ctx, userA, userB)
}
func (f *fakeConversationStore) ListForUser(ctx context.Context, userID int64) ([]*repositories.ConversationSummary, error) {
	return f.listForUserFn(ctx, userID)
}

type fakeParticipantStore struct {
	isParticipantFn func(ctx context.Context, conversationID, userID int64) (bool, error)
	listFn          func(ctx context.Context, conversationID int64) ([]*models.Participant, error)
	listBatchFn     func(ctx context.Context, conversationIDs []int64) (map[int64][]*models.Participant, error)
	addFn           func(ctx context.Context, conversationID, userID int64, role models.ParticipantRole) error
	removeFn        func(ctx context.Context, conversationID, userID int64) error
}

func (f *fakeParticipantStore) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	return f.isParticipantFn(ctx, conversationID, userID)
}
func (f *fakeParticipantStore) ListByConversationID(ctx context.Context, conversationID int64) ([]*models.Participant, error) {
	return f.listFn(ctx, conversationID)
}
func (f *fakeParticipantStore) ListByConversationIDs(ctx context.Context, conversationIDs []int64) (map[int64][]*models.Participant, error) {
	if f.listBatchFn == nil {
		return map[int64][]*models.Participant{}, nil
	}
	return f.listBatchFn(ctx, conversationIDs)
}
func (f *fakeParticipantStore) Add(ctx context.Context, conversationID, userID int64, role models.ParticipantRole) error {
	return f.addFn(ctx, conversationID, userID, role)
}
func (f *fakeParticipantStore) Remove(ctx context.Context, conversationID, userID int64) error {
	return f.removeFn(ctx, conversationID, userID)
}

type fakeMessageStore struct {
	createFn                func(ctx context.Context, message *models.Message) error
	getByIDFn               func(ctx context.Context, id uuid.UUID) (*models.Message, error)
	listConversationPageFn  func(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int) ([]*models.Message, error)
	listFeedPageFn          func(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int, hashtag string) ([]*models.Message, error)
	listThreadRepliesFn     func(ctx context.Context, parentID uuid.UUID, limit int) ([]*models.Message, error)
	markEditedFn            func(ctx context.Context, id uuid.UUID, newText string) (time.Time, error)
	markDeletedFn           func(ctx context.Context, id uuid.UUID) error
	replyCountsFn           func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
	recentDistinctSendersFn func(ctx context.Context, conversationID int64, window int) ([]int64, error)
}

func (f *fakeMessageStore) Create(ctx context.Context, message *models.Message) error {
	return f.createFn(ctx, message)
}
func (f *fakeMessageStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeMessageStore) ListConversationPage(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int) ([]*models.Message, error) {
	return f.listConversationPageFn(ctx, conversationID, cursor, limit)
}
func (f *fakeMessageStore) ListFeedPage(ctx context.Context, conversationID int64, cursor *helpers.Cursor, limit int, hashtag string) ([]*models.Message, error) {
	return f.listFeedPageFn(ctx, conversationID, cursor, limit, hashtag)
}
func (f *fakeMessageStore) ListThreadReplies(ctx context.Context, parentID uuid.UUID, limit int) ([]*models.Message, error) {
	return f.listThreadRepliesFn(ctx, parentID, limit)
}
func (f *fakeMessageStore) MarkEdited(ctx context.Context, id uuid.UUID, newText string) (time.Time, error) {
	return f.markEditedFn(ctx, id, newText)
}
func (f *fakeMessageStore) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	return f.markDeletedFn(ctx, id)
}
func (f *fakeMessageStore) ReplyCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	if f.replyCountsFn == nil {
		return map[uuid.UUID]int{}, nil
	}
	return f.replyCountsFn(ctx, ids)
}
func (f *fakeMessageStore) RecentDistinctSenders(ctx context.Context, conversationID int64, window int) ([]int64, error) {
	return f.recentDistinctSendersFn(ctx, conversationID, window)
}

type fakeAttachmentStore struct {
	createFn   func(ctx context.Context, attachment *models.Attachment) error
	getByIDFn  func(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	getByIDsFn func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Attachment, error)
}

func (f *fakeAttachmentStore) Create(ctx context.Context, attachment *models.Attachment) error {
	return f.createFn(ctx, attachment)
}
func (f *fakeAttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeAttachmentStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Attachment, error) {
	if f.getByIDsFn == nil {
		return map[uuid.UUID]*models.Attachment{}, nil
	}
	return f.getByIDsFn(ctx, ids)
}

type fakeReactionStore struct {
	upsertFn         func(ctx context.Context, reaction *models.Reaction) error
	deleteFn         func(ctx context.Context, messageID uuid.UUID, userID int64) error
	countsForFn      func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error)
	listForMessageFn func(ctx context.Context, messageID uuid.UUID) ([]*models.Reaction, error)
}

func (f *fakeReactionStore) Upsert(ctx context.Context, reaction *models.Reaction) error {
	return f.upsertFn(ctx, reaction)
}
func (f *fakeReactionStore) Delete(ctx context.Context, messageID uuid.UUID, userID int64) error {
	return f.deleteFn(ctx, messageID, userID)
}
func (f *fakeReactionStore) CountsFor(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]repositories.ReactionCounts, error) {
	if f.countsForFn == nil {
		return map[uuid.UUID]repositories.ReactionCounts{}, nil
	}
	return f.countsForFn(ctx, messageIDs)
}
func (f *fakeReactionStore) ListForMessage(ctx context.Context, messageID uuid.UUID) ([]*models.Reaction, error) {
	return f.listForMessageFn(ctx, messageID)
}

type fakeReadPointerStore struct {
	advanceFn     func(ctx context.Context, pointer *models.ReadPointer) error
	getFn         func(ctx context.Context, conversationID, userID int64) (*models.ReadPointer, error)
	unreadCountFn func(ctx context.Context, conversationID, userID int64) (int, error)
}

func (f *fakeReadPointerStore) Advance(ctx context.Context, pointer *models.ReadPointer) error {
	return f.advanceFn(ctx, pointer)
}
func (f *fakeReadPointerStore) Get(ctx context.Context, conversationID, userID int64) (*models.ReadPointer, error) {
	return f.getFn(ctx, conversationID, userID)
}
func (f *fakeReadPointerStore) UnreadCount(ctx context.Context, conversationID, userID int64) (int, error) {
	return f.unreadCountFn(ctx, conversationID, userID)
}

type fakeFollowStore struct {
	addFn           func(ctx context.Context, followerID, followedID int64) (bool, error)
	removeFn        func(ctx context.Context, followerID, followedID int64) error
	existsFn        func(ctx context.Context, followerID, followedID int64) (bool, error)
	listFollowingFn func(ctx context.Context, userID int64) ([]*models.User, error)
	listFollowersFn func(ctx context.Context, userID int64) ([]*models.User, error)
	followedIDsFn   func(ctx context.Context, userID int64) (map[int64]bool, error)
}

func (f *fakeFollowStore) Add(ctx context.Context, followerID, followedID int64) (bool, error) {
	return f.addFn(ctx, followerID, followedID)
}
func (f *fakeFollowStore) Remove(ctx context.Context, followerID, followedID int64) error {
	return f.removeFn(ctx, followerID, followedID)
}
func (f *fakeFollowStore) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	return f.existsFn(ctx, followerID, followedID)
}
func (f *fakeFollowStore) ListFollowing(ctx context.Context, userID int64) ([]*models.User, error) {
	return f.listFollowingFn(ctx, userID)
}
func (f *fakeFollowStore) ListFollowers(ctx context.Context, userID int64) ([]*models.User, error) {
	return f.listFollowersFn(ctx, userID)
}
func (f *fakeFollowStore) FollowedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	return f.followedIDsFn(ctx, userID)
}

type fakeBlockStore struct {
	addFn             func(ctx context.Context, blockerID, blockedID int64) (bool, error)
	removeFn          func(ctx context.Context, blockerID, blockedID int64) error
	isBlockedEitherFn func(ctx context.Context, userA, userB int64) (bool, error)
	blockedIDsFn      func(ctx context.Context, userID int64) (map[int64]bool, error)
}

func (f *fakeBlockStore) Add(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	return f.addFn(ctx, blockerID, blockedID)
}
func (f *fakeBlockStore) Remove(ctx context.Context, blockerID, blockedID int64) error {
	return f.removeFn(ctx, blockerID, blockedID)
}
func (f *fakeBlockStore) IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error) {
	if f.isBlockedEitherFn == nil {
		return false, nil
	}
	return f.isBlockedEitherFn(ctx, userA, userB)
}
func (f *fakeBlockStore) BlockedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	return f.blockedIDsFn(ctx, userID)
}

type fakeReportStore struct {
	createFn      func(ctx context.Context, report *models.Report) error
	listPendingFn func(ctx context.Context, limit int) ([]*models.Report, error)
	resolveFn     func(ctx context.Context, id int64) error
}

func (f *fakeReportStore) Create(ctx context.Context, report *models.Report) error {
	return f.createFn(ctx, report)
}
func (f *fakeReportStore) ListPending(ctx context.Context, limit int) ([]*models.Report, error) {
	return f.listPendingFn(ctx, limit)
}
func (f *fakeReportStore) Resolve(ctx context.Context, id int64) error {
	return f.resolveFn(ctx, id)
}

func intPtr(v int) *int { return &v }

// fakeEvents records broadcast events instead of delivering them.
type fakeEvents struct {
	events []*websocket.Event
}

func (f *fakeEvents) Broadcast(event *websocket.Event) {
	f.events = append(f.events, event)
}

// fakeURLResolver maps storage keys to predictable URLs.
type fakeURLResolver struct{}

func (fakeURLResolver) ResolveURL(storageKey string) string {
	return "http://localhost:8080/uploads/" + storageKey
}

func newTestHydrator(attachments *fakeAttachmentStore, reactions *fakeReactionStore, messages *fakeMessageStore) *messageHydrator {
	if attachments == nil {
		attachments = &fakeAttachmentStore{}
	}
	if reactions == nil {
		reactions = &fakeReactionStore{}
	}
	return newMessageHydrator(attachments, reactions, messages, fakeURLResolver{}, zerolog.Nop())
}

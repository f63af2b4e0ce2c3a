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

type conversationFixture struct {
	conversations *fakeConversationStore
	participants  *fakeParticipantStore
	messages      *fakeMessageStore
	readPointers  *fakeReadPointerStore
	users         *fakeUserStore
	blocks        *fakeBlockStore
	events        *fakeEvents
}

func newConversationFixture() *conversationFixture {
	return &conversationFixture{
		conversations: &fakeConversationStore{},
		participants:  &fakeParticipantStore{},
		messages:      &fakeMessageStore{},
		readPointers:  &fakeReadPointerStore{},
		users:         &fakeUserStore{},
		blocks:        &fakeBlockStore{},
		events:        &fakeEvents{},
	}
}

func (f *conversationFixture) service() ConversationService {
	return NewConversationService(
		f.conversations,
		f.participants,
		f.messages,
		f.readPointers,
		f.users,
		f.blocks,
		fakeURLResolver{},
		f.events,
		zerolog.Nop(),
	)
}

func TestGetOrCreateDirectWithSelf(t *testing.T) {
	f := newConversationFixture()

	_, err := f.service().GetOrCreateDirect(context.Background(), 10, 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestGetOrCreateDirectBlocked(t *testing.T) {
	f := newConversationFixture()
	f.users.findByIDFn = func(ctx context.Context, id int64) (*models.User, error) {
		return &models.User{ID: id, Username: "other"}, nil
	}
	f.blocks.isBlockedEitherFn = func(ctx context.Context, userA, userB int64) (bool, error) {
		return true, nil
	}

	_, err := f.service().GetOrCreateDirect(context.Background(), 10, 11)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGetOrCreateDirectFirstContact(t *testing.T) {
	f := newConversationFixture()
	conv := &models.Conversation{ID: 7, Type: models.ConversationTypeDirect}

	f.users.findByIDFn = func(ctx context.Context, id int64) (*models.User, error) {
		return &models.User{ID: id, Username: "other"}, nil
	}
	f.conversations.getOrCreateDirectFn = func(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error) {
		return conv, true, nil
	}

	var added []int64
	f.participants.addFn = func(ctx context.Context, conversationID, userID int64, role models.ParticipantRole) error {
		assert.Equal(t, conv.ID, conversationID)
		assert.Equal(t, models.ParticipantRoleMember, role)
		added = append(added, userID)
		return nil
	}
	f.participants.listFn = func(ctx context.Context, conversationID int64) ([]*models.Participant, error) {
		return nil, nil
	}

	response, err := f.service().GetOrCreateDirect(context.Background(), 10, 11)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, response.ID)
	assert.ElementsMatch(t, []int64{10, 11}, added, "both sides become members on creation")
}

func TestGetOrCreateDirectExisting(t *testing.T) {
	f := newConversationFixture()
	conv := &models.Conversation{ID: 7, Type: models.ConversationTypeDirect}

	f.users.findByIDFn = func(ctx context.Context, id int64) (*models.User, error) {
		return &models.User{ID: id, Username: "other"}, nil
	}
	f.conversations.getOrCreateDirectFn = func(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error) {
		return conv, false, nil
	}
	// addFn left nil: adding members again would panic the test
	f.participants.listFn = func(ctx context.Context, conversationID int64) ([]*models.Participant, error) {
		return nil, nil
	}

	response, err := f.service().GetOrCreateDirect(context.Background(), 11, 10)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, response.ID)
}

func TestCreateGroupSkipsBlockedMembers(t *testing.T) {
	f := newConversationFixture()

	f.users.findByIDFn = func(ctx context.Context, id int64) (*models.User, error) {
		return &models.User{ID: id, Username: "grower"}, nil
	}
	f.conversations.createFn = func(ctx context.Context, conv *models.Conversation) (int64, error) {
		conv.ID = 9
		return 9, nil
	}
	f.blocks.isBlockedEitherFn = func(ctx context.Context, userA, userB int64) (bool, error) {
		return userB == 12, nil
	}

	var added []int64
	f.participants.addFn = func(ctx context.Context, conversationID, userID int64, role models.ParticipantRole) error {
		added = append(added, userID)
		if userID == 10 {
			assert.Equal(t, models.ParticipantRoleOwner, role)
		} else {
			assert.Equal(t, models.ParticipantRoleMember, role)
		}
		return nil
	}
	f.participants.listFn = func(ctx context.Context, conversationID int64) ([]*models.Participant, error) {
		return nil, nil
	}
	f.messages.createFn = func(ctx context.Context, message *models.Message) error {
		assert.Equal(t, models.ContentTypeSystem, message.ContentType)
		assert.Equal(t, "grower created the group", message.ContentText)
		return nil
	}

	_, err := f.service().CreateGroup(context.Background(), 10, &dto.CreateGroupRequest{
		Title:     "Grow tips",
		MemberIDs: []int64{10, 11, 12},
	})
	require.NoError(t, err)

	// Owner once, member 11 added, blocked 12 and duplicate owner skipped
	assert.Equal(t, []int64{10, 11}, added)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, websocket.EventMessageNew, f.events.events[0].Type)
}

func TestAddParticipantOwnerOnly(t *testing.T) {
	f := newConversationFixture()
	f.conversations.getByIDFn = func(ctx context.Context, id int64) (*models.Conversation, error) {
		return &models.Conversation{ID: id, Type: models.ConversationTypeGroup}, nil
	}
	f.participants.listFn = func(ctx context.Context, conversationID int64) ([]*models.Participant, error) {
		return []*models.Participant{
			{ConversationID: conversationID, UserID: 10, Role: models.ParticipantRoleOwner},
			{ConversationID: conversationID, UserID: 11, Role: models.ParticipantRoleMember},
		}, nil
	}

	err := f.service().AddParticipant(context.Background(), 9, 11, 12)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAddParticipantRejectsNonGroup(t *testing.T) {
	f := newConversationFixture()
	f.conversations.getByIDFn = func(ctx context.Context, id int64) (*models.Conversation, error) {
		return &models.Conversation{ID: id, Type: models.ConversationTypeDirect}, nil
	}

	err := f.service().AddParticipant(context.Background(), 9, 10, 12)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestRemoveParticipantSelfLeave(t *testing.T) {
	f := newConversationFixture()
	f.conversations.getByIDFn = func(ctx context.Context, id int64) (*models.Conversation, error) {
		return &models.Conversation{ID: id, Type: models.ConversationTypeGroup}, nil
	}
	f.participants.isParticipantFn = func(ctx context.Context, conversationID, userID int64) (bool, error) {
		return true, nil
	}
	f.users.findByIDFn = func(ctx context.Context, id int64) (*models.User, error) {
		return &models.User{ID: id, Username: "leaver"}, nil
	}

	removed := false
	f.participants.removeFn = func(ctx context.Context, conversationID, userID int64) error {
		assert.Equal(t, int64(11), userID)
		removed = true
		return nil
	}
	f.messages.createFn = func(ctx context.Context, message *models.Message) error {
		assert.Equal(t, "leaver left", message.ContentText)
		return nil
	}

	// A member leaving on their own needs no owner check
	err := f.service().RemoveParticipant(context.Background(), 9, 11, 11)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestMarkReadWrongConversation(t *testing.T) {
	f := newConversationFixture()
	message := testMessage(2, 11, "elsewhere", time.Now())

	f.conversations.getByIDFn = func(ctx context.Context, id int64) (*models.Conversation, error) {
		return &models.Conversation{ID: id, Type: models.ConversationTypeGeneral}, nil
	}
	f.messages.getByIDFn = func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
		return message, nil
	}

	err := f.service().MarkRead(context.Background(), 1, 10, message.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestMarkReadAdvancesPointer(t *testing.T) {
	f := newConversationFixture()
	message := testMessage(1, 11, "read me", time.Now())

	f.conversations.getByIDFn = func(ctx context.Context, id int64) (*models.Conversation, error) {
		return &models.Conversation{ID: id, Type: models.ConversationTypeGeneral}, nil
	}
	f.messages.getByIDFn = func(ctx context.Context, id uuid.UUID) (*models.Message, error) {
		return message, nil
	}

	var advanced *models.ReadPointer
	f.readPointers.advanceFn = func(ctx context.Context, pointer *models.ReadPointer) error {
		advanced = pointer
		return nil
	}

	err := f.service().MarkRead(context.Background(), 1, 10, message.ID)
	require.NoError(t, err)
	require.NotNil(t, advanced)
	assert.Equal(t, int64(1), advanced.ConversationID)
	assert.Equal(t, int64(10), advanced.UserID)
	assert.Equal(t, message.ID, advanced.LastReadID)
	assert.True(t, message.CreatedAt.Equal(advanced.LastReadAt))
}

func TestListConversationsHidesDeletedLastMessage(t *testing.T) {
	f := newConversationFixture()
	lastAt := time.Now()
	text := "burned it"
	f.conversations.listForUserFn = func(ctx context.Context, userID int64) ([]*repositories.ConversationSummary, error) {
		return []*repositories.ConversationSummary{
			{
				Conversation:    models.Conversation{ID: 1, Type: models.ConversationTypeGeneral},
				LastMessageAt:   &lastAt,
				LastMessageText: &text,
				LastDeleted:     true,
				UnreadCount:     2,
			},
		}, nil
	}

	summaries, err := f.service().ListConversations(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Nil(t, summaries[0].LastMessageText, "deleted last message text is hidden")
	assert.NotNil(t, summaries[0].LastMessageAt, "timestamp survives for sorting")
	assert.Equal(t, 2, summaries[0].UnreadCount)
}

func TestListConversationsIncludesParticipants(t *testing.T) {
	f := newConversationFixture()
	f.conversations.listForUserFn = func(ctx context.Context, userID int64) ([]*repositories.ConversationSummary, error) {
		return []*repositories.ConversationSummary{
			{Conversation: models.Conversation{ID: 5, Type: models.ConversationTypeGroup}},
		}, nil
	}
	f.participants.listBatchFn = func(ctx context.Context, conversationIDs []int64) (map[int64][]*models.Participant, error) {
		assert.Equal(t, []int64{5}, conversationIDs)
		return map[int64][]*models.Participant{
			5: {
				{ConversationID: 5, UserID: 10, Role: models.ParticipantRoleOwner, User: &models.User{ID: 10, Username: "grower"}},
				{ConversationID: 5, UserID: 11, Role: models.ParticipantRoleMember, User: &models.User{ID: 11, Username: "trimmer"}},
			},
		}, nil
	}

	summaries, err := f.service().ListConversations(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Participants, 2)
	assert.Equal(t, "grower", summaries[0].Participants[0].Username)
	assert.Equal(t, string(models.ParticipantRoleOwner), summaries[0].Participants[0].Role)
}

func TestCanAccessGeneralOpenToAll(t *testing.T) {
	f := newConversationFixture()
	f.conversations.getByIDFn = func(ctx context.Context, id int64) (*models.Conversation, error) {
		return &models.Conversation{ID: id, Type: models.ConversationTypeGeneral}, nil
	}

	ok, err := f.service().CanAccess(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.True(t, ok)
}

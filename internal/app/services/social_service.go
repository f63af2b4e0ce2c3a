package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/filestorage"
)

// suggestionWindow is how many recent feed messages are scanned for
// suggestion candidates.
const suggestionWindow = 200

// Suggested-follows list sizing: callers may ask for up to
// maxSuggestionLimit entries, defaulting to defaultSuggestionLimit.
const (
	defaultSuggestionLimit = 8
	maxSuggestionLimit     = 50
)

// SocialService defines the interface for follow and block operations
type SocialService interface {
	Follow(ctx context.Context, followerID, followedID int64) (*dto.FollowResponse, error)
	Unfollow(ctx context.Context, followerID, followedID int64) error
	ListFollowing(ctx context.Context, userID int64) ([]dto.UserBasicResponse, error)
	ListFollowers(ctx context.Context, userID int64) ([]dto.UserBasicResponse, error)
	Block(ctx context.Context, blockerID, blockedID int64) error
	Unblock(ctx context.Context, blockerID, blockedID int64) error
	SuggestedFollows(ctx context.Context, userID int64, limit int) (*dto.SuggestedFollowsResponse, error)
}

// socialServiceImpl implements SocialService
type socialServiceImpl struct {
	followStore       followStore
	blockStore        blockStore
	userStore         userStore
	conversationStore conversationStore
	messageStore      messageStore
	urls              filestorage.URLResolver
	logger            zerolog.Logger
}

// NewSocialService creates a new SocialService
func NewSocialService(
	followStore followStore,
	blockStore blockStore,
	userStore userStore,
	conversationStore conversationStore,
	messageStore messageStore,
	urls filestorage.URLResolver,
	logger zerolog.Logger,
) SocialService {
	return &socialServiceImpl{
		followStore:       followStore,
		blockStore:        blockStore,
		userStore:         userStore,
		conversationStore: conversationStore,
		messageStore:      messageStore,
		urls:              urls,
		logger:            logger,
	}
}

// Follow creates a follower edge. Following yourself and following twice
// are both no-ops, not errors.
func (s *socialServiceImpl) Follow(ctx context.Context, followerID, followedID int64) (*dto.FollowResponse, error) {
	if followerID == followedID {
		return &dto.FollowResponse{Following: false, Created: false}, nil
	}

	if _, err := s.userStore.FindByID(ctx, followedID); err != nil {
		return nil, err
	}

	blocked, err := s.blockStore.IsBlockedEither(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.NewForbiddenError("Cannot follow this user")
	}

	created, err := s.followStore.Add(ctx, followerID, followedID)
	if err != nil {
		s.logger.Error().Err(err).Int64("followerID", followerID).Int64("followedID", followedID).Msg("Failed to create follow")
		return nil, err
	}

	return &dto.FollowResponse{Following: true, Created: created}, nil
}

// Unfollow removes a follower edge. Removing an absent edge is a no-op.
func (s *socialServiceImpl) Unfollow(ctx context.Context, followerID, followedID int64) error {
	return s.followStore.Remove(ctx, followerID, followedID)
}

// ListFollowing returns the users the given user follows
func (s *socialServiceImpl) ListFollowing(ctx context.Context, userID int64) ([]dto.UserBasicResponse, error) {
	users, err := s.followStore.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.userBasics(users), nil
}

// ListFollowers returns the users following the given user
func (s *socialServiceImpl) ListFollowers(ctx context.Context, userID int64) ([]dto.UserBasicResponse, error) {
	users, err := s.followStore.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.userBasics(users), nil
}

// Block creates a block edge and severs any follow relationship between the
// two users in both directions.
func (s *socialServiceImpl) Block(ctx context.Context, blockerID, blockedID int64) error {
	if blockerID == blockedID {
		return apperrors.NewInvalidArgumentError("Cannot block yourself")
	}

	if _, err := s.userStore.FindByID(ctx, blockedID); err != nil {
		return err
	}

	if _, err := s.blockStore.Add(ctx, blockerID, blockedID); err != nil {
		s.logger.Error().Err(err).Int64("blockerID", blockerID).Int64("blockedID", blockedID).Msg("Failed to create block")
		return err
	}

	if err := s.followStore.Remove(ctx, blockerID, blockedID); err != nil {
		return err
	}
	return s.followStore.Remove(ctx, blockedID, blockerID)
}

// Unblock removes a block edge. Severed follow edges are not restored.
func (s *socialServiceImpl) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	return s.blockStore.Remove(ctx, blockerID, blockedID)
}

// SuggestedFollows proposes recently active feed posters the caller does
// not follow yet. Blocked users and the caller are filtered out.
func (s *socialServiceImpl) SuggestedFollows(ctx context.Context, userID int64, limit int) (*dto.SuggestedFollowsResponse, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	general, err := s.conversationStore.GetGeneral(ctx)
	if err != nil {
		return nil, err
	}

	senderIDs, err := s.messageStore.RecentDistinctSenders(ctx, general.ID, suggestionWindow)
	if err != nil {
		return nil, err
	}

	followed, err := s.followStore.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockStore.BlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var candidateIDs []int64
	for _, id := range senderIDs {
		if id == userID || followed[id] || blocked[id] {
			continue
		}
		candidateIDs = append(candidateIDs, id)
		if len(candidateIDs) == limit {
			break
		}
	}

	users, err := s.userStore.FindByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	response := &dto.SuggestedFollowsResponse{Users: []dto.UserBasicResponse{}}
	for _, id := range candidateIDs {
		if user, ok := users[id]; ok {
			response.Users = append(response.Users, s.userBasic(user))
		}
	}

	return response, nil
}

func (s *socialServiceImpl) userBasics(users []*models.User) []dto.UserBasicResponse {
	responses := make([]dto.UserBasicResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, s.userBasic(user))
	}
	return responses
}

func (s *socialServiceImpl) userBasic(user *models.User) dto.UserBasicResponse {
	response := dto.UserBasicResponse{
		ID:       user.ID,
		Username: user.Username,
	}
	if user.Avatar != nil {
		url := s.urls.ResolveURL(user.Avatar.StorageKey)
		response.AvatarURL = &url
	}
	return response
}

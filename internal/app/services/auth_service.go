package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/auth"
	"github.com/budline/budline/internal/pkg/filestorage"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userStore  userStore
	jwtService *auth.JWTService
	urls       filestorage.URLResolver
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userStore userStore,
	jwtService *auth.JWTService,
	urls filestorage.URLResolver,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userStore:  userStore,
		jwtService: jwtService,
		urls:       urls,
		logger:     logger,
	}
}

// Register creates a new account and issues its first token pair
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.ToLower(strings.TrimSpace(req.Username)),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hashed,
	}
	if bio := strings.TrimSpace(req.Bio); bio != "" {
		user.Bio = &bio
	}

	if _, err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User registered")

	return s.authResponse(user)
}

// Login verifies credentials and issues a token pair. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userStore.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// GetProfile retrieves a user's public profile
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.userResponse(user), nil
}

func (s *authServiceImpl) authResponse(user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User: *s.userResponse(user),
		Tokens: dto.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int64(expiresIn),
		},
	}, nil
}

func (s *authServiceImpl) userResponse(user *models.User) *dto.UserResponse {
	response := &dto.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Bio:         user.Bio,
		IsModerator: user.IsModerator,
		CreatedAt:   user.CreatedAt,
	}
	if user.Avatar != nil {
		url := s.urls.ResolveURL(user.Avatar.StorageKey)
		response.AvatarURL = &url
	}
	return response
}

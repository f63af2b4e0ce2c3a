package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budline/budline/internal/app/models"
	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/pkg/apperrors"
	"github.com/budline/budline/internal/pkg/auth"
)

func newTestAuthService(users *fakeUserStore) AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "budline-test",
	})
	return NewAuthService(users, jwtService, fakeURLResolver{}, zerolog.Nop())
}

func TestRegisterNormalizesIdentity(t *testing.T) {
	var created *models.User
	users := &fakeUserStore{
		createFn: func(ctx context.Context, user *models.User) (int64, error) {
			user.ID = 1
			created = user
			return 1, nil
		},
	}

	response, err := newTestAuthService(users).Register(context.Background(), &dto.RegisterRequest{
		Username: "  GreenThumb ",
		Email:    " Grower@Example.COM ",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, "greenthumb", created.Username)
	assert.Equal(t, "grower@example.com", created.Email)
	assert.NotEqual(t, "secret-pass", created.Password, "password is stored hashed")
	assert.True(t, auth.CheckPassword(created.Password, "secret-pass"))

	assert.NotEmpty(t, response.Tokens.AccessToken)
	assert.Equal(t, "Bearer", response.Tokens.TokenType)
	assert.Equal(t, "greenthumb", response.User.Username)
}

func TestLoginUnknownUserHidesReason(t *testing.T) {
	users := &fakeUserStore{
		findByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return nil, apperrors.ErrUserNotFound
		},
	}

	_, err := newTestAuthService(users).Login(context.Background(), &dto.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "unknown user reads the same as a bad password")
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("right-password")
	require.NoError(t, err)

	users := &fakeUserStore{
		findByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username, Password: hash}, nil
		},
	}

	_, err = newTestAuthService(users).Login(context.Background(), &dto.LoginRequest{
		Username: "grower",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginSuccess(t *testing.T) {
	hash, err := auth.HashPassword("right-password")
	require.NoError(t, err)

	users := &fakeUserStore{
		findByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			assert.Equal(t, "grower", username, "lookup uses the normalized username")
			return &models.User{ID: 1, Username: "grower", Password: hash}, nil
		},
	}

	response, err := newTestAuthService(users).Login(context.Background(), &dto.LoginRequest{
		Username: " Grower ",
		Password: "right-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, response.Tokens.AccessToken)
	assert.Equal(t, int64(1), response.User.ID)
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/indianduo/progression-engine/internal/lib/jwt"
	"github.com/indianduo/progression-engine/internal/lib/password"
	"github.com/indianduo/progression-engine/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret-key", time.Hour)
}

func TestService_Register(t *testing.T) {
	req := models.RegisterRequest{
		Email:            "priya@example.com",
		Username:         "priya",
		Password:         "correct-horse",
		NativeLanguage:   "en",
		LearningLanguage: "hi",
	}

	tests := []struct {
		name       string
		setupMocks func(u *UsersMock)
		wantUID    string
		wantErr    bool
	}{
		{
			name: "успешная регистрация",
			setupMocks: func(u *UsersMock) {
				u.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == req.Email &&
						user.Username == req.Username &&
						user.LearningLanguage == req.LearningLanguage &&
						password.CompareHash(user.PasswordHash, req.Password) == nil
				})).Return("uid-1", nil).Once()
			},
			wantUID: "uid-1",
		},
		{
			name: "ошибка хранилища",
			setupMocks: func(u *UsersMock) {
				u.On("RegisterUser", mock.Anything, mock.Anything).
					Return("", errors.New("duplicate username")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			tt.setupMocks(users)
			svc := New(users, newTestMaker())

			uid, err := svc.Register(context.Background(), req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUID, uid)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hashed, err := password.GetHash("correct-horse")
	require.NoError(t, err)

	stored := &models.User{
		UID:          "uid-1",
		Username:     "priya",
		PasswordHash: hashed,
	}

	tests := []struct {
		name       string
		setupMocks func(u *UsersMock)
		rawPass    string
		wantErr    error
	}{
		{
			name: "успешный вход",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByUsername", mock.Anything, "priya").Return(stored, nil).Once()
			},
			rawPass: "correct-horse",
		},
		{
			name: "неверный пароль",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByUsername", mock.Anything, "priya").Return(stored, nil).Once()
			},
			rawPass: "wrong-password",
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "пользователь не найден",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByUsername", mock.Anything, "priya").
					Return(nil, errors.New("not found")).Once()
			},
			rawPass: "correct-horse",
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			tt.setupMocks(users)
			maker := newTestMaker()
			svc := New(users, maker)

			token, err := svc.Login(context.Background(), "priya", tt.rawPass)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := maker.ParseToken(token)
				require.NoError(t, err)
				assert.Equal(t, "priya", claims.Username)
				assert.Equal(t, "uid-1", claims.UserUID)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	maker := newTestMaker()
	svc := New(new(UsersMock), maker)

	token, err := maker.GenerateToken("priya", "uid-1")
	require.NoError(t, err)

	t.Run("валидный токен", func(t *testing.T) {
		user, valid, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.True(t, valid)
		assert.Equal(t, "priya", user.Username)
		assert.Equal(t, "uid-1", user.UID)
	})

	t.Run("мусорный токен", func(t *testing.T) {
		user, valid, err := svc.ValidateToken(context.Background(), "not-a-token")
		assert.Error(t, err)
		assert.False(t, valid)
		assert.Nil(t, user)
	})
}

package webhook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/credits-service/internal/models"
	"github.com/magabrotheeeer/credits-service/internal/services/webhook"
	"github.com/magabrotheeeer/credits-service/internal/storage"
)

// RepoMock реализует интерфейс webhook.UserRepository
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *RepoMock) CreateUserWithSignupBonus(ctx context.Context, user models.User, bonus int, description string) error {
	args := m.Called(ctx, user, bonus, description)
	return args.Error(0)
}

func (m *RepoMock) UpdateUserFields(ctx context.Context, id string, patch models.UserPatch) (int, error) {
	args := m.Called(ctx, id, patch)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) DeactivateUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func fullUserData() models.ClerkUserData {
	return models.ClerkUserData{
		ID:                    "user_123",
		FirstName:             "Alice",
		LastName:              "Liddell",
		ImageURL:              "https://img.clerk.com/alice.png",
		PrimaryEmailAddressID: "idn_2",
		EmailAddresses: []models.ClerkEmailAddress{
			{ID: "idn_1", EmailAddress: "old@example.com"},
			{ID: "idn_2", EmailAddress: "alice@example.com"},
		},
	}
}

func existingUser() *models.User {
	return &models.User{ID: "user_123", Email: "alice@example.com", Credits: 50, IsActive: true}
}

func TestHandleEvent_UserCreated(t *testing.T) {
	ctx := context.Background()

	t.Run("new user gets signup bonus in one call", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "user_123").Return(nil, storage.ErrUserNotFound).Once()
		repo.On("CreateUserWithSignupBonus", mock.Anything,
			mock.MatchedBy(func(u models.User) bool {
				return u.ID == "user_123" &&
					u.Email == "alice@example.com" &&
					u.Nickname != nil && *u.Nickname == "Alice Liddell" &&
					u.AvatarURL != nil && *u.AvatarURL == "https://img.clerk.com/alice.png"
			}),
			50, "Signup bonus: 50 credits").Return(nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		err := svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.created", Data: fullUserData()})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate delivery is a no-op", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "user_123").Return(existingUser(), nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		err := svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.created", Data: fullUserData()})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "CreateUserWithSignupBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no primary match falls back to first address", func(t *testing.T) {
		data := fullUserData()
		data.PrimaryEmailAddressID = "idn_missing"

		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "user_123").Return(nil, storage.ErrUserNotFound).Once()
		repo.On("CreateUserWithSignupBonus", mock.Anything,
			mock.MatchedBy(func(u models.User) bool { return u.Email == "old@example.com" }),
			50, mock.Anything).Return(nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		require.NoError(t, svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.created", Data: data}))
		repo.AssertExpectations(t)
	})

	t.Run("empty name stays absent", func(t *testing.T) {
		data := fullUserData()
		data.FirstName = ""
		data.LastName = ""
		data.ImageURL = ""

		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "user_123").Return(nil, storage.ErrUserNotFound).Once()
		repo.On("CreateUserWithSignupBonus", mock.Anything,
			mock.MatchedBy(func(u models.User) bool { return u.Nickname == nil && u.AvatarURL == nil }),
			50, mock.Anything).Return(nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		require.NoError(t, svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.created", Data: data}))
		repo.AssertExpectations(t)
	})

	t.Run("existence check failure is propagated", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "user_123").Return(nil, errors.New("db down")).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		err := svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.created", Data: fullUserData()})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "CreateUserWithSignupBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleEvent_UserUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("partial patch with only non-empty fields", func(t *testing.T) {
		data := fullUserData()
		data.FirstName = ""
		data.LastName = ""

		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "user_123").Return(existingUser(), nil).Once()
		repo.On("UpdateUserFields", mock.Anything, "user_123", models.UserPatch{
			Email:     "alice@example.com",
			AvatarURL: "https://img.clerk.com/alice.png",
		}).Return(1, nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		require.NoError(t, svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.updated", Data: data}))
		repo.AssertExpectations(t)
	})

	t.Run("empty patch skips the write", func(t *testing.T) {
		data := models.ClerkUserData{ID: "user_123"}

		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "user_123").Return(existingUser(), nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		require.NoError(t, svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.updated", Data: data}))
		repo.AssertNotCalled(t, "UpdateUserFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user is created instead", func(t *testing.T) {
		repo := new(RepoMock)
		// Первый Get — из handleUserUpdated, второй — из handleUserCreated.
		repo.On("GetUserByID", mock.Anything, "user_123").Return(nil, storage.ErrUserNotFound).Twice()
		repo.On("CreateUserWithSignupBonus", mock.Anything,
			mock.MatchedBy(func(u models.User) bool { return u.ID == "user_123" }),
			50, mock.Anything).Return(nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		require.NoError(t, svc.HandleEvent(ctx, models.ClerkEvent{Type: "user.updated", Data: fullUserData()}))
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "UpdateUserFields", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleEvent_UserDeleted(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates user", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeactivateUser", mock.Anything, "user_123").Return(nil).Once()

		svc := webhook.New(repo, 50, newNoopLogger())
		require.NoError(t, svc.HandleEvent(ctx, models.ClerkEvent{
			Type: "user.deleted",
			Data: models.ClerkUserData{ID: "user_123"},
		}))
		repo.AssertExpectations(t)
	})

	t.Run("redelivery is idempotent", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeactivateUser", mock.Anything, "user_123").Return(nil).Twice()

		svc := webhook.New(repo, 50, newNoopLogger())
		event := models.ClerkEvent{Type: "user.deleted", Data: models.ClerkUserData{ID: "user_123"}}
		require.NoError(t, svc.HandleEvent(ctx, event))
		require.NoError(t, svc.HandleEvent(ctx, event))
		repo.AssertExpectations(t)
	})
}

func TestHandleEvent_UnknownType(t *testing.T) {
	repo := new(RepoMock)
	svc := webhook.New(repo, 50, newNoopLogger())

	err := svc.HandleEvent(context.Background(), models.ClerkEvent{
		Type: "session.created",
		Data: models.ClerkUserData{ID: "user_123"},
	})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateUserWithSignupBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateUserFields", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeactivateUser", mock.Anything, mock.Anything)
}

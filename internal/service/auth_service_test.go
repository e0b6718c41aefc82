package service

import (
	"context"
	"testing"
	"time"

	"spendlens/internal/dto"
	"spendlens/internal/models"
	"spendlens/pkg/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuthStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (f *fakeAuthStore) Create(_ context.Context, user *models.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeAuthStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeAuthStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func newTestAuthService(store *fakeAuthStore) *AuthService {
	manager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(store, manager, zap.NewNop())
}

func TestRegister(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(store)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "casey",
		Email:    "casey@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "casey", resp.User.Username)

	created := store.byEmail["casey@example.com"]
	require.NotNil(t, created)
	assert.NotEqual(t, "hunter2hunter2", created.Password)
	// New accounts start opted out.
	assert.False(t, created.ConsentStatus)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "casey", Email: "casey@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "other", Email: "casey@example.com", Password: "different-pass",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "casey", Email: "casey@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "casey@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "casey@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(store)

	registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "casey", Email: "casey@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	_, err = svc.RefreshToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

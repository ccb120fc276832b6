package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	users map[string]domain.User
	fail  error
}

func (m *memUsers) GetUser(ctx context.Context, username string) (*domain.User, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) SaveUser(ctx context.Context, user *domain.User) error {
	if m.fail != nil {
		return m.fail
	}
	m.users[user.Username] = *user
	return nil
}

func newTestAuth(users *memUsers) *AuthService {
	s := NewAuthService(users, zap.NewNop())
	s.cost = bcrypt.MinCost
	return s
}

func TestAuthService_SetPasswordAndAuthenticate(t *testing.T) {
	users := &memUsers{users: map[string]domain.User{}}
	svc := newTestAuth(users)
	ctx := context.Background()

	require.NoError(t, svc.SetPassword(ctx, " admin ", "hunter2"))
	assert.NotEqual(t, "hunter2", users.users["admin"].PasswordHash)

	u, err := svc.Authenticate(ctx, "admin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "hunter3"},
		{"unknown user", "root", "hunter2"},
		{"empty password", "admin", ""},
		{"empty username", "", "hunter2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestAuthService_StoreFailureIsNotUnauthorized(t *testing.T) {
	users := &memUsers{users: map[string]domain.User{}, fail: domain.Unavailable("get user", errors.New("down"))}
	svc := newTestAuth(users)

	_, err := svc.Authenticate(context.Background(), "admin", "pw")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_SetPasswordRequiresFields(t *testing.T) {
	svc := newTestAuth(&memUsers{users: map[string]domain.User{}})

	assert.Error(t, svc.SetPassword(context.Background(), "", "pw"))
	assert.Error(t, svc.SetPassword(context.Background(), "admin", ""))
}

package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, username, email, passwordHash string, role Role) (User, error) {
	args := m.Called(ctx, username, email, passwordHash, role)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindUserByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newTestServer(repo Repository) *Server {
	s := NewServer(repo, Options{
		JWTSecret:   "test-secret",
		AccessTTL:   time.Minute,
		RefreshTTL:  time.Hour,
		AdminEmails: []string{"root@example.com"},
	})
	s.bcryptCost = 4
	return s
}

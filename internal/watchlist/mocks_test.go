package watchlist

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, creator, title string) (Watchlist, error) {
	args := m.Called(ctx, creator, title)
	return args.Get(0).(Watchlist), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id string) (Watchlist, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Watchlist), args.Error(1)
}

func (m *MockStore) ListForMember(ctx context.Context, userID string) ([]Watchlist, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]Watchlist), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListPendingFor(ctx context.Context, userID string) ([]PendingInvite, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]PendingInvite), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) Rename(ctx context.Context, id, by, title string) (Watchlist, error) {
	args := m.Called(ctx, id, by, title)
	return args.Get(0).(Watchlist), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id, by string) error {
	return m.Called(ctx, id, by).Error(0)
}

func (m *MockStore) Invite(ctx context.Context, id, by, target string) error {
	return m.Called(ctx, id, by, target).Error(0)
}

func (m *MockStore) RevokeInvite(ctx context.Context, id, by, target string) error {
	return m.Called(ctx, id, by, target).Error(0)
}

func (m *MockStore) Respond(ctx context.Context, id, by string, action Action) error {
	return m.Called(ctx, id, by, action).Error(0)
}

func (m *MockStore) Leave(ctx context.Context, id, by string) error {
	return m.Called(ctx, id, by).Error(0)
}

func (m *MockStore) AddMovie(ctx context.Context, id, by string, entry MovieEntry) (Watchlist, error) {
	args := m.Called(ctx, id, by, entry)
	return args.Get(0).(Watchlist), args.Error(1)
}

func (m *MockStore) RemoveMovie(ctx context.Context, id, by, catalogID string) (Watchlist, error) {
	args := m.Called(ctx, id, by, catalogID)
	return args.Get(0).(Watchlist), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ResolveEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

package review

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/auth"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListForMovie(ctx context.Context, catalogID string) ([]Review, error) {
	args := m.Called(ctx, catalogID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Review), args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, userID, catalogID, movieTitle string, rating int, comment string) (Review, error) {
	args := m.Called(ctx, userID, catalogID, movieTitle, rating, comment)
	return args.Get(0).(Review), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id, by string) error {
	args := m.Called(ctx, id, by)
	return args.Error(0)
}

func (m *MockStore) ListAll(ctx context.Context) ([]AdminReview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AdminReview), args.Error(1)
}

func (m *MockStore) AdminDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// requireTestUser authenticates from the X-Test-User header and rejects
// requests without one.
func requireTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Test-User")
		if id == "" {
			apperr.Write(w, apperr.ErrUnauthenticated)
			return
		}
		r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: id, Role: auth.RoleUser}))
		next.ServeHTTP(w, r)
	})
}

// Package admin exposes moderation endpoints: usage stats and the removal of
// users and reviews. Every route requires the admin role.
package admin

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/auth"
	"watchlist-service/internal/review"
)

type Users interface {
	ListUsers(ctx context.Context) ([]auth.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

type Reviews interface {
	ListAll(ctx context.Context) ([]review.AdminReview, error)
	AdminDelete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type Watchlists interface {
	Count(ctx context.Context) (int, error)
}

type Server struct {
	users      Users
	reviews    Reviews
	watchlists Watchlists
}

func NewServer(users Users, reviews Reviews, watchlists Watchlists) *Server {
	return &Server{
		users:      users,
		reviews:    reviews,
		watchlists: watchlists,
	}
}

// Router mounts the admin routes behind middlewares, which must authenticate
// the caller and check the admin role.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/stats", s.handleStats)
	r.Get("/reviews", s.handleListReviews)
	r.Delete("/reviews/{id}", s.handleDeleteReview)
	r.Get("/users", s.handleListUsers)
	r.Delete("/users/{id}", s.handleDeleteUser)

	return r
}

func fail(w http.ResponseWriter, op string, err error) {
	if apperr.IsInternal(err) {
		log.Printf("admin: %s: %v", op, err)
	}
	apperr.Write(w, err)
}

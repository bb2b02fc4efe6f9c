// Package review stores user movie reviews. Listing is public; writing and
// deleting require an authenticated author.
package review

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/auth"
)

type Server struct {
	store Store
}

func NewServer(store Store) *Server {
	return &Server{store: store}
}

// Router mounts the review routes. authenticate guards every route except the
// public listing.
func (s *Server) Router(authenticate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/movies/{catalogId}", s.handleListForMovie)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/movies/{catalogId}", s.handleCreate)
		r.Delete("/{reviewId}", s.handleDelete)
	})

	return r
}

func callerID(r *http.Request) (string, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return "", apperr.ErrUnauthenticated
	}
	return id.UserID, nil
}

// ParseID validates a review id; anything that is not a UUID cannot exist.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrReviewNotFound
	}
	return id.String(), nil
}

func fail(w http.ResponseWriter, op string, err error) {
	if apperr.IsInternal(err) {
		log.Printf("review: %s: %v", op, err)
	}
	apperr.Write(w, err)
}

// Package watchlist implements shared movie watchlists: the membership and
// invitation state machine, the per-operation authorization gate and the
// movie-entry set, persisted in PostgreSQL.
package watchlist

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/auth"
)

// Directory resolves an account email to its user id.
type Directory interface {
	ResolveEmail(ctx context.Context, email string) (string, error)
}

type Server struct {
	store Store
	users Directory
}

func NewServer(store Store, users Directory) *Server {
	return &Server{
		store: store,
		users: users,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Post("/", s.handleCreate)
	r.Get("/", s.handleListMine)
	r.Get("/invites/pending", s.handleListPending)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGet)
		r.Patch("/", s.handleRename)
		r.Delete("/", s.handleDelete)

		r.Post("/invite", s.handleInvite)
		r.Delete("/invites/{userId}", s.handleRevokeInvite)
		r.Post("/respond", s.handleRespond)
		r.Post("/leave", s.handleLeave)

		r.Post("/add", s.handleAddMovie)
		r.Delete("/remove/{catalogId}", s.handleRemoveMovie)
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

// watchlistID returns the {id} path parameter. Ids that are not UUIDs cannot
// name a watchlist and are reported as not found.
func watchlistID(r *http.Request) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return "", ErrWatchlistNotFound
	}
	return id.String(), nil
}

// fail writes err, logging it first when it will surface as an internal error.
func fail(w http.ResponseWriter, op string, err error) {
	if apperr.IsInternal(err) {
		log.Printf("watchlist: %s: %v", op, err)
	}
	apperr.Write(w, err)
}

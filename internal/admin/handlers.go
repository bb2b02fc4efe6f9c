package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/auth"
	"watchlist-service/internal/review"
)

type stats struct {
	UserCount      int `json:"userCount"`
	ReviewCount    int `json:"reviewCount"`
	WatchlistCount int `json:"watchlistCount"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var (
		st  stats
		err error
	)
	if st.UserCount, err = s.users.CountUsers(r.Context()); err != nil {
		fail(w, "stats: users", err)
		return
	}
	if st.ReviewCount, err = s.reviews.Count(r.Context()); err != nil {
		fail(w, "stats: reviews", err)
		return
	}
	if st.WatchlistCount, err = s.watchlists.Count(r.Context()); err != nil {
		fail(w, "stats: watchlists", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.reviews.ListAll(r.Context())
	if err != nil {
		fail(w, "list reviews", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := review.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, "delete review", err)
		return
	}
	if err := s.reviews.AdminDelete(r.Context(), id); err != nil {
		fail(w, "delete review", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Review deleted."})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		fail(w, "list users", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, users)
}

// handleDeleteUser removes an account. Their reviews, memberships and the
// watchlists they created go with it.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, "delete user", auth.ErrUserNotFound)
		return
	}
	if caller, ok := auth.IdentityFrom(r.Context()); ok && caller.UserID == id.String() {
		fail(w, "delete user", apperr.New(apperr.CodeForbidden, "admins cannot delete their own account"))
		return
	}
	if err := s.users.DeleteUser(r.Context(), id.String()); err != nil {
		fail(w, "delete user", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted."})
}

package review

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/validate"
)

func catalogID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "catalogId"))
	if id == "" || len(id) > 64 {
		return "", apperr.Invalid("invalid catalog id", map[string]string{"catalogId": "is required"})
	}
	return id, nil
}

func (s *Server) handleListForMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := catalogID(r)
	if err != nil {
		fail(w, "list", err)
		return
	}

	reviews, err := s.store.ListForMovie(r.Context(), movieID)
	if err != nil {
		fail(w, "list", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "create", err)
		return
	}
	movieID, err := catalogID(r)
	if err != nil {
		fail(w, "create", err)
		return
	}

	var body createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, "create", apperr.New(apperr.CodeInvalidInput, "invalid JSON body"))
		return
	}
	body.Comment = strings.TrimSpace(body.Comment)
	body.MovieTitle = strings.TrimSpace(body.MovieTitle)
	if err := validate.Struct(body); err != nil {
		fail(w, "create", err)
		return
	}

	rv, err := s.store.Create(r.Context(), userID, movieID, body.MovieTitle, body.Rating, body.Comment)
	if err != nil {
		fail(w, "create", err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, rv)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "delete", err)
		return
	}
	id, err := ParseID(chi.URLParam(r, "reviewId"))
	if err != nil {
		fail(w, "delete", err)
		return
	}

	if err := s.store.Delete(r.Context(), id, userID); err != nil {
		fail(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

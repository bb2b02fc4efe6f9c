package watchlist

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/validate"
)

type addMovieRequest struct {
	CatalogID  string `json:"catalogId" validate:"required,max=64"`
	Title      string `json:"title" validate:"required,max=300"`
	PosterPath string `json:"posterPath" validate:"max=500"`
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "add movie", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "add movie", err)
		return
	}

	var body addMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, "add movie", errBadJSON)
		return
	}
	body.CatalogID = strings.TrimSpace(body.CatalogID)
	body.Title = strings.TrimSpace(body.Title)
	if err := validate.Struct(body); err != nil {
		fail(w, "add movie", err)
		return
	}

	wl, err := s.store.AddMovie(r.Context(), id, userID, MovieEntry{
		CatalogID:  body.CatalogID,
		Title:      body.Title,
		PosterPath: body.PosterPath,
	})
	if err != nil {
		fail(w, "add movie", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, wl)
}

func (s *Server) handleRemoveMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "remove movie", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "remove movie", err)
		return
	}
	catalogID := strings.TrimSpace(chi.URLParam(r, "catalogId"))
	if catalogID == "" {
		fail(w, "remove movie", apperr.Invalid("catalogId is required", map[string]string{"catalogId": "is required"}))
		return
	}

	wl, err := s.store.RemoveMovie(r.Context(), id, userID, catalogID)
	if err != nil {
		fail(w, "remove movie", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, wl)
}

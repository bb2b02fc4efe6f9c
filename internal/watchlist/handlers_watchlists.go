package watchlist

import (
	"encoding/json"
	"net/http"
	"strings"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/validate"
)

type titleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

var errBadJSON = apperr.New(apperr.CodeInvalidInput, "invalid JSON body")

func decodeTitle(r *http.Request) (string, error) {
	var body titleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", errBadJSON
	}
	body.Title = strings.TrimSpace(body.Title)
	if err := validate.Struct(body); err != nil {
		return "", err
	}
	return body.Title, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "create", err)
		return
	}
	title, err := decodeTitle(r)
	if err != nil {
		fail(w, "create", err)
		return
	}

	wl, err := s.store.Create(r.Context(), userID, title)
	if err != nil {
		fail(w, "create", err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, wl)
}

func (s *Server) handleListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "list", err)
		return
	}

	lists, err := s.store.ListForMember(r.Context(), userID)
	if err != nil {
		fail(w, "list", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, lists)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "get", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "get", err)
		return
	}

	wl, err := s.store.Get(r.Context(), id)
	if err != nil {
		fail(w, "get", err)
		return
	}
	if err := CheckRead(wl, userID); err != nil {
		fail(w, "get", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, wl)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "rename", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "rename", err)
		return
	}
	title, err := decodeTitle(r)
	if err != nil {
		fail(w, "rename", err)
		return
	}

	wl, err := s.store.Rename(r.Context(), id, userID, title)
	if err != nil {
		fail(w, "rename", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, wl)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "delete", err)
		return
	}
	id, err := watchlistID(r)
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

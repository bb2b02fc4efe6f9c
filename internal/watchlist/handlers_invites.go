package watchlist

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/validate"
)

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type respondRequest struct {
	Action string `json:"action" validate:"required"`
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "list pending", err)
		return
	}

	invites, err := s.store.ListPendingFor(r.Context(), userID)
	if err != nil {
		fail(w, "list pending", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, invites)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := callerID(r)
	if err != nil {
		fail(w, "invite", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "invite", err)
		return
	}

	var body inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, "invite", errBadJSON)
		return
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if err := validate.Struct(body); err != nil {
		fail(w, "invite", err)
		return
	}

	// Non-creators are turned away before the email lookup so they cannot
	// probe which addresses have accounts. The write below re-checks.
	wl, err := s.store.Get(ctx, id)
	if err != nil {
		fail(w, "invite", err)
		return
	}
	if err := Authorize(OpInvite, RelationOf(wl, userID)); err != nil {
		fail(w, "invite", err)
		return
	}

	target, err := s.users.ResolveEmail(ctx, body.Email)
	if err != nil {
		fail(w, "invite", err)
		return
	}

	if err := s.store.Invite(ctx, id, userID, target); err != nil {
		fail(w, "invite", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Invite sent, awaiting confirmation.",
	})
}

func (s *Server) handleRevokeInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "revoke invite", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "revoke invite", err)
		return
	}
	target, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		fail(w, "revoke invite", apperr.Invalid("invalid user id", map[string]string{"userId": "must be a UUID"}))
		return
	}

	if err := s.store.RevokeInvite(r.Context(), id, userID, target.String()); err != nil {
		fail(w, "revoke invite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := callerID(r)
	if err != nil {
		fail(w, "respond", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "respond", err)
		return
	}

	var body respondRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, "respond", errBadJSON)
		return
	}
	if err := validate.Struct(body); err != nil {
		fail(w, "respond", err)
		return
	}
	action, err := ParseAction(strings.ToLower(strings.TrimSpace(body.Action)))
	if err != nil {
		fail(w, "respond", err)
		return
	}

	if err := s.store.Respond(ctx, id, userID, action); err != nil {
		fail(w, "respond", err)
		return
	}

	if action == ActionDecline {
		apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Invite declined."})
		return
	}

	wl, err := s.store.Get(ctx, id)
	if err != nil {
		fail(w, "respond", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Invite accepted!",
		"watchlist": wl,
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		fail(w, "leave", err)
		return
	}
	id, err := watchlistID(r)
	if err != nil {
		fail(w, "leave", err)
		return
	}

	if err := s.store.Leave(r.Context(), id, userID); err != nil {
		fail(w, "leave", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package watchlist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	store  *memStore
	router http.Handler
	u1     string
	u2     string
	u3     string
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:     t,
		store: newMemStore(),
		u1:    uuid.NewString(),
		u2:    uuid.NewString(),
		u3:    uuid.NewString(),
	}
	h.store.users[h.u1] = InviteSender{ID: h.u1, Username: "u1", Email: "u1@example.com"}
	dir := memDirectory{
		"u1@example.com": h.u1,
		"u2@example.com": h.u2,
		"u3@example.com": h.u3,
	}
	h.router = NewServer(h.store, dir).Router(withTestUser)
	return h
}

func (h *harness) do(user, method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) create(user, title string) Watchlist {
	h.t.Helper()
	rec := h.do(user, http.MethodPost, "/", `{"title":"`+title+`"}`)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	var w Watchlist
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &w))
	return w
}

func (h *harness) snapshot(id string) Watchlist {
	h.t.Helper()
	w, ok := h.store.lists[id]
	require.True(h.t, ok, "watchlist %s missing", id)
	assertInvariants(h.t, *w)
	return clone(*w)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Code
}

func assertInvariants(t *testing.T, w Watchlist) {
	t.Helper()
	assert.NotContains(t, w.Collaborators, w.Creator, "creator in collaborators")
	assert.NotContains(t, w.PendingInvites, w.Creator, "creator in pending invites")
	for _, c := range w.Collaborators {
		assert.NotContains(t, w.PendingInvites, c, "%s both collaborator and invited", c)
	}
	seen := map[string]bool{}
	for _, m := range w.Movies {
		assert.False(t, seen[m.CatalogID], "duplicate catalogId %s", m.CatalogID)
		seen[m.CatalogID] = true
	}
}

func TestScenarios(t *testing.T) {
	h := newHarness(t)

	// A: a new watchlist has no members besides its creator.
	w := h.create(h.u1, "Horror")
	assert.Equal(t, h.u1, w.Creator)
	assert.Empty(t, w.Collaborators)
	assert.Empty(t, w.PendingInvites)
	assert.Empty(t, w.Movies)
	base := "/" + w.ID

	// B: invite U2; it shows up in U2's pending list; a second invite conflicts.
	rec := h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u2@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(h.u2, http.MethodGet, "/invites/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []PendingInvite
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, w.ID, pending[0].WatchlistID)
	assert.Equal(t, "Horror", pending[0].Title)
	assert.Equal(t, "u1", pending[0].Creator.Username)

	rec = h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"U2@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_INVITED", errorCode(t, rec))
	assert.Equal(t, []string{h.u2}, h.snapshot(w.ID).PendingInvites)

	// C: U2 accepts and can add a movie.
	rec = h.do(h.u2, http.MethodPost, base+"/respond", `{"action":"accept"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := h.snapshot(w.ID)
	assert.Equal(t, []string{h.u2}, snap.Collaborators)
	assert.Empty(t, snap.PendingInvites)

	rec = h.do(h.u2, http.MethodPost, base+"/add", `{"catalogId":"603","title":"The Matrix","posterPath":"/m.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var after Watchlist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Len(t, after.Movies, 1)
	assert.Equal(t, h.u2, after.Movies[0].AddedBy)

	// D: a second add of the same catalogId conflicts.
	rec = h.do(h.u2, http.MethodPost, base+"/add", `{"catalogId":"603","title":"The Matrix"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", errorCode(t, rec))
	assert.Len(t, h.snapshot(w.ID).Movies, 1)

	// E: an outsider cannot remove entries.
	rec = h.do(h.u3, http.MethodDelete, base+"/remove/603", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
	assert.True(t, h.snapshot(w.ID).HasMovie("603"))

	// F: after the creator deletes it, nobody can read it.
	rec = h.do(h.u1, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	for _, u := range []string{h.u1, h.u2} {
		rec = h.do(u, http.MethodGet, base, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "WATCHLIST_NOT_FOUND", errorCode(t, rec))
	}
}

func TestDeclineThenReinvite(t *testing.T) {
	h := newHarness(t)
	w := h.create(h.u1, "Drama")
	base := "/" + w.ID

	require.Equal(t, http.StatusOK, h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u2@example.com"}`).Code)

	rec := h.do(h.u2, http.MethodPost, base+"/respond", `{"action":"decline"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := h.snapshot(w.ID)
	assert.Empty(t, snap.PendingInvites)
	assert.Empty(t, snap.Collaborators)

	rec = h.do(h.u2, http.MethodPost, base+"/respond", `{"action":"accept"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NO_PENDING_INVITE", errorCode(t, rec))

	rec = h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u2@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{h.u2}, h.snapshot(w.ID).PendingInvites)
}

func TestInviteRules(t *testing.T) {
	h := newHarness(t)
	w := h.create(h.u1, "Comedy")
	base := "/" + w.ID

	t.Run("SelfInvite", func(t *testing.T) {
		rec := h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u1@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "SELF_INVITE", errorCode(t, rec))
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		rec := h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"ghost@example.com"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "USER_NOT_FOUND", errorCode(t, rec))
	})

	t.Run("NonCreatorForbiddenBeforeLookup", func(t *testing.T) {
		rec := h.do(h.u3, http.MethodPost, base+"/invite", `{"email":"ghost@example.com"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		rec := h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))
	})

	t.Run("AlreadyMember", func(t *testing.T) {
		require.Equal(t, http.StatusOK, h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u2@example.com"}`).Code)
		require.Equal(t, http.StatusOK, h.do(h.u2, http.MethodPost, base+"/respond", `{"action":"accept"}`).Code)

		rec := h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u2@example.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "ALREADY_MEMBER", errorCode(t, rec))
	})

	t.Run("CollaboratorCannotInvite", func(t *testing.T) {
		rec := h.do(h.u2, http.MethodPost, base+"/invite", `{"email":"u3@example.com"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, h.snapshot(w.ID).PendingInvites)
	})
}

func TestRevokeAndLeave(t *testing.T) {
	h := newHarness(t)
	w := h.create(h.u1, "Sci-Fi")
	base := "/" + w.ID

	require.Equal(t, http.StatusOK, h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u2@example.com"}`).Code)
	require.Equal(t, http.StatusOK, h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u3@example.com"}`).Code)

	rec := h.do(h.u2, http.MethodDelete, base+"/invites/"+h.u3, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(h.u1, http.MethodDelete, base+"/invites/"+h.u3, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{h.u2}, h.snapshot(w.ID).PendingInvites)

	rec = h.do(h.u1, http.MethodDelete, base+"/invites/"+h.u3, "")
	assert.Equal(t, "NO_PENDING_INVITE", errorCode(t, rec))

	rec = h.do(h.u1, http.MethodDelete, base+"/invites/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, h.do(h.u2, http.MethodPost, base+"/respond", `{"action":"accept"}`).Code)

	rec = h.do(h.u1, http.MethodPost, base+"/leave", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CREATOR_CANNOT_LEAVE", errorCode(t, rec))

	rec = h.do(h.u3, http.MethodPost, base+"/leave", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_COLLABORATOR", errorCode(t, rec))

	rec = h.do(h.u2, http.MethodPost, base+"/leave", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, h.snapshot(w.ID).Collaborators)

	rec = h.do(h.u2, http.MethodGet, base, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMovieOperations(t *testing.T) {
	h := newHarness(t)
	w := h.create(h.u1, "Classics")
	base := "/" + w.ID

	for _, id := range []string{"550", "13", "603"} {
		rec := h.do(h.u1, http.MethodPost, base+"/add", `{"catalogId":"`+id+`","title":"t`+id+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	snap := h.snapshot(w.ID)
	require.Len(t, snap.Movies, 3)
	assert.Equal(t, "550", snap.Movies[0].CatalogID)
	assert.Equal(t, "13", snap.Movies[1].CatalogID)
	assert.Equal(t, "603", snap.Movies[2].CatalogID)

	t.Run("NonMemberAddForbidden", func(t *testing.T) {
		rec := h.do(h.u3, http.MethodPost, base+"/add", `{"catalogId":"1","title":"x"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Len(t, h.snapshot(w.ID).Movies, 3)
	})

	t.Run("InvitedCannotEdit", func(t *testing.T) {
		require.Equal(t, http.StatusOK, h.do(h.u1, http.MethodPost, base+"/invite", `{"email":"u2@example.com"}`).Code)
		rec := h.do(h.u2, http.MethodPost, base+"/add", `{"catalogId":"1","title":"x"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		rec := h.do(h.u1, http.MethodPost, base+"/add", `{"title":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))
	})

	t.Run("RemoveKeepsOrder", func(t *testing.T) {
		rec := h.do(h.u1, http.MethodDelete, base+"/remove/13", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got Watchlist
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.Movies, 2)
		assert.Equal(t, "550", got.Movies[0].CatalogID)
		assert.Equal(t, "603", got.Movies[1].CatalogID)
	})

	t.Run("RemoveAbsent", func(t *testing.T) {
		rec := h.do(h.u1, http.MethodDelete, base+"/remove/13", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "MOVIE_NOT_FOUND", errorCode(t, rec))
	})
}

func TestListAndRename(t *testing.T) {
	h := newHarness(t)
	first := h.create(h.u1, "First")
	second := h.create(h.u1, "Second")
	other := h.create(h.u3, "Not mine")

	require.Equal(t, http.StatusOK, h.do(h.u3, http.MethodPost, "/"+other.ID+"/invite", `{"email":"u1@example.com"}`).Code)

	rec := h.do(h.u1, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lists []Watchlist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 2, "pending invites are not listed as own watchlists")
	assert.Equal(t, second.ID, lists[0].ID)
	assert.Equal(t, first.ID, lists[1].ID)

	rec = h.do(h.u1, http.MethodPatch, "/"+first.ID, `{"title":"  Renamed  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", h.snapshot(first.ID).Title)

	rec = h.do(h.u3, http.MethodPatch, "/"+first.ID, `{"title":"Hijack"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(h.u1, http.MethodPatch, "/"+first.ID, `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(h.u1, http.MethodPost, "/", `{"title":"`+strings.Repeat("x", 201)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteGuards(t *testing.T) {
	h := newHarness(t)

	rec := h.do("", http.MethodGet, "/", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(h.u1, http.MethodGet, "/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "WATCHLIST_NOT_FOUND", errorCode(t, rec))

	rec = h.do(h.u1, http.MethodPost, "/"+uuid.NewString()+"/add", `{"catalogId":"1","title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	w := h.create(h.u1, "x")
	require.Equal(t, http.StatusOK, h.do(h.u1, http.MethodPost, "/"+w.ID+"/invite", `{"email":"u2@example.com"}`).Code)
	rec = h.do(h.u2, http.MethodPost, "/"+w.ID+"/respond", `{"action":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ACTION", errorCode(t, rec))
}

package watchlist

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/auth"
)

// memStore is an in-memory Store. Each call checks and applies its change
// under one lock, which gives the same all-or-nothing behavior as the
// conditional SQL writes.
type memStore struct {
	mu    sync.Mutex
	lists map[string]*Watchlist
	users map[string]InviteSender
	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		lists: map[string]*Watchlist{},
		users: map[string]InviteSender{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func clone(w Watchlist) Watchlist {
	w.Collaborators = slices.Clone(w.Collaborators)
	w.PendingInvites = slices.Clone(w.PendingInvites)
	w.Movies = slices.Clone(w.Movies)
	return w
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(v string) bool { return v == id })
}

// mutate runs check against the current state and applies change only if
// check passes.
func (s *memStore) mutate(id string, check func(Watchlist) error, change func(*Watchlist)) (Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[id]
	if !ok {
		return Watchlist{}, ErrWatchlistNotFound
	}
	if err := check(*w); err != nil {
		return Watchlist{}, err
	}
	change(w)
	w.UpdatedAt = s.now()
	return clone(*w), nil
}

func (s *memStore) Create(_ context.Context, creator, title string) (Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := newWatchlist(uuid.NewString(), creator, title, s.now())
	s.lists[w.ID] = &w
	return clone(w), nil
}

func (s *memStore) Get(_ context.Context, id string) (Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[id]
	if !ok {
		return Watchlist{}, ErrWatchlistNotFound
	}
	return clone(*w), nil
}

func (s *memStore) ListForMember(_ context.Context, userID string) ([]Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Watchlist{}
	for _, w := range s.lists {
		if rel := RelationOf(*w, userID); rel == RelationCreator || rel == RelationCollaborator {
			out = append(out, clone(*w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) ListPendingFor(_ context.Context, userID string) ([]PendingInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []PendingInvite{}
	for _, w := range s.lists {
		if RelationOf(*w, userID) == RelationInvited {
			out = append(out, PendingInvite{
				WatchlistID: w.ID,
				Title:       w.Title,
				Creator:     s.users[w.Creator],
				InvitedAt:   w.UpdatedAt,
			})
		}
	}
	return out, nil
}

func (s *memStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists), nil
}

func (s *memStore) Rename(_ context.Context, id, by, title string) (Watchlist, error) {
	return s.mutate(id,
		func(w Watchlist) error { return CheckRename(w, by) },
		func(w *Watchlist) { w.Title = title })
}

func (s *memStore) Delete(_ context.Context, id, by string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[id]
	if !ok {
		return ErrWatchlistNotFound
	}
	if err := CheckDelete(*w, by); err != nil {
		return err
	}
	delete(s.lists, id)
	return nil
}

func (s *memStore) Invite(_ context.Context, id, by, target string) error {
	_, err := s.mutate(id,
		func(w Watchlist) error { return CheckInvite(w, by, target) },
		func(w *Watchlist) { w.PendingInvites = append(w.PendingInvites, target) })
	return err
}

func (s *memStore) RevokeInvite(_ context.Context, id, by, target string) error {
	_, err := s.mutate(id,
		func(w Watchlist) error { return CheckRevoke(w, by, target) },
		func(w *Watchlist) { w.PendingInvites = without(w.PendingInvites, target) })
	return err
}

func (s *memStore) Respond(_ context.Context, id, by string, action Action) error {
	_, err := s.mutate(id,
		func(w Watchlist) error { return CheckRespond(w, by, action) },
		func(w *Watchlist) {
			w.PendingInvites = without(w.PendingInvites, by)
			if action == ActionAccept {
				w.Collaborators = append(w.Collaborators, by)
			}
		})
	return err
}

func (s *memStore) Leave(_ context.Context, id, by string) error {
	_, err := s.mutate(id,
		func(w Watchlist) error { return CheckLeave(w, by) },
		func(w *Watchlist) { w.Collaborators = without(w.Collaborators, by) })
	return err
}

func (s *memStore) AddMovie(_ context.Context, id, by string, entry MovieEntry) (Watchlist, error) {
	return s.mutate(id,
		func(w Watchlist) error { return CheckAddMovie(w, by, entry.CatalogID) },
		func(w *Watchlist) {
			entry.AddedBy = by
			entry.AddedAt = s.clock
			w.Movies = append(w.Movies, entry)
		})
}

func (s *memStore) RemoveMovie(_ context.Context, id, by, catalogID string) (Watchlist, error) {
	return s.mutate(id,
		func(w Watchlist) error { return CheckRemoveMovie(w, by, catalogID) },
		func(w *Watchlist) {
			w.Movies = slices.DeleteFunc(w.Movies, func(m MovieEntry) bool { return m.CatalogID == catalogID })
		})
}

// memDirectory resolves emails from a fixed map.
type memDirectory map[string]string

func (d memDirectory) ResolveEmail(_ context.Context, email string) (string, error) {
	id, ok := d[email]
	if !ok {
		return "", apperr.New(apperr.CodeUserNotFound, "user not found")
	}
	return id, nil
}

// withTestUser authenticates requests from the X-Test-User header.
func withTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-User"); id != "" {
			r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: id, Role: auth.RoleUser}))
		}
		next.ServeHTTP(w, r)
	})
}

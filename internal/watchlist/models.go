package watchlist

import (
	"slices"
	"time"
)

type Watchlist struct {
	ID             string       `json:"id"`
	Creator        string       `json:"creator"`
	Title          string       `json:"title"`
	Collaborators  []string     `json:"collaborators"`
	PendingInvites []string     `json:"pendingInvites"`
	Movies         []MovieEntry `json:"movies"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type MovieEntry struct {
	CatalogID  string    `json:"catalogId"`
	Title      string    `json:"title"`
	PosterPath string    `json:"posterPath"`
	AddedBy    string    `json:"addedBy"`
	AddedAt    time.Time `json:"addedAt"`
}

// PendingInvite is a watchlist the caller has been invited to, with enough of
// the creator to render the invitation.
type PendingInvite struct {
	WatchlistID string       `json:"id"`
	Title       string       `json:"title"`
	Creator     InviteSender `json:"creator"`
	InvitedAt   time.Time    `json:"invitedAt"`
}

type InviteSender struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// HasMovie reports whether an entry with catalogID is in the list.
func (w Watchlist) HasMovie(catalogID string) bool {
	return slices.ContainsFunc(w.Movies, func(m MovieEntry) bool {
		return m.CatalogID == catalogID
	})
}

func newWatchlist(id, creator, title string, now time.Time) Watchlist {
	return Watchlist{
		ID:             id,
		Creator:        creator,
		Title:          title,
		Collaborators:  []string{},
		PendingInvites: []string{},
		Movies:         []MovieEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

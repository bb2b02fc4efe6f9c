package watchlist

import (
	"fmt"
	"slices"

	"watchlist-service/internal/apperr"
)

// Relation is what a user is to one watchlist. Exactly one holds per pair.
type Relation int

const (
	RelationNone Relation = iota
	RelationInvited
	RelationCollaborator
	RelationCreator
)

func (r Relation) String() string {
	switch r {
	case RelationNone:
		return "none"
	case RelationInvited:
		return "invited"
	case RelationCollaborator:
		return "collaborator"
	case RelationCreator:
		return "creator"
	default:
		return fmt.Sprintf("relation(%d)", int(r))
	}
}

// RelationOf derives userID's relation to w from its membership sets.
func RelationOf(w Watchlist, userID string) Relation {
	switch {
	case userID == "":
		return RelationNone
	case w.Creator == userID:
		return RelationCreator
	case slices.Contains(w.Collaborators, userID):
		return RelationCollaborator
	case slices.Contains(w.PendingInvites, userID):
		return RelationInvited
	default:
		return RelationNone
	}
}

// Operation is a gated action on an existing watchlist.
type Operation int

const (
	OpRead Operation = iota
	OpRename
	OpDelete
	OpInvite
	OpRevoke
	OpRespond
	OpLeave
	OpEditMovies
)

var (
	errNotAllowed         = apperr.New(apperr.CodeForbidden, "you do not have permission for this watchlist")
	errOwnerOnly          = apperr.New(apperr.CodeForbidden, "only the watchlist creator can do this")
	errNoPendingInvite    = apperr.New(apperr.CodeNoPendingInvite, "you don't have an invite for this watchlist")
	errNotCollaborator    = apperr.New(apperr.CodeNotCollaborator, "you are not a collaborator on this watchlist")
	errCreatorCannotLeave = apperr.New(apperr.CodeCreatorCannotLeave, "the creator cannot leave their own watchlist")
	errAlreadyInvited     = apperr.New(apperr.CodeAlreadyInvited, "there is already a pending invite")
	errAlreadyMember      = apperr.New(apperr.CodeAlreadyMember, "user is already a collaborator")
	errSelfInvite         = apperr.New(apperr.CodeSelfInvite, "you cannot invite yourself")
	errDuplicateEntry     = apperr.New(apperr.CodeDuplicateEntry, "movie already exists in the watchlist")
	errMovieNotFound      = apperr.New(apperr.CodeMovieNotFound, "movie is not in the watchlist")
	errConcurrentUpdate   = apperr.New(apperr.CodeConcurrentUpdate, "watchlist changed concurrently, retry")
	ErrWatchlistNotFound  = apperr.New(apperr.CodeWatchlistNotFound, "watchlist not found")
)

// Authorize is the gate evaluated before any operation on an existing
// watchlist. A non-nil result means nothing may be applied.
func Authorize(op Operation, rel Relation) error {
	switch op {
	case OpRead, OpEditMovies:
		switch rel {
		case RelationCreator, RelationCollaborator:
			return nil
		case RelationNone, RelationInvited:
			return errNotAllowed
		}
	case OpRename, OpDelete, OpInvite, OpRevoke:
		switch rel {
		case RelationCreator:
			return nil
		case RelationNone, RelationInvited, RelationCollaborator:
			return errOwnerOnly
		}
	case OpRespond:
		switch rel {
		case RelationInvited:
			return nil
		case RelationNone, RelationCollaborator, RelationCreator:
			return errNoPendingInvite
		}
	case OpLeave:
		switch rel {
		case RelationCollaborator:
			return nil
		case RelationCreator:
			return errCreatorCannotLeave
		case RelationNone, RelationInvited:
			return errNotCollaborator
		}
	}
	return fmt.Errorf("watchlist: no rule for operation %d and relation %s", op, rel)
}

// Event drives the per-pair membership state machine.
type Event int

const (
	EventInvite Event = iota
	EventAccept
	EventDecline
	EventRevoke
	EventLeave
)

// Transition returns the relation reached by applying ev to from, or the
// error explaining why ev is not valid there. Creator never transitions.
func Transition(from Relation, ev Event) (Relation, error) {
	switch ev {
	case EventInvite:
		switch from {
		case RelationNone:
			return RelationInvited, nil
		case RelationInvited:
			return from, errAlreadyInvited
		case RelationCollaborator:
			return from, errAlreadyMember
		case RelationCreator:
			return from, errSelfInvite
		}
	case EventAccept:
		if from == RelationInvited {
			return RelationCollaborator, nil
		}
		return from, errNoPendingInvite
	case EventDecline, EventRevoke:
		if from == RelationInvited {
			return RelationNone, nil
		}
		return from, errNoPendingInvite
	case EventLeave:
		switch from {
		case RelationCollaborator:
			return RelationNone, nil
		case RelationCreator:
			return from, errCreatorCannotLeave
		case RelationNone, RelationInvited:
			return from, errNotCollaborator
		}
	}
	return from, fmt.Errorf("watchlist: no transition for event %d from %s", ev, from)
}

// Action is an invitee's answer to a pending invite.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAccept:
		return ActionAccept, nil
	case ActionDecline:
		return ActionDecline, nil
	default:
		return "", apperr.New(apperr.CodeInvalidAction, "action must be accept or decline")
	}
}

func (a Action) event() Event {
	if a == ActionAccept {
		return EventAccept
	}
	return EventDecline
}

// The Check functions combine the gate and the state machine for one
// operation against a snapshot. Stores run them to explain a conditional
// write that matched no rows.

func CheckRead(w Watchlist, by string) error {
	return Authorize(OpRead, RelationOf(w, by))
}

func CheckRename(w Watchlist, by string) error {
	return Authorize(OpRename, RelationOf(w, by))
}

func CheckDelete(w Watchlist, by string) error {
	return Authorize(OpDelete, RelationOf(w, by))
}

func CheckInvite(w Watchlist, by, target string) error {
	if err := Authorize(OpInvite, RelationOf(w, by)); err != nil {
		return err
	}
	_, err := Transition(RelationOf(w, target), EventInvite)
	return err
}

func CheckRevoke(w Watchlist, by, target string) error {
	if err := Authorize(OpRevoke, RelationOf(w, by)); err != nil {
		return err
	}
	_, err := Transition(RelationOf(w, target), EventRevoke)
	return err
}

func CheckRespond(w Watchlist, by string, action Action) error {
	rel := RelationOf(w, by)
	if err := Authorize(OpRespond, rel); err != nil {
		return err
	}
	_, err := Transition(rel, action.event())
	return err
}

func CheckLeave(w Watchlist, by string) error {
	rel := RelationOf(w, by)
	if err := Authorize(OpLeave, rel); err != nil {
		return err
	}
	_, err := Transition(rel, EventLeave)
	return err
}

func CheckAddMovie(w Watchlist, by, catalogID string) error {
	if err := Authorize(OpEditMovies, RelationOf(w, by)); err != nil {
		return err
	}
	if w.HasMovie(catalogID) {
		return errDuplicateEntry
	}
	return nil
}

func CheckRemoveMovie(w Watchlist, by, catalogID string) error {
	if err := Authorize(OpEditMovies, RelationOf(w, by)); err != nil {
		return err
	}
	if !w.HasMovie(catalogID) {
		return errMovieNotFound
	}
	return nil
}

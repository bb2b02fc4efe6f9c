package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists watchlists. Every mutation is applied as one conditional
// write: it either satisfies the gate and the state machine and commits, or
// changes nothing and returns the coded reason.
type Store interface {
	Create(ctx context.Context, creator, title string) (Watchlist, error)
	Get(ctx context.Context, id string) (Watchlist, error)
	ListForMember(ctx context.Context, userID string) ([]Watchlist, error)
	ListPendingFor(ctx context.Context, userID string) ([]PendingInvite, error)
	Count(ctx context.Context) (int, error)

	Rename(ctx context.Context, id, by, title string) (Watchlist, error)
	Delete(ctx context.Context, id, by string) error

	Invite(ctx context.Context, id, by, target string) error
	RevokeInvite(ctx context.Context, id, by, target string) error
	Respond(ctx context.Context, id, by string, action Action) error
	Leave(ctx context.Context, id, by string) error

	AddMovie(ctx context.Context, id, by string, entry MovieEntry) (Watchlist, error)
	RemoveMovie(ctx context.Context, id, by, catalogID string) (Watchlist, error)
}

// DB is the subset of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const snapshotColumns = `
	w.id::text, w.creator_id::text, w.title, w.created_at, w.updated_at,
	COALESCE((SELECT array_agg(m.user_id::text ORDER BY m.joined_at, m.user_id)
	          FROM watchlist_members m
	          WHERE m.watchlist_id = w.id AND m.status = 'collaborator'), '{}') AS collaborators,
	COALESCE((SELECT array_agg(m.user_id::text ORDER BY m.invited_at, m.user_id)
	          FROM watchlist_members m
	          WHERE m.watchlist_id = w.id AND m.status = 'invited'), '{}') AS pending_invites,
	COALESCE((SELECT json_agg(json_build_object(
	              'catalogId', mv.catalog_id,
	              'title', mv.title,
	              'posterPath', mv.poster_path,
	              'addedBy', mv.added_by,
	              'addedAt', mv.added_at) ORDER BY mv.seq)
	          FROM watchlist_movies mv
	          WHERE mv.watchlist_id = w.id), '[]') AS movies`

// isMember is true when $2 is the creator or an accepted collaborator of w.
const isMember = `(w.creator_id = $2 OR EXISTS (
	SELECT 1 FROM watchlist_members m
	WHERE m.watchlist_id = w.id AND m.user_id = $2 AND m.status = 'collaborator'))`

func (s *PostgresStore) Create(ctx context.Context, creator, title string) (Watchlist, error) {
	var w Watchlist
	err := s.db.QueryRow(ctx, `
		INSERT INTO watchlists (creator_id, title)
		VALUES ($1, $2)
		RETURNING id::text, created_at
	`, creator, title).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return Watchlist{}, fmt.Errorf("insert watchlist: %w", err)
	}
	return newWatchlist(w.ID, creator, title, w.CreatedAt), nil
}

// Get reads the whole aggregate in one statement so the membership sets and
// movies come from the same snapshot.
func (s *PostgresStore) Get(ctx context.Context, id string) (Watchlist, error) {
	row := s.db.QueryRow(ctx, `SELECT `+snapshotColumns+` FROM watchlists w WHERE w.id = $1`, id)
	w, err := scanWatchlist(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Watchlist{}, ErrWatchlistNotFound
	}
	return w, err
}

func (s *PostgresStore) ListForMember(ctx context.Context, userID string) ([]Watchlist, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM watchlists w
		WHERE w.creator_id = $1 OR EXISTS (
			SELECT 1 FROM watchlist_members m
			WHERE m.watchlist_id = w.id AND m.user_id = $1 AND m.status = 'collaborator')
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlists: %w", err)
	}
	defer rows.Close()

	out := []Watchlist{}
	for rows.Next() {
		w, err := scanWatchlist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListPendingFor(ctx context.Context, userID string) ([]PendingInvite, error) {
	rows, err := s.db.Query(ctx, `
		SELECT w.id::text, w.title, u.id::text, u.username, u.email, m.invited_at
		FROM watchlist_members m
		JOIN watchlists w ON w.id = m.watchlist_id
		JOIN users u ON u.id = w.creator_id
		WHERE m.user_id = $1 AND m.status = 'invited'
		ORDER BY m.invited_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	defer rows.Close()

	out := []PendingInvite{}
	for rows.Next() {
		var p PendingInvite
		if err := rows.Scan(&p.WatchlistID, &p.Title, &p.Creator.ID, &p.Creator.Username, &p.Creator.Email, &p.InvitedAt); err != nil {
			return nil, fmt.Errorf("scan pending invite: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM watchlists`).Scan(&n)
	return n, err
}

func (s *PostgresStore) Rename(ctx context.Context, id, by, title string) (Watchlist, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE watchlists SET title = $3, updated_at = now()
		WHERE id = $1 AND creator_id = $2
	`, id, by, title)
	if err != nil {
		return Watchlist{}, fmt.Errorf("rename watchlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Watchlist{}, s.explain(ctx, id, func(w Watchlist) error { return CheckRename(w, by) })
	}
	return s.Get(ctx, id)
}

// Delete removes the watchlist; members and movies cascade.
func (s *PostgresStore) Delete(ctx context.Context, id, by string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM watchlists WHERE id = $1 AND creator_id = $2`, id, by)
	if err != nil {
		return fmt.Errorf("delete watchlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.explain(ctx, id, func(w Watchlist) error { return CheckDelete(w, by) })
	}
	return nil
}

// Invite moves target NONE -> INVITED. The primary key on
// (watchlist_id, user_id) rejects targets that are already invited or
// collaborators, and the creator guard rejects self-invites.
func (s *PostgresStore) Invite(ctx context.Context, id, by, target string) error {
	tag, err := s.db.Exec(ctx, `
		WITH ins AS (
			INSERT INTO watchlist_members (watchlist_id, user_id, status)
			SELECT w.id, $3, 'invited'
			FROM watchlists w
			WHERE w.id = $1 AND w.creator_id = $2 AND w.creator_id <> $3
			ON CONFLICT (watchlist_id, user_id) DO NOTHING
			RETURNING watchlist_id
		)
		UPDATE watchlists SET updated_at = now()
		WHERE id IN (SELECT watchlist_id FROM ins)
	`, id, by, target)
	if err != nil {
		return fmt.Errorf("invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.explain(ctx, id, func(w Watchlist) error { return CheckInvite(w, by, target) })
	}
	return nil
}

func (s *PostgresStore) RevokeInvite(ctx context.Context, id, by, target string) error {
	tag, err := s.db.Exec(ctx, `
		WITH del AS (
			DELETE FROM watchlist_members m
			USING watchlists w
			WHERE m.watchlist_id = w.id AND w.id = $1 AND w.creator_id = $2
			  AND m.user_id = $3 AND m.status = 'invited'
			RETURNING m.watchlist_id
		)
		UPDATE watchlists SET updated_at = now()
		WHERE id IN (SELECT watchlist_id FROM del)
	`, id, by, target)
	if err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.explain(ctx, id, func(w Watchlist) error { return CheckRevoke(w, by, target) })
	}
	return nil
}

// Respond applies accept (INVITED -> COLLABORATOR) or decline
// (INVITED -> NONE). A decline leaves no row behind.
func (s *PostgresStore) Respond(ctx context.Context, id, by string, action Action) error {
	var q string
	switch action {
	case ActionAccept:
		q = `
		WITH upd AS (
			UPDATE watchlist_members SET status = 'collaborator', joined_at = now()
			WHERE watchlist_id = $1 AND user_id = $2 AND status = 'invited'
			RETURNING watchlist_id
		)
		UPDATE watchlists SET updated_at = now()
		WHERE id IN (SELECT watchlist_id FROM upd)`
	case ActionDecline:
		q = `
		WITH del AS (
			DELETE FROM watchlist_members
			WHERE watchlist_id = $1 AND user_id = $2 AND status = 'invited'
			RETURNING watchlist_id
		)
		UPDATE watchlists SET updated_at = now()
		WHERE id IN (SELECT watchlist_id FROM del)`
	default:
		_, err := ParseAction(string(action))
		return err
	}

	tag, err := s.db.Exec(ctx, q, id, by)
	if err != nil {
		return fmt.Errorf("respond %s: %w", action, err)
	}
	if tag.RowsAffected() == 0 {
		return s.explain(ctx, id, func(w Watchlist) error { return CheckRespond(w, by, action) })
	}
	return nil
}

func (s *PostgresStore) Leave(ctx context.Context, id, by string) error {
	tag, err := s.db.Exec(ctx, `
		WITH del AS (
			DELETE FROM watchlist_members
			WHERE watchlist_id = $1 AND user_id = $2 AND status = 'collaborator'
			RETURNING watchlist_id
		)
		UPDATE watchlists SET updated_at = now()
		WHERE id IN (SELECT watchlist_id FROM del)
	`, id, by)
	if err != nil {
		return fmt.Errorf("leave: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.explain(ctx, id, func(w Watchlist) error { return CheckLeave(w, by) })
	}
	return nil
}

func (s *PostgresStore) AddMovie(ctx context.Context, id, by string, entry MovieEntry) (Watchlist, error) {
	tag, err := s.db.Exec(ctx, `
		WITH ins AS (
			INSERT INTO watchlist_movies (watchlist_id, catalog_id, title, poster_path, added_by)
			SELECT w.id, $3, $4, $5, $2
			FROM watchlists w
			WHERE w.id = $1 AND `+isMember+`
			ON CONFLICT (watchlist_id, catalog_id) DO NOTHING
			RETURNING watchlist_id
		)
		UPDATE watchlists SET updated_at = now()
		WHERE id IN (SELECT watchlist_id FROM ins)
	`, id, by, entry.CatalogID, entry.Title, entry.PosterPath)
	if err != nil {
		return Watchlist{}, fmt.Errorf("add movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Watchlist{}, s.explain(ctx, id, func(w Watchlist) error { return CheckAddMovie(w, by, entry.CatalogID) })
	}
	return s.Get(ctx, id)
}

func (s *PostgresStore) RemoveMovie(ctx context.Context, id, by, catalogID string) (Watchlist, error) {
	tag, err := s.db.Exec(ctx, `
		WITH del AS (
			DELETE FROM watchlist_movies mv
			USING watchlists w
			WHERE mv.watchlist_id = w.id AND w.id = $1 AND mv.catalog_id = $3
			  AND `+isMember+`
			RETURNING mv.watchlist_id
		)
		UPDATE watchlists SET updated_at = now()
		WHERE id IN (SELECT watchlist_id FROM del)
	`, id, by, catalogID)
	if err != nil {
		return Watchlist{}, fmt.Errorf("remove movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Watchlist{}, s.explain(ctx, id, func(w Watchlist) error { return CheckRemoveMovie(w, by, catalogID) })
	}
	return s.Get(ctx, id)
}

// explain is called after a conditional write matched nothing. It reloads the
// watchlist and runs the same check the write encodes. If the check passes
// on the fresh snapshot, the state it failed against is already gone.
func (s *PostgresStore) explain(ctx context.Context, id string, check func(Watchlist) error) error {
	w, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := check(w); err != nil {
		return err
	}
	return errConcurrentUpdate
}

func scanWatchlist(row pgx.Row) (Watchlist, error) {
	var (
		w      Watchlist
		movies []byte
	)
	if err := row.Scan(&w.ID, &w.Creator, &w.Title, &w.CreatedAt, &w.UpdatedAt,
		&w.Collaborators, &w.PendingInvites, &movies); err != nil {
		return Watchlist{}, err
	}
	if err := json.Unmarshal(movies, &w.Movies); err != nil {
		return Watchlist{}, fmt.Errorf("decode movies: %w", err)
	}
	if w.Collaborators == nil {
		w.Collaborators = []string{}
	}
	if w.PendingInvites == nil {
		w.PendingInvites = []string{}
	}
	if w.Movies == nil {
		w.Movies = []MovieEntry{}
	}
	return w, nil
}

package watchlist

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AutoMigrate creates the watchlist tables. Requires the users table.
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS watchlists (
          id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          creator_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          title      TEXT NOT NULL CHECK (length(btrim(title)) > 0),
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      );
      CREATE INDEX IF NOT EXISTS watchlists_creator_idx ON watchlists (creator_id, created_at DESC);

      -- One row per (watchlist, user): a user is either invited or a
      -- collaborator, never both. The creator never has a row.
      CREATE TABLE IF NOT EXISTS watchlist_members (
          watchlist_id uuid NOT NULL REFERENCES watchlists(id) ON DELETE CASCADE,
          user_id      uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          status       TEXT NOT NULL CHECK (status IN ('invited', 'collaborator')),
          invited_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
          joined_at    TIMESTAMPTZ,
          PRIMARY KEY (watchlist_id, user_id)
      );
      CREATE INDEX IF NOT EXISTS watchlist_members_user_idx ON watchlist_members (user_id, status);

      CREATE TABLE IF NOT EXISTS watchlist_movies (
          watchlist_id uuid NOT NULL REFERENCES watchlists(id) ON DELETE CASCADE,
          catalog_id   TEXT NOT NULL,
          seq          BIGSERIAL,
          title        TEXT NOT NULL DEFAULT '',
          poster_path  TEXT NOT NULL DEFAULT '',
          added_by     uuid REFERENCES users(id) ON DELETE SET NULL,
          added_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
          PRIMARY KEY (watchlist_id, catalog_id)
      );
  `)
	if err != nil {
		log.Printf("migrate watchlist: %v", err)
		return err
	}
	return nil
}

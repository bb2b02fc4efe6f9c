package review

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AutoMigrate creates the reviews table. Requires the users table.
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS reviews (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          user_id     uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          catalog_id  TEXT NOT NULL,
          movie_title TEXT NOT NULL,
          rating      INT NOT NULL CHECK (rating BETWEEN 1 AND 10),
          comment     TEXT NOT NULL CHECK (length(comment) <= 500),
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      );
      CREATE INDEX IF NOT EXISTS reviews_catalog_idx ON reviews (catalog_id, created_at DESC);
  `)
	if err != nil {
		log.Printf("migrate review: %v", err)
		return err
	}
	return nil
}

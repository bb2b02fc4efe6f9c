package auth

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AutoMigrate creates the users table. It must run before the other modules'
// migrations since their tables reference users(id).
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		log.Printf("migrate auth: pgcrypto: %v", err)
		return err
	}

	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          username   TEXT UNIQUE NOT NULL,
          email      TEXT UNIQUE NOT NULL,
          password   TEXT NOT NULL,
          role       TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
  `)
	if err != nil {
		log.Printf("migrate auth: %v", err)
		return err
	}
	return nil
}

package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"watchlist-service/internal/apperr"
)

var (
	ErrReviewNotFound = apperr.New(apperr.CodeReviewNotFound, "review not found")
	errNotAuthor      = apperr.New(apperr.CodeForbidden, "only the author can delete this review")
)

type Store interface {
	ListForMovie(ctx context.Context, catalogID string) ([]Review, error)
	Create(ctx context.Context, userID, catalogID, movieTitle string, rating int, comment string) (Review, error)
	Delete(ctx context.Context, id, by string) error

	ListAll(ctx context.Context) ([]AdminReview, error)
	AdminDelete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
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

const reviewColumns = `r.id::text, r.user_id::text, u.username, r.catalog_id, r.movie_title,
	r.rating, r.comment, r.created_at, r.updated_at`

func (s *PostgresStore) ListForMovie(ctx context.Context, catalogID string) ([]Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.catalog_id = $1
		ORDER BY r.created_at DESC
	`, catalogID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.Username, &rv.CatalogID, &rv.MovieTitle,
			&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, userID, catalogID, movieTitle string, rating int, comment string) (Review, error) {
	var rv Review
	err := s.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO reviews (user_id, catalog_id, movie_title, rating, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT `+reviewColumns+`
		FROM ins r
		JOIN users u ON u.id = r.user_id
	`, userID, catalogID, movieTitle, rating, comment).Scan(
		&rv.ID, &rv.UserID, &rv.Username, &rv.CatalogID, &rv.MovieTitle,
		&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}
	return rv, nil
}

// Delete removes the review only when by wrote it. When nothing is deleted
// the review is looked up again to tell a missing review from a foreign one.
func (s *PostgresStore) Delete(ctx context.Context, id, by string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, by)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var author string
	err = s.db.QueryRow(ctx, `SELECT user_id::text FROM reviews WHERE id = $1`, id).Scan(&author)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrReviewNotFound
	case err != nil:
		return fmt.Errorf("load review: %w", err)
	case author != by:
		return errNotAuthor
	default:
		// Re-created between the two statements; report it as a race.
		return apperr.New(apperr.CodeConcurrentUpdate, "review changed concurrently, retry")
	}
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]AdminReview, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+reviewColumns+`, u.email
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}
	defer rows.Close()

	out := []AdminReview{}
	for rows.Next() {
		var rv AdminReview
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.Username, &rv.CatalogID, &rv.MovieTitle,
			&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt, &rv.Email); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AdminDelete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM reviews`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// Package catalog proxies movie metadata from TMDB with a Redis response
// cache in front.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type Provider interface {
	Popular(ctx context.Context, page int) ([]Movie, error)
	Search(ctx context.Context, p SearchParams) ([]Movie, error)
	Genres(ctx context.Context) ([]Genre, error)
	Movie(ctx context.Context, id int64) (MovieDetails, error)
}

type Server struct {
	provider Provider
	rdb      *redis.Client
	ttl      time.Duration
}

// NewServer builds the catalog server. rdb may be nil to disable caching.
func NewServer(p Provider, rdb *redis.Client, ttl time.Duration) *Server {
	return &Server{
		provider: p,
		rdb:      rdb,
		ttl:      ttl,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/popular", s.handlePopular)
	r.Get("/search", s.handleSearch)
	r.Get("/genres", s.handleGenres)
	r.Get("/{id}", s.handleMovie)

	return r
}

// cached returns the value stored under key or calls fetch and stores the
// result. Cache failures are logged and fall through to fetch.
func cached[T any](ctx context.Context, s *Server, key string, fetch func() (T, error)) (T, error) {
	if s.rdb == nil || s.ttl <= 0 {
		return fetch()
	}

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		decodeErr := json.Unmarshal(raw, &v)
		if decodeErr == nil {
			return v, nil
		}
		log.Printf("catalog: cache decode %s: %v", key, decodeErr)
	case !errors.Is(err, redis.Nil):
		log.Printf("catalog: cache get %s: %v", key, err)
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("catalog: cache encode %s: %v", key, err)
		return v, nil
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		log.Printf("catalog: cache set %s: %v", key, err)
	}
	return v, nil
}

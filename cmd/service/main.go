package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"watchlist-service/internal/admin"
	"watchlist-service/internal/auth"
	"watchlist-service/internal/catalog"
	"watchlist-service/internal/config"
	"watchlist-service/internal/review"
	"watchlist-service/internal/telemetry"
	"watchlist-service/internal/watchlist"
)

const serviceName = "watchlist-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("pg: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("pg ping: %v", err)
	}

	for _, migrate := range []func(context.Context, *pgxpool.Pool) error{
		auth.AutoMigrate,
		watchlist.AutoMigrate,
		review.AutoMigrate,
	} {
		if err := migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, catalog responses will not be cached: %v", err)
	}

	if cfg.TMDBAPIKey == "" {
		log.Printf("TMDB_API_KEY is not set, catalog requests will fail")
	}

	users := auth.NewPostgresRepository(pool)
	watchlists := watchlist.NewPostgresStore(pool)
	reviews := review.NewPostgresStore(pool)

	svc := services{
		auth:       auth.NewServer(users, auth.Options{JWTSecret: cfg.JWTSecret, AccessTTL: cfg.AccessTTL, RefreshTTL: cfg.RefreshTTL, AdminEmails: cfg.AdminEmails}),
		watchlists: watchlist.NewServer(watchlists, users),
		catalog:    catalog.NewServer(catalog.NewClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBLanguage), rdb, cfg.CatalogCacheTTL),
		reviews:    review.NewServer(reviews),
		admin:      admin.NewServer(users, reviews, watchlists),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("%s listening on :%s", serviceName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s: %v", serviceName, err)
		}
	}()

	<-ctx.Done()
	log.Printf("%s shutting down", serviceName)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
}

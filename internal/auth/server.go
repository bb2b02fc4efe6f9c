// Package auth owns accounts: registration, login, JWT issuance and the
// middleware that turns a bearer token into a request Identity.
package auth

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type Server struct {
	repo        Repository
	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	adminEmails []string
	bcryptCost  int
}

type Options struct {
	JWTSecret   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	AdminEmails []string
}

func NewServer(repo Repository, opts Options) *Server {
	return &Server{
		repo:        repo,
		jwtSecret:   []byte(opts.JWTSecret),
		accessTTL:   opts.AccessTTL,
		refreshTTL:  opts.RefreshTTL,
		adminEmails: opts.AdminEmails,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/refresh", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(s.Authenticate)
		r.Get("/me", s.handleMe)
	})

	return r
}

func (s *Server) roleFor(email string) Role {
	if slices.Contains(s.adminEmails, email) {
		return RoleAdmin
	}
	return RoleUser
}

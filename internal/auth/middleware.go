package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"watchlist-service/internal/apperr"
)

// Authenticate requires a valid access token and stores the caller Identity
// in the request context.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			apperr.Write(w, apperr.New(apperr.CodeUnauthenticated, "missing Authorization header"))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			apperr.Write(w, apperr.New(apperr.CodeUnauthenticated, "invalid Authorization header"))
			return
		}

		claims, err := s.VerifyToken(parts[1], tokenAccess)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		ctx := WithIdentity(r.Context(), Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets the request through only when the caller's stored role
// satisfies required. The role is read from the database, not the token, so
// demotions take effect immediately. Must run after Authenticate.
func (s *Server) RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				apperr.Write(w, apperr.ErrUnauthenticated)
				return
			}

			user, err := s.repo.FindUserByID(r.Context(), id.UserID)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					apperr.Write(w, apperr.ErrUnauthenticated)
					return
				}
				log.Printf("require role: FindUserByID: %v", err)
				apperr.Write(w, err)
				return
			}

			if !user.Role.Satisfies(required) {
				apperr.Write(w, apperr.New(apperr.CodeForbidden, "insufficient role"))
				return
			}

			id.Role = user.Role
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

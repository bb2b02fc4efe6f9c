package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"watchlist-service/internal/apperr"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

type TokenClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) issueTokens(user User) (AuthTokens, error) {
	now := time.Now()

	access, err := s.signToken(user, tokenAccess, now, s.accessTTL)
	if err != nil {
		return AuthTokens{}, err
	}
	refresh, err := s.signToken(user, tokenRefresh, now, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) signToken(user User, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyToken parses raw and checks its signature, expiry and token type.
func (s *Server) VerifyToken(raw, typ string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.TokenType != typ || claims.UserID == "" {
		return nil, apperr.Wrap(apperr.CodeUnauthenticated, "invalid token", err)
	}
	return claims, nil
}

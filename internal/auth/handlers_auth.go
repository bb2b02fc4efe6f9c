package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/validate"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type authResponse struct {
	AuthTokens
	User User `json:"user"`
}

var errBadJSON = apperr.New(apperr.CodeInvalidInput, "invalid JSON body")

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, errBadJSON)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		apperr.Write(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		log.Printf("register: hash error: %v", err)
		apperr.Write(w, err)
		return
	}

	user, err := s.repo.CreateUser(r.Context(), req.Username, req.Email, string(hash), s.roleFor(req.Email))
	if err != nil {
		if apperr.IsInternal(err) {
			log.Printf("register: CreateUser: %v", err)
		}
		apperr.Write(w, err)
		return
	}

	s.writeTokens(w, http.StatusCreated, user, "register")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, errBadJSON)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validate.Struct(req); err != nil {
		apperr.Write(w, err)
		return
	}

	invalid := apperr.New(apperr.CodeInvalidCredentials, "invalid credentials")

	user, err := s.repo.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			apperr.Write(w, invalid)
			return
		}
		log.Printf("login: FindUserByEmail: %v", err)
		apperr.Write(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		apperr.Write(w, invalid)
		return
	}

	s.writeTokens(w, http.StatusOK, user, "login")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, errBadJSON)
		return
	}
	if err := validate.Struct(req); err != nil {
		apperr.Write(w, err)
		return
	}

	claims, err := s.VerifyToken(req.RefreshToken, tokenRefresh)
	if err != nil {
		apperr.Write(w, apperr.New(apperr.CodeUnauthenticated, "invalid refresh token"))
		return
	}

	// The account may have been deleted since the token was issued.
	user, err := s.repo.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			log.Printf("refresh: FindUserByID: %v", err)
		}
		apperr.Write(w, apperr.New(apperr.CodeUnauthenticated, "user not found"))
		return
	}

	s.writeTokens(w, http.StatusOK, user, "refresh")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
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
		log.Printf("me: FindUserByID: %v", err)
		apperr.Write(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) writeTokens(w http.ResponseWriter, status int, user User, op string) {
	tokens, err := s.issueTokens(user)
	if err != nil {
		log.Printf("%s: issueTokens: %v", op, err)
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, status, authResponse{AuthTokens: tokens, User: user})
}

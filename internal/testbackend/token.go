package testbackend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okian/nodo/internal/domain/model"
)

const tokenTTL = 24 * time.Hour

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type userKey struct{}

func (s *Server) issueToken(u model.User) (string, error) {
	now := s.now()
	c := claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// authenticate resolves the bearer token to a user.
func (s *Server) authenticate(r *http.Request) (model.User, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return model.User{}, ErrUnauthorized
	}
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now))
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	u, ok := s.store.user(c.Subject)
	if !ok {
		return model.User{}, ErrUnauthorized
	}
	return u, nil
}

// requireUser rejects anonymous requests and, when roles are given, users
// of any other role.
func (s *Server) requireUser(next http.HandlerFunc, roles ...model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		if len(roles) > 0 && !hasRole(u, roles) {
			writeError(w, http.StatusForbidden, ErrForbidden)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	}
}

func hasRole(u model.User, roles []model.Role) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

func currentUser(r *http.Request) model.User {
	u, _ := r.Context().Value(userKey{}).(model.User)
	return u
}

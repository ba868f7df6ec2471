package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the explicit auth state handed to the API client.
type Session struct {
	store Store
}

// New wraps store.
func New(store Store) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{store: store}
}

// Token returns the stored token. A missing, blank or unreadable entry is
// reported as "" so callers treat it as unauthenticated.
func (s *Session) Token(ctx context.Context) string {
	v, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil || !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Authenticated reports whether a token is present. It says nothing about
// whether the backend still accepts it.
func (s *Session) Authenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// SetToken persists token. A blank token clears the session.
func (s *Session) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear(ctx)
	}
	return s.store.Set(ctx, TokenKey, token)
}

// Clear removes the token.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, TokenKey)
}

// ExpiresAt reads the exp claim of a JWT token without verifying it. ok is
// false when there is no token, it is not a JWT, or it carries no exp.
func (s *Session) ExpiresAt(ctx context.Context) (time.Time, bool) {
	token := s.Token(ctx)
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

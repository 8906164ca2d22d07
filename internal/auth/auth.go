// Package auth wraps the third-party auth provider as a bearer-token source.
package auth

import (
	"context"

	"storefront/internal/domain"
)

// Provider is the session source every backend call consults.
type Provider interface {
	// Session returns the current session or domain.ErrNoSession.
	Session(ctx context.Context) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
}

// Static is a fixed-session provider for tests and headless runs.
type Static struct {
	S *domain.Session
}

func NewStatic(token string) *Static {
	if token == "" {
		return &Static{}
	}
	return &Static{S: &domain.Session{AccessToken: token}}
}

func (s *Static) Session(context.Context) (*domain.Session, error) {
	if s.S == nil {
		return nil, domain.ErrNoSession
	}
	return s.S, nil
}

func (s *Static) SignIn(_ context.Context, email, _ string) (*domain.Session, error) {
	s.S = &domain.Session{AccessToken: "static-" + email, User: domain.User{Email: email}}
	return s.S, nil
}

func (s *Static) SignOut(context.Context) error {
	s.S = nil
	return nil
}

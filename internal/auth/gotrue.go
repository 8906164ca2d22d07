package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/secret"
)

const (
	sessionKey    = "auth.session"
	refreshWindow = 60 * time.Second
)

// GoTrue talks to a GoTrue-compatible auth endpoint and persists the session
// through a SecretStore.
type GoTrue struct {
	baseURL string
	anonKey string
	http    *http.Client
	store   secret.SecretStore
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *domain.Session
	loaded  bool
	refresh singleflight.Group
}

type GoTrueOption func(*GoTrue)

func WithHTTPClient(c *http.Client) GoTrueOption { return func(g *GoTrue) { g.http = c } }
func WithLogger(l *zap.Logger) GoTrueOption      { return func(g *GoTrue) { g.logger = l } }
func WithClock(now func() time.Time) GoTrueOption {
	return func(g *GoTrue) { g.now = now }
}

func NewGoTrue(cfg config.AuthConfig, store secret.SecretStore, opts ...GoTrueOption) *GoTrue {
	g := &GoTrue{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID           string         `json:"id"`
		Email        string         `json:"email"`
		UserMetadata map[string]any `json:"user_metadata"`
	} `json:"user"`
}

func (t tokenResponse) session(now time.Time) *domain.Session {
	s := &domain.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		User:         domain.User{ID: t.User.ID, Email: t.User.Email},
	}
	switch {
	case t.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	if name, ok := t.User.UserMetadata["username"].(string); ok {
		s.User.Username = name
	}
	return s
}

// Session returns the cached session, refreshing it when it expires within a minute.
func (g *GoTrue) Session(ctx context.Context) (*domain.Session, error) {
	s := g.current()
	if s == nil {
		return nil, domain.ErrNoSession
	}
	if !s.ExpiresWithin(g.now(), refreshWindow) {
		return s, nil
	}
	if s.RefreshToken == "" {
		g.forget()
		return nil, domain.ErrNoSession
	}

	v, err, _ := g.refresh.Do(s.RefreshToken, func() (any, error) {
		// another caller may have rotated the token since s was read
		if cur := g.current(); cur != nil && cur.RefreshToken != s.RefreshToken {
			return cur, nil
		}
		fresh, err := g.grant(ctx, "refresh_token", map[string]string{"refresh_token": s.RefreshToken})
		if err != nil {
			return nil, err
		}
		g.remember(fresh)
		return fresh, nil
	})
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			g.logger.Info("session refresh rejected, signing out", zap.Int("status", apiErr.Status))
			g.forget()
			return nil, domain.ErrNoSession
		}
		return nil, err
	}
	return v.(*domain.Session), nil
}

func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}
	s, err := g.grant(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	g.remember(s)
	g.logger.Info("signed in", zap.String("user", s.User.ID))
	return s, nil
}

// SignOut revokes the token best-effort and always forgets the local session.
func (g *GoTrue) SignOut(ctx context.Context) error {
	s := g.current()
	g.forget()
	if s == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	g.headers(req)
	req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	resp, err := g.http.Do(req)
	if err != nil {
		g.logger.Warn("logout request failed", zap.Error(err))
		return nil
	}
	resp.Body.Close()
	return nil
}

func (g *GoTrue) grant(ctx context.Context, grantType string, body map[string]string) (*domain.Session, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s grant: %w", grantType, err)
	}
	url := g.baseURL + "/auth/v1/token?grant_type=" + grantType
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s grant: %w", grantType, err)
	}
	g.headers(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: grantType + " grant", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.NetworkError{Op: grantType + " grant", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &domain.APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	var tr tokenResponse
	if err := json.Unmarshal(data, &tr); err != nil || tr.AccessToken == "" {
		return nil, &domain.ParseError{Kind: "session", Reason: "token response without access_token"}
	}
	return tr.session(g.now()), nil
}

func (g *GoTrue) headers(req *http.Request) {
	if g.anonKey != "" {
		req.Header.Set("apikey", g.anonKey)
	}
}

func (g *GoTrue) current() *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.loaded {
		g.loaded = true
		if data, err := g.store.Get(sessionKey); err != nil {
			g.logger.Warn("stored session unreadable", zap.Error(err))
		} else if len(data) > 0 {
			var s domain.Session
			if err := json.Unmarshal(data, &s); err == nil && s.AccessToken != "" {
				g.session = &s
			}
		}
	}
	return g.session
}

func (g *GoTrue) remember(s *domain.Session) {
	g.mu.Lock()
	g.session, g.loaded = s, true
	g.mu.Unlock()
	data, err := json.Marshal(s)
	if err == nil {
		err = g.store.Set(sessionKey, data)
	}
	if err != nil {
		g.logger.Warn("session not persisted", zap.Error(err))
	}
}

func (g *GoTrue) forget() {
	g.mu.Lock()
	g.session, g.loaded = nil, true
	g.mu.Unlock()
	if err := g.store.Delete(sessionKey); err != nil {
		g.logger.Warn("stored session not removed", zap.Error(err))
	}
}

// errorMessage pulls a human message out of an auth or backend error body.
func errorMessage(body []byte) string {
	var m map[string]any
	if json.Unmarshal(body, &m) != nil {
		return strings.TrimSpace(string(body))
	}
	for _, k := range []string{"message", "error_description", "msg", "error"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

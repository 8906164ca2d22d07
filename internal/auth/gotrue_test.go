package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/secret"
	"storefront/internal/storage"
)

type fakeGoTrue struct {
	refreshes atomic.Int32
	logouts   atomic.Int32
	reject    atomic.Bool
	delay     time.Duration

	mu   sync.Mutex
	used map[string]bool // refresh tokens are single use
}

func (f *fakeGoTrue) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Query().Get("grant_type") {
		case "password":
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"expires_in":    3600,
				"user": map[string]any{
					"id": "u1", "email": body["email"],
					"user_metadata": map[string]any{"username": "ama"},
				},
			})
		case "refresh_token":
			f.refreshes.Add(1)
			time.Sleep(f.delay)
			f.mu.Lock()
			reused := f.used[body["refresh_token"]]
			if f.used == nil {
				f.used = map[string]bool{}
			}
			f.used[body["refresh_token"]] = true
			f.mu.Unlock()
			if reused {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"Invalid Refresh Token: Already Used"}`))
				return
			}
			if f.reject.Load() {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"refresh token revoked"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-2",
				"refresh_token": "refresh-2",
				"expires_in":    3600,
				"user":          map[string]any{"id": "u1", "email": "ama@example.com"},
			})
		}
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newGoTrue(t *testing.T) (*auth.GoTrue, *fakeGoTrue, *clock, secret.SecretStore) {
	f := &fakeGoTrue{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	c := &clock{t: time.Now()}
	store := secret.NewKVStore(storage.NewMemory())
	g := auth.NewGoTrue(config.AuthConfig{URL: srv.URL, AnonKey: "anon"}, store, auth.WithClock(c.now))
	return g, f, c, store
}

func TestGoTrue_NoSession(t *testing.T) {
	g, _, _, _ := newGoTrue(t)
	_, err := g.Session(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.Equal(t, domain.KindNoSession, domain.Classify(err))
}

func TestGoTrue_SignIn(t *testing.T) {
	g, _, _, store := newGoTrue(t)
	ctx := context.Background()

	_, err := g.SignIn(ctx, "ama@example.com", "wrong")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)

	_, err = g.SignIn(ctx, "", "x")
	assert.Equal(t, domain.KindValidation, domain.Classify(err))

	s, err := g.SignIn(ctx, "ama@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "access-1", s.AccessToken)
	assert.Equal(t, "ama", s.User.Username)

	got, err := g.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)

	stored, err := store.Get("auth.session")
	require.NoError(t, err)
	assert.Contains(t, string(stored), "refresh-1")
}

func TestGoTrue_RestoresPersistedSession(t *testing.T) {
	g, _, _, store := newGoTrue(t)
	ctx := context.Background()
	_, err := g.SignIn(ctx, "ama@example.com", "secret")
	require.NoError(t, err)

	again := auth.NewGoTrue(config.AuthConfig{URL: "http://unused"}, store)
	s, err := again.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", s.AccessToken)
}

func TestGoTrue_RefreshNearExpiry(t *testing.T) {
	g, f, c, _ := newGoTrue(t)
	ctx := context.Background()
	_, err := g.SignIn(ctx, "ama@example.com", "secret")
	require.NoError(t, err)

	c.t = c.t.Add(59*time.Minute + 30*time.Second)
	s, err := g.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", s.AccessToken)
	assert.Equal(t, int32(1), f.refreshes.Load())

	s, err = g.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", s.AccessToken)
	assert.Equal(t, int32(1), f.refreshes.Load())
}

func TestGoTrue_ConcurrentRefreshUsesTokenOnce(t *testing.T) {
	g, f, c, _ := newGoTrue(t)
	f.delay = 20 * time.Millisecond
	ctx := context.Background()
	_, err := g.SignIn(ctx, "ama@example.com", "secret")
	require.NoError(t, err)
	c.t = c.t.Add(59*time.Minute + 30*time.Second)

	const callers = 16
	errs := make([]error, callers)
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Duration(i) * 3 * time.Millisecond)
			s, err := g.Session(ctx)
			errs[i] = err
			if s != nil {
				tokens[i] = s.AccessToken
			}
		}()
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i], "caller %d", i)
		assert.Equal(t, "access-2", tokens[i], "caller %d", i)
	}
	assert.Equal(t, int32(1), f.refreshes.Load(), "the rotated token is reused, not refreshed again")
}

func TestGoTrue_RejectedRefreshSignsOut(t *testing.T) {
	g, f, c, store := newGoTrue(t)
	ctx := context.Background()
	_, err := g.SignIn(ctx, "ama@example.com", "secret")
	require.NoError(t, err)

	f.reject.Store(true)
	c.t = c.t.Add(2 * time.Hour)
	_, err = g.Session(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	stored, err := store.Get("auth.session")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestGoTrue_SignOut(t *testing.T) {
	g, f, _, _ := newGoTrue(t)
	ctx := context.Background()
	_, err := g.SignIn(ctx, "ama@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, g.SignOut(ctx))
	assert.Equal(t, int32(1), f.logouts.Load())
	_, err = g.Session(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := auth.NewStatic("")
	_, err := s.Session(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	s = auth.NewStatic("tok")
	got, err := s.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
	require.NoError(t, s.SignOut(ctx))
	_, err = s.Session(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/domain"
)

func newClient(t *testing.T, r chi.Router, token string) *backend.Client {
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	cfg := config.Default().API
	cfg.BaseURL = srv.URL + "/api/users"
	cfg.Timeout = 2 * time.Second
	return backend.New(cfg, auth.NewStatic(token))
}

func TestClient_BearerAndProfile(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/users/account-profile", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		w.Write([]byte(`{"full_name":"Ama Mensah","phone_number":"024","email":"ama@example.com"}`))
	})
	r.Put("/api/users/account-profile", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, map[string]string{"full_name": "Ama", "phone_number": "050", "email": "a@b.c"}, body)
		w.Write([]byte(`{"ok":true}`))
	})
	c := newClient(t, r, "tok")
	ctx := context.Background()

	p, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.Profile{FullName: "Ama Mensah", PhoneNumber: "024", Email: "ama@example.com"}, p)
	assert.True(t, p.Complete())

	require.NoError(t, c.UpdateProfile(ctx, domain.Profile{FullName: "Ama", PhoneNumber: "050", Email: "a@b.c"}))
}

func TestClient_NoSessionSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/users/account-profile", func(w http.ResponseWriter, _ *http.Request) { hits.Add(1) })
	c := newClient(t, r, "")

	_, err := c.GetProfile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.Zero(t, hits.Load())
}

func TestClient_ErrorsAreClassified(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/users/orders", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"jwt expired"}`))
	})
	r.Delete("/api/users/user-address/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"address not found"}`))
	})
	c := newClient(t, r, "tok")
	ctx := context.Background()

	_, err := c.ListOrders(ctx, 1, 10)
	assert.Equal(t, domain.KindNoSession, domain.Classify(err))

	err = c.DeleteAddress(ctx, "9")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "address not found", apiErr.Message)
	assert.Equal(t, domain.KindBackend, domain.Classify(err))
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/users/user-address", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newClient(t, r, "tok")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.ListAddresses(ctx)
		assert.Equal(t, domain.KindBackend, domain.Classify(err))
	}
	_, err := c.ListAddresses(ctx)
	assert.Equal(t, domain.KindNetwork, domain.Classify(err))
	assert.Equal(t, int32(5), hits.Load())
	assert.Equal(t, "open", c.BreakerState())
}

func TestClient_ClientErrorsDoNotTrip(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/users/user-address", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	c := newClient(t, r, "tok")
	for i := 0; i < 8; i++ {
		_, err := c.CreateAddress(context.Background(), "x", false)
		assert.Equal(t, domain.KindBackend, domain.Classify(err))
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestClient_BodyLimit(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/users/users-products", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[` + strings.Repeat(`{"id":"1"},`, 100) + `{"id":"2"}]`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	cfg := config.Default().API
	cfg.BaseURL = srv.URL + "/api/users"
	cfg.MaxBodyBytes = 64
	c := backend.New(cfg, auth.NewStatic("tok"))

	_, err := c.ListProducts(context.Background())
	assert.Equal(t, domain.KindMalformed, domain.Classify(err))
}

func TestClient_Addresses(t *testing.T) {
	var patched map[string]any
	var created map[string]any
	r := chi.NewRouter()
	r.Route("/api/users/user-address", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"addresses":[{"id":1,"address":"12 Oxford St","is_default":true},{"id":"2","address":"Ring Rd"}]}`))
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			json.NewDecoder(req.Body).Decode(&created)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"address":{"id":"3"}}`))
		})
		r.Patch("/{id}", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "2", chi.URLParam(req, "id"))
			json.NewDecoder(req.Body).Decode(&patched)
			w.Write([]byte(`{}`))
		})
	})
	c := newClient(t, r, "tok")
	ctx := context.Background()

	list, err := c.ListAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{
		{ID: "1", Address: "12 Oxford St", IsDefault: true},
		{ID: "2", Address: "Ring Rd"},
	}, list)

	addr, err := c.CreateAddress(ctx, "Spintex", true)
	require.NoError(t, err)
	assert.Equal(t, "3", addr.ID)
	assert.Equal(t, map[string]any{"address": "Spintex", "is_default": true}, created)

	yes := true
	require.NoError(t, c.UpdateAddress(ctx, "2", backend.AddressPatch{IsDefault: &yes}))
	assert.Equal(t, map[string]any{"is_default": true}, patched)
}

func TestClient_CreateOrderAndProducts(t *testing.T) {
	var got domain.OrderPayload
	r := chi.NewRouter()
	r.Post("/api/users/create-custom-order", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/api/users/users-products", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"products":[{"product_id":7,"product_name":"Tee","sale_price":"29.99","product_sizes":"S,M"}]}`))
	})
	c := newClient(t, r, "tok")
	ctx := context.Background()

	payload := domain.OrderPayload{OrderTotal: 140, ItemCount: 1, CustomerName: "Ama", PaymentReference: "SF-1",
		Items: []domain.OrderPayloadItem{{ProductID: "A", Size: "M", Quantity: 2, Price: 50, ItemTotal: 100}}}
	require.NoError(t, c.CreateCustomOrder(ctx, payload))
	assert.Equal(t, payload, got)

	list, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "7", list.Products[0].ID)
	assert.Equal(t, 29.99, list.Products[0].Price)
}

// Package httpapi serves the storefront over HTTP for headless clients and
// for the payment provider's redirect callbacks.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront/internal/service"
)

// PaymentResolver delivers a widget outcome for a payment reference.
type PaymentResolver interface {
	Resolve(ctx context.Context, reference string, success bool) error
}

type Deps struct {
	Logger   *zap.Logger
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Checkout *service.CheckoutService
	Payments PaymentResolver
	Design   *service.DesignService
	Timeout  time.Duration
}

type Server struct {
	logger   *zap.Logger
	catalog  *service.CatalogService
	cart     *service.CartService
	checkout *service.CheckoutService
	payments PaymentResolver
	design   *service.DesignService
	timeout  time.Duration
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 30 * time.Second
	}
	return &Server{
		logger:   deps.Logger,
		catalog:  deps.Catalog,
		cart:     deps.Cart,
		checkout: deps.Checkout,
		payments: deps.Payments,
		design:   deps.Design,
		timeout:  deps.Timeout,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Get("/{productID}", s.getProduct)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.getCart)
			r.Delete("/", s.clearCart)
			r.Get("/totals", s.cartTotals)
			r.Post("/items", s.addItem)
			r.Patch("/items/{productID}/{size}", s.updateQuantity)
			r.Delete("/items/{productID}/{size}", s.removeItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", s.beginCheckout)
			r.Get("/pending", s.pendingCheckout)
			r.Post("/{reference}/success", s.resolvePayment(true))
			r.Post("/{reference}/cancel", s.resolvePayment(false))
		})
		r.Route("/design", func(r chi.Router) {
			r.Get("/", s.designView)
			r.Get("/export.png", s.designExport)
			r.Get("/preview.png", s.designPreview)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

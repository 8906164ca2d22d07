package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Catalog Service: product loading, browsing, add-to-cart
// ─────────────────────────────────────────────────────────────

const catalogResource = "catalog"

// ProductSource lists the backend product records.
type ProductSource interface {
	ListProducts(ctx context.Context) (catalog.ProductList, error)
}

// CatalogView is one page of the product grid.
type CatalogView struct {
	Products     []domain.Product         `json:"products"`
	Categories   []catalog.CategoryOption `json:"categories"`
	PriceCeiling float64                  `json:"priceCeiling"`
	Total        int                      `json:"total"`
	LoadedAt     time.Time                `json:"loadedAt"`
}

// CatalogService caches the normalized product list and serves filtered views of it.
type CatalogService struct {
	source  ProductSource
	cache   catalog.Cache
	cart    *CartService
	emitter EventEmitter
	logger  *zap.Logger
	seq     *Sequencer
	group   singleflight.Group

	mu       sync.RWMutex
	products []domain.Product
	loadedAt time.Time

	cronSched *cron.Cron
}

// NewCatalogService creates a CatalogService. cache may be nil.
func NewCatalogService(source ProductSource, cache catalog.Cache, cart *CartService, emitter EventEmitter, logger *zap.Logger) *CatalogService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &CatalogService{
		source:  source,
		cache:   cache,
		cart:    cart,
		emitter: emitter,
		logger:  logger,
		seq:     NewSequencer(),
	}
}

// Load fetches the product list, from the cache when it is warm. Concurrent
// loads share one fetch and its result. A fetch invalidated by Discard while
// in flight returns ErrStale and leaves the held list alone.
func (s *CatalogService) Load(ctx context.Context) ([]domain.Product, error) {
	v, err, shared := s.group.Do(catalogResource, func() (any, error) {
		tok := s.seq.Next(catalogResource)
		products, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		if !s.seq.IsCurrent(tok) {
			return nil, domain.ErrStale
		}

		s.mu.Lock()
		s.products = products
		s.loadedAt = time.Now()
		s.mu.Unlock()
		s.emitter.Emit(ctx, EventCatalogUpdated, len(products))
		return products, nil
	})
	if errors.Is(err, domain.ErrStale) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	products := v.([]domain.Product)
	s.logger.Debug("catalog loaded", zap.Int("products", len(products)), zap.Bool("shared", shared))
	return products, nil
}

func (s *CatalogService) fetch(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, catalog.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	list, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if list.Skipped > 0 {
		s.logger.Warn("skipped malformed product records", zap.Int("skipped", list.Skipped))
	}
	if list.Products == nil {
		list.Products = []domain.Product{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, list.Products); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return list.Products, nil
}

// Refresh drops the cache and reloads from the backend.
func (s *CatalogService) Refresh(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
		}
	}
	return s.Load(ctx)
}

// Discard makes any load still in flight stale, for a product view that went away.
func (s *CatalogService) Discard() {
	s.seq.Invalidate(catalogResource)
}

// Products returns the held list, loading it first if nothing is held.
func (s *CatalogService) Products(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	products := s.products
	s.mu.RUnlock()
	if products != nil {
		return products, nil
	}
	return s.Load(ctx)
}

// Browse filters and sorts the held list.
func (s *CatalogService) Browse(ctx context.Context, q catalog.Query, order catalog.SortOrder) (CatalogView, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return CatalogView{}, err
	}
	s.mu.RLock()
	loadedAt := s.loadedAt
	s.mu.RUnlock()

	visible := catalog.Browse(products, q, order)
	return CatalogView{
		Products:     visible,
		Categories:   catalog.Categories(products),
		PriceCeiling: catalog.PriceCeiling(products),
		Total:        len(visible),
		LoadedAt:     loadedAt,
	}, nil
}

func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	p, ok := catalog.FindProduct(products, id)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// AddToCart adds quantity of the product in size. The size is required.
func (s *CatalogService) AddToCart(ctx context.Context, productID, size string, quantity int) (CartView, error) {
	p, err := s.Product(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	item, err := catalog.LineItemFor(p, size, quantity)
	if err != nil {
		return CartView{}, err
	}
	s.logger.Info("added to cart",
		zap.String("product", item.ProductID),
		zap.String("size", item.Size),
		zap.Int("quantity", item.Quantity))
	return s.cart.Add(item), nil
}

// ── Scheduled refresh ─────────────────────────────────────

// StartRefresh reloads the catalog on the cron schedule expr until Stop.
func (s *CatalogService) StartRefresh(ctx context.Context, expr string) error {
	if expr == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrStale) {
			s.logger.Warn("scheduled catalog refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("catalog refresh schedule %q: %w", expr, err)
	}
	s.Stop()
	c.Start()
	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()
	s.logger.Info("catalog refresh scheduled", zap.String("schedule", expr))
	return nil
}

func (s *CatalogService) Stop() {
	s.mu.Lock()
	c := s.cronSched
	s.cronSched = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

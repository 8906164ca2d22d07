package service

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Cart Service: cart store plus UI notification
// ─────────────────────────────────────────────────────────────

// CartView is the cart as the UI renders it.
type CartView struct {
	Items  []domain.LineItem `json:"items"`
	Lines  int               `json:"lines"`
	Count  int               `json:"count"`
	Totals checkout.Totals   `json:"totals"`
}

// CartService exposes the cart store and emits cart:changed after every mutation.
type CartService struct {
	store   *cart.Store
	pricing *checkout.PricingHolder
	emitter EventEmitter
	logger  *zap.Logger
}

func NewCartService(store *cart.Store, pricing *checkout.PricingHolder, emitter EventEmitter, logger *zap.Logger) *CartService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if pricing == nil {
		pricing = checkout.NewPricingHolder(checkout.DefaultPricing())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CartService{store: store, pricing: pricing, emitter: emitter, logger: logger}
	store.OnChange(func(items []domain.LineItem) {
		s.emitter.Emit(context.Background(), EventCartChanged, s.viewOf(items, true))
	})
	return s
}

// Store returns the underlying cart store.
func (s *CartService) Store() *cart.Store { return s.store }

func (s *CartService) Add(item domain.LineItem) CartView {
	s.store.Add(item)
	return s.View(true)
}

func (s *CartService) SetQuantity(productID, size string, quantity int) CartView {
	s.store.SetQuantity(productID, size, quantity)
	return s.View(true)
}

func (s *CartService) Remove(productID, size string) CartView {
	s.store.Remove(productID, size)
	return s.View(true)
}

func (s *CartService) Clear() CartView {
	s.store.Clear()
	s.logger.Info("cart cleared")
	return s.View(true)
}

// View returns the cart with totals computed for includeDelivery.
func (s *CartService) View(includeDelivery bool) CartView {
	return s.viewOf(s.store.Items(), includeDelivery)
}

// Totals prices the current cart.
func (s *CartService) Totals(includeDelivery bool) checkout.Totals {
	return checkout.ComputeTotals(s.store.Items(), includeDelivery, s.pricing.Load())
}

func (s *CartService) viewOf(items []domain.LineItem, includeDelivery bool) CartView {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return CartView{
		Items:  items,
		Lines:  len(items),
		Count:  count,
		Totals: checkout.ComputeTotals(items, includeDelivery, s.pricing.Load()),
	}
}

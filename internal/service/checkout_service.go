package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/payment"
)

// ─────────────────────────────────────────────────────────────
// Checkout Service: payment hand-off and order submission
// ─────────────────────────────────────────────────────────────

const checkoutKey = "checkout"

// OrderBackend is the part of the backend the checkout needs.
type OrderBackend interface {
	GetProfile(ctx context.Context) (*domain.Profile, error)
	CreateCustomOrder(ctx context.Context, payload domain.OrderPayload) error
}

// Receipt is emitted when an order has been recorded.
type Receipt struct {
	Reference string          `json:"reference"`
	Totals    checkout.Totals `json:"totals"`
}

// pendingCheckout is everything fixed when the widget was opened.
type pendingCheckout struct {
	request         checkout.PaymentRequest
	items           []domain.LineItem
	totals          checkout.Totals
	includeDelivery bool
	profile         *domain.Profile
}

// CheckoutService runs one checkout at a time: gate, payment widget, then
// order submission on the widget's success callback.
type CheckoutService struct {
	cart    *CartService
	backend OrderBackend
	widget  payment.Widget
	auth    auth.Provider
	pricing *checkout.PricingHolder
	emitter EventEmitter
	logger  *zap.Logger
	guard   runningGuard

	mu      sync.Mutex
	pending *pendingCheckout
}

func NewCheckoutService(
	cart *CartService,
	backend OrderBackend,
	widget payment.Widget,
	provider auth.Provider,
	pricing *checkout.PricingHolder,
	emitter EventEmitter,
	logger *zap.Logger,
) *CheckoutService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &CheckoutService{
		cart:    cart,
		backend: backend,
		widget:  widget,
		auth:    provider,
		pricing: pricing,
		emitter: emitter,
		logger:  logger,
	}
}

// Totals prices the current cart with the current pricing.
func (s *CheckoutService) Totals(includeDelivery bool) checkout.Totals {
	return s.cart.Totals(includeDelivery)
}

// Begin opens the payment widget for the current cart. The amount is fixed
// here; later pricing or cart changes do not affect the open payment.
// While a payment is open a second Begin returns ErrBusy.
func (s *CheckoutService) Begin(ctx context.Context, includeDelivery bool) (checkout.PaymentRequest, error) {
	release, err := s.guard.Acquire(checkoutKey)
	if err != nil {
		return checkout.PaymentRequest{}, err
	}
	defer release()

	s.mu.Lock()
	busy := s.pending != nil
	s.mu.Unlock()
	if busy {
		return checkout.PaymentRequest{}, domain.ErrBusy
	}

	items := s.cart.Store().Items()
	if len(items) == 0 {
		return checkout.PaymentRequest{}, domain.NewValidationError("cart", "your cart is empty")
	}

	profile, err := s.backend.GetProfile(ctx)
	if err != nil {
		return checkout.PaymentRequest{}, fmt.Errorf("begin checkout: %w", err)
	}
	if err := checkout.CheckGate(profile); err != nil {
		s.emitter.Emit(ctx, EventProfileRequired, profile)
		return checkout.PaymentRequest{}, err
	}

	pricing := s.pricing.Load()
	totals := checkout.ComputeTotals(items, includeDelivery, pricing)
	req := checkout.NewPaymentRequest(totals, pricing, profile)
	if req.Email == "" {
		req.Email = s.sessionEmail(ctx)
	}

	s.mu.Lock()
	s.pending = &pendingCheckout{
		request:         req,
		items:           items,
		totals:          totals,
		includeDelivery: includeDelivery,
		profile:         profile,
	}
	s.mu.Unlock()

	s.logger.Info("checkout started",
		zap.String("reference", req.Reference),
		zap.Int64("amount", req.AmountMinor),
		zap.Int("lines", len(items)))
	s.emitter.Emit(ctx, EventCheckoutPending, req)

	cb := payment.Callbacks{OnSuccess: s.PaymentSucceeded, OnCancel: s.PaymentCancelled}
	if err := s.widget.Open(ctx, req, cb); err != nil {
		s.take(req.Reference)
		return checkout.PaymentRequest{}, fmt.Errorf("open payment widget: %w", err)
	}
	return req, nil
}

func (s *CheckoutService) sessionEmail(ctx context.Context) string {
	if s.auth == nil {
		return ""
	}
	sess, err := s.auth.Session(ctx)
	if err != nil || sess == nil {
		return ""
	}
	return strings.TrimSpace(sess.User.Email)
}

// take removes and returns the pending checkout for reference.
func (s *CheckoutService) take(reference string) *pendingCheckout {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending.request.Reference != reference {
		return nil
	}
	p := s.pending
	s.pending = nil
	return p
}

// Pending returns the open payment request, if any.
func (s *CheckoutService) Pending() (checkout.PaymentRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return checkout.PaymentRequest{}, false
	}
	return s.pending.request, true
}

// PaymentSucceeded records the order for a paid checkout and clears the cart.
// A failed submission is returned as *domain.ReconciliationError and the
// cart is kept: the customer has paid and the order must be reconciled.
func (s *CheckoutService) PaymentSucceeded(ctx context.Context, reference string) error {
	p := s.take(reference)
	if p == nil {
		return fmt.Errorf("payment success %s: %w", reference, payment.ErrUnknownReference)
	}

	payload := checkout.BuildPayload(p.items, p.totals, p.includeDelivery, p.profile, reference)
	if err := s.backend.CreateCustomOrder(ctx, payload); err != nil {
		rerr := &domain.ReconciliationError{Reference: reference, Err: err}
		s.logger.Error("paid order not recorded",
			zap.String("reference", reference),
			zap.Float64("total", payload.OrderTotal),
			zap.Error(err))
		s.emitter.Emit(ctx, EventCheckoutFailed, map[string]string{
			"reference": reference,
			"error":     err.Error(),
		})
		return rerr
	}

	s.cart.Clear()
	s.logger.Info("order recorded", zap.String("reference", reference))
	s.emitter.Emit(ctx, EventCheckoutComplete, Receipt{Reference: reference, Totals: p.totals})
	return nil
}

// PaymentCancelled closes the pending checkout. The cart is untouched.
func (s *CheckoutService) PaymentCancelled(ctx context.Context, reference string) {
	if s.take(reference) == nil {
		s.logger.Warn("cancel for unknown payment", zap.String("reference", reference))
		return
	}
	s.logger.Info("payment cancelled", zap.String("reference", reference))
	s.emitter.Emit(ctx, EventCheckoutCancel, reference)
}

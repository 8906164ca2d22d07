package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/service"
)

type checkoutFixture struct {
	cart    *service.CartService
	backend *fakeBackend
	widget  *payment.FakeWidget
	pricing *checkout.PricingHolder
	events  *service.MockEmitter
	svc     *service.CheckoutService
}

func newCheckout(t *testing.T, outcome payment.Outcome) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		backend: &fakeBackend{profile: &domain.Profile{FullName: "Ama Mensah", PhoneNumber: "0241234567", Email: "ama@example.com"}},
		widget:  &payment.FakeWidget{Outcome: outcome},
		pricing: checkout.NewPricingHolder(checkout.DefaultPricing()),
		events:  &service.MockEmitter{},
	}
	f.cart = newCartService(t, nil)
	f.svc = service.NewCheckoutService(f.cart, f.backend, f.widget, auth.NewStatic("tok"), f.pricing, f.events, zap.NewNop())
	f.cart.Add(domain.LineItem{ProductID: "1", Name: "Tee", Size: "M", Price: 100, Quantity: 1})
	return f
}

func TestCheckout_SuccessSubmitsOrderAndClearsCart(t *testing.T) {
	f := newCheckout(t, payment.OutcomeSuccess)

	req, err := f.svc.Begin(context.Background(), true)
	require.NoError(t, err)
	require.NoError(t, f.widget.SuccessErr)

	assert.Equal(t, int64(14000), req.AmountMinor)
	assert.Equal(t, "GHS", req.Currency)
	assert.Equal(t, "ama@example.com", req.Email)

	require.Len(t, f.backend.orders, 1)
	order := f.backend.orders[0]
	assert.Equal(t, 140.0, order.OrderTotal)
	assert.Equal(t, 40.0, order.DeliveryFee)
	assert.Equal(t, 1, order.ItemCount)
	assert.Equal(t, "Ama Mensah", order.CustomerName)
	assert.Equal(t, req.Reference, order.PaymentReference)

	assert.Empty(t, f.cart.Store().Items())
	assert.Len(t, f.events.Named(service.EventCheckoutComplete), 1)
	_, pending := f.svc.Pending()
	assert.False(t, pending)
}

func TestCheckout_SubmissionFailureIsReconciliationError(t *testing.T) {
	f := newCheckout(t, payment.OutcomeNone)
	f.backend.orderErr = &domain.APIError{Status: 500, Message: "db down"}

	req, err := f.svc.Begin(context.Background(), true)
	require.NoError(t, err)

	err = f.widget.Resolve(context.Background(), req.Reference, true)
	var rec *domain.ReconciliationError
	require.True(t, errors.As(err, &rec))
	assert.Equal(t, req.Reference, rec.Reference)
	assert.Equal(t, domain.KindReconciliation, domain.Classify(err))

	assert.Len(t, f.cart.Store().Items(), 1, "cart is kept")
	assert.Len(t, f.events.Named(service.EventCheckoutFailed), 1)
	assert.Empty(t, f.events.Named(service.EventCheckoutComplete))
}

func TestCheckout_CancelLeavesCartAlone(t *testing.T) {
	f := newCheckout(t, payment.OutcomeCancel)

	_, err := f.svc.Begin(context.Background(), false)
	require.NoError(t, err)

	assert.Len(t, f.cart.Store().Items(), 1)
	assert.Empty(t, f.backend.orders)
	assert.Len(t, f.events.Named(service.EventCheckoutCancel), 1)
	_, pending := f.svc.Pending()
	assert.False(t, pending)
}

func TestCheckout_IncompleteProfileIsGated(t *testing.T) {
	f := newCheckout(t, payment.OutcomeSuccess)
	f.backend.profile = &domain.Profile{FullName: "Ama", Email: "ama@example.com"}

	_, err := f.svc.Begin(context.Background(), true)
	assert.ErrorIs(t, err, checkout.ErrProfileIncomplete)
	assert.Empty(t, f.widget.Requests, "widget must not open")
	assert.Len(t, f.events.Named(service.EventProfileRequired), 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckout(t, payment.OutcomeSuccess)
	f.cart.Clear()

	_, err := f.svc.Begin(context.Background(), true)
	assert.Equal(t, domain.KindValidation, domain.Classify(err))
}

func TestCheckout_SecondBeginWhilePendingIsBusy(t *testing.T) {
	f := newCheckout(t, payment.OutcomeNone)

	req, err := f.svc.Begin(context.Background(), true)
	require.NoError(t, err)
	_, err = f.svc.Begin(context.Background(), true)
	assert.ErrorIs(t, err, domain.ErrBusy)

	require.NoError(t, f.widget.Resolve(context.Background(), req.Reference, false))
	_, err = f.svc.Begin(context.Background(), true)
	assert.NoError(t, err, "a new checkout may start once the last one closed")
}

func TestCheckout_AmountFixedAtBegin(t *testing.T) {
	f := newCheckout(t, payment.OutcomeNone)

	req, err := f.svc.Begin(context.Background(), true)
	require.NoError(t, err)

	f.pricing.Store(checkout.Pricing{
		FreeShippingThreshold: decimal.NewFromInt(50),
		BaseDeliveryFee:       decimal.NewFromInt(99),
		Currency:              "GHS",
		MinorUnits:            100,
	})
	f.cart.Add(domain.LineItem{ProductID: "2", Size: "L", Price: 300, Quantity: 1})

	require.NoError(t, f.widget.Resolve(context.Background(), req.Reference, true))
	require.Len(t, f.backend.orders, 1)
	assert.Equal(t, 140.0, f.backend.orders[0].OrderTotal)
	assert.Len(t, f.backend.orders[0].Items, 1)
	assert.Equal(t, int64(14000), f.widget.Requests[0].AmountMinor)
}

func TestCheckout_UnknownReference(t *testing.T) {
	f := newCheckout(t, payment.OutcomeNone)
	err := f.svc.PaymentSucceeded(context.Background(), "SF-nope")
	assert.ErrorIs(t, err, payment.ErrUnknownReference)
	assert.Empty(t, f.backend.orders)
}

func TestCheckout_ProfileFetchFailure(t *testing.T) {
	f := newCheckout(t, payment.OutcomeSuccess)
	f.backend.profileErr = domain.ErrNoSession

	_, err := f.svc.Begin(context.Background(), true)
	assert.Equal(t, domain.KindNoSession, domain.Classify(err))
	assert.Empty(t, f.widget.Requests)
}

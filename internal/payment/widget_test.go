package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/checkout"
	"storefront/internal/payment"
)

type recordingEmitter struct {
	events []string
	data   []any
}

func (r *recordingEmitter) Emit(_ context.Context, event string, data any) {
	r.events = append(r.events, event)
	r.data = append(r.data, data)
}

func TestEventWidget_SuccessRoundTrip(t *testing.T) {
	em := &recordingEmitter{}
	w := payment.NewEventWidget(em, nil)
	ctx := context.Background()

	var succeeded string
	req := checkout.PaymentRequest{AmountMinor: 14000, Currency: "GHS", Reference: "ref-1"}
	require.NoError(t, w.Open(ctx, req, payment.Callbacks{
		OnSuccess: func(_ context.Context, ref string) error { succeeded = ref; return nil },
		OnCancel:  func(context.Context, string) { t.Fatal("cancel must not fire") },
	}))

	assert.Equal(t, []string{payment.EventOpen}, em.events)
	assert.Equal(t, req, em.data[0])
	assert.True(t, w.Pending("ref-1"))

	require.NoError(t, w.Resolve(ctx, "ref-1", true))
	assert.Equal(t, "ref-1", succeeded)
	assert.False(t, w.Pending("ref-1"))

	// callbacks fire once
	err := w.Resolve(ctx, "ref-1", true)
	assert.ErrorIs(t, err, payment.ErrUnknownReference)
}

func TestEventWidget_CancelAndSuccessError(t *testing.T) {
	w := payment.NewEventWidget(nil, nil)
	ctx := context.Background()

	cancelled := false
	require.NoError(t, w.Open(ctx, checkout.PaymentRequest{Reference: "a"}, payment.Callbacks{
		OnCancel: func(context.Context, string) { cancelled = true },
	}))
	require.NoError(t, w.Resolve(ctx, "a", false))
	assert.True(t, cancelled)

	boom := errors.New("boom")
	require.NoError(t, w.Open(ctx, checkout.PaymentRequest{Reference: "b"}, payment.Callbacks{
		OnSuccess: func(context.Context, string) error { return boom },
	}))
	assert.ErrorIs(t, w.Resolve(ctx, "b", true), boom)

	assert.Error(t, w.Open(ctx, checkout.PaymentRequest{}, payment.Callbacks{}))
}

func TestFakeWidget(t *testing.T) {
	ctx := context.Background()
	calls := 0
	cb := payment.Callbacks{
		OnSuccess: func(context.Context, string) error { calls++; return nil },
		OnCancel:  func(context.Context, string) { calls += 10 },
	}

	f := &payment.FakeWidget{Outcome: payment.OutcomeSuccess}
	require.NoError(t, f.Open(ctx, checkout.PaymentRequest{Reference: "r"}, cb))
	assert.Equal(t, 1, calls)
	assert.Len(t, f.Requests, 1)

	f = &payment.FakeWidget{Outcome: payment.OutcomeCancel}
	require.NoError(t, f.Open(ctx, checkout.PaymentRequest{Reference: "r"}, cb))
	assert.Equal(t, 11, calls)

	f = &payment.FakeWidget{}
	require.NoError(t, f.Open(ctx, checkout.PaymentRequest{Reference: "r"}, cb))
	assert.Equal(t, 11, calls)
	require.NoError(t, f.Resolve(ctx, "r", true))
	assert.Equal(t, 12, calls)
}

// Package payment hands a checkout over to the third-party payment widget and
// routes its success and cancel callbacks back to the caller.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/checkout"
)

const EventOpen = "payment:open"

var ErrUnknownReference = errors.New("unknown payment reference")

// Callbacks are invoked exactly once per opened payment.
type Callbacks struct {
	OnSuccess func(ctx context.Context, reference string) error
	OnCancel  func(ctx context.Context, reference string)
}

// Widget opens a payment for req. The result arrives later through cb.
type Widget interface {
	Open(ctx context.Context, req checkout.PaymentRequest, cb Callbacks) error
}

// Emitter is satisfied by the service layer's event emitter.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// EventWidget asks the UI to show the hosted widget and waits for the UI to
// report the outcome through Resolve.
type EventWidget struct {
	emitter Emitter
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]Callbacks
}

func NewEventWidget(emitter Emitter, logger *zap.Logger) *EventWidget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventWidget{emitter: emitter, logger: logger, pending: make(map[string]Callbacks)}
}

func (w *EventWidget) Open(ctx context.Context, req checkout.PaymentRequest, cb Callbacks) error {
	if req.Reference == "" {
		return fmt.Errorf("open payment: empty reference")
	}
	w.mu.Lock()
	w.pending[req.Reference] = cb
	w.mu.Unlock()

	w.logger.Info("payment widget opened",
		zap.String("reference", req.Reference),
		zap.Int64("amount", req.AmountMinor),
		zap.String("currency", req.Currency))
	if w.emitter != nil {
		w.emitter.Emit(ctx, EventOpen, req)
	}
	return nil
}

// Resolve delivers the widget outcome for reference. The error of the success
// callback is returned to the caller.
func (w *EventWidget) Resolve(ctx context.Context, reference string, success bool) error {
	w.mu.Lock()
	cb, ok := w.pending[reference]
	delete(w.pending, reference)
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("resolve %s: %w", reference, ErrUnknownReference)
	}

	w.logger.Info("payment widget closed", zap.String("reference", reference), zap.Bool("success", success))
	if success {
		if cb.OnSuccess != nil {
			return cb.OnSuccess(ctx, reference)
		}
		return nil
	}
	if cb.OnCancel != nil {
		cb.OnCancel(ctx, reference)
	}
	return nil
}

// Pending reports whether reference is still awaiting an outcome.
func (w *EventWidget) Pending(reference string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.pending[reference]
	return ok
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeCancel
)

// FakeWidget resolves synchronously with a fixed outcome. OutcomeNone leaves
// the payment open; call Resolve later.
type FakeWidget struct {
	Outcome Outcome
	OpenErr error

	mu       sync.Mutex
	Requests []checkout.PaymentRequest
	last     Callbacks
	// SuccessErr records the error returned by the last success callback.
	SuccessErr error
}

func (f *FakeWidget) Open(ctx context.Context, req checkout.PaymentRequest, cb Callbacks) error {
	if f.OpenErr != nil {
		return f.OpenErr
	}
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.last = cb
	outcome := f.Outcome
	f.mu.Unlock()

	switch outcome {
	case OutcomeSuccess:
		f.record(cb.OnSuccess(ctx, req.Reference))
	case OutcomeCancel:
		cb.OnCancel(ctx, req.Reference)
	}
	return nil
}

// Resolve completes the last opened payment.
func (f *FakeWidget) Resolve(ctx context.Context, reference string, success bool) error {
	f.mu.Lock()
	cb := f.last
	f.mu.Unlock()
	if success {
		err := cb.OnSuccess(ctx, reference)
		f.record(err)
		return err
	}
	cb.OnCancel(ctx, reference)
	return nil
}

func (f *FakeWidget) record(err error) {
	f.mu.Lock()
	f.SuccessErr = err
	f.mu.Unlock()
}

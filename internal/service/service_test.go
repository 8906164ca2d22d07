package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/service"
	"storefront/internal/storage"
)

func storageMemory() *storage.Memory { return storage.NewMemory() }

func newCartService(t *testing.T, emitter service.EventEmitter) *service.CartService {
	t.Helper()
	store := cart.New(storage.NewMemory())
	return service.NewCartService(store, checkout.NewPricingHolder(checkout.DefaultPricing()), emitter, zap.NewNop())
}

// ─────────────────────────────────────────────────────────────
// runningGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("profile") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("profile") {
		t.Fatal("expected second TryLock for same key to fail")
	}
	if !g.TryLock("address:1") {
		t.Fatal("expected TryLock for different key to succeed")
	}
	g.Unlock("profile")
	g.Unlock("address:1")

	if !g.TryLock("profile") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("profile")
}

func TestRunningGuard_AcquireBusy(t *testing.T) {
	var g service.ExportedRunningGuard

	release, err := g.Acquire("checkout")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := g.Acquire("checkout"); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if !g.Busy("checkout") {
		t.Fatal("expected key to be busy")
	}
	release()
	if g.Busy("checkout") {
		t.Fatal("expected key to be free after release")
	}
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("job-a") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("job-a")
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// Sequencer tests
// ─────────────────────────────────────────────────────────────

func TestSequencer_NewerRequestWins(t *testing.T) {
	seq := service.NewSequencer()
	first := seq.Next("orders")
	second := seq.Next("orders")
	other := seq.Next("profile")

	if seq.IsCurrent(first) {
		t.Error("first token should be stale after a newer request")
	}
	if !seq.IsCurrent(second) {
		t.Error("latest token should be current")
	}
	if !seq.IsCurrent(other) {
		t.Error("tokens of other resources are independent")
	}

	seq.Invalidate("orders")
	if seq.IsCurrent(second) {
		t.Error("invalidate should make the outstanding token stale")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)
	m.Emit(ctx, "test:event", nil)

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if got := len(m.Named("test:event")); got != 2 {
		t.Errorf("expected 2 'test:event' events, got %d", got)
	}
}

// ─────────────────────────────────────────────────────────────
// CartService tests
// ─────────────────────────────────────────────────────────────

func TestCartService_EmitsOnEveryMutation(t *testing.T) {
	m := &service.MockEmitter{}
	s := newCartService(t, m)

	s.Add(domain.LineItem{ProductID: "1", Size: "M", Price: 100, Quantity: 2})
	s.Add(domain.LineItem{ProductID: "1", Size: "M", Price: 100, Quantity: 1})
	view := s.SetQuantity("1", "M", 5)
	if view.Count != 5 || view.Lines != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	s.Remove("1", "M")

	events := m.Named(service.EventCartChanged)
	if len(events) != 4 {
		t.Fatalf("expected 4 cart:changed events, got %d", len(events))
	}
	last := events[3].Data.(service.CartView)
	if last.Lines != 0 || !last.Totals.Total.IsZero() {
		t.Errorf("expected empty cart in last event, got %+v", last)
	}
}

func TestCartService_Totals(t *testing.T) {
	s := newCartService(t, nil)
	s.Add(domain.LineItem{ProductID: "1", Size: "M", Price: 100, Quantity: 1})

	if got := s.Totals(true).Total.String(); got != "140" {
		t.Errorf("expected total 140 with delivery, got %s", got)
	}
	if got := s.Totals(false).Total.String(); got != "100" {
		t.Errorf("expected total 100 without delivery, got %s", got)
	}
}

func TestCartService_NilPricingUsesDefaults(t *testing.T) {
	s := service.NewCartService(cart.New(storage.NewMemory()), nil, nil, nil)

	view := s.Add(domain.LineItem{ProductID: "1", Size: "M", Price: 100, Quantity: 1})
	if got := view.Totals.Total.String(); got != "140" {
		t.Errorf("expected default delivery fee in total 140, got %s", got)
	}
	if got := s.Clear().Lines; got != 0 {
		t.Errorf("expected empty cart after clear, got %d lines", got)
	}
}

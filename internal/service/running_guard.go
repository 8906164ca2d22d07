package service

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runningGuard

// ─────────────────────────────────────────────────────────────
// runningGuard: refuses overlapping writes to the same entity
// ─────────────────────────────────────────────────────────────

// runningGuard ensures only one mutating request per entity key is in
// flight. A second request for a busy key is refused with domain.ErrBusy
// rather than queued.
type runningGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock attempts to mark key as busy. Returns false if it already is.
func (g *runningGuard) TryLock(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[key]; ok {
		return false
	}
	g.running[key] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock releases key. Must be called after TryLock returns true.
func (g *runningGuard) Unlock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, key)
	g.wg.Done()
}

// Busy reports whether key is held.
func (g *runningGuard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[key]
	return ok
}

// Acquire is TryLock returning ErrBusy and the matching release func.
func (g *runningGuard) Acquire(key string) (func(), error) {
	if !g.TryLock(key) {
		return nil, domain.ErrBusy
	}
	return func() { g.Unlock(key) }, nil
}

// WaitAll blocks until every held key is released or ctx is cancelled.
func (g *runningGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

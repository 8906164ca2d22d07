// Package cart is the client-side shopping cart: the only place cart contents change.
//
// Line items are identified by (product id, size). Every mutation rewrites the whole
// snapshot to durable storage before returning; storage failures are logged and the
// in-memory cart stays authoritative.
package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// StorageKey is the durable key holding the JSON array of line items.
const StorageKey = "plangex_store_cart"

const writeTimeout = 5 * time.Second

// Store holds the ordered line items of the cart.
type Store struct {
	mu        sync.Mutex
	items     []domain.LineItem
	kv        domain.KV
	key       string
	logger    *zap.Logger
	listeners []func([]domain.LineItem)
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New returns an empty store persisting to kv. Call Restore to load the snapshot.
func New(kv domain.KV, opts ...Option) *Store {
	s := &Store{kv: kv, key: StorageKey, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive a copy of the items after every mutation.
func (s *Store) OnChange(fn func([]domain.LineItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore replaces the cart with the durable snapshot.
// Missing, unreadable or malformed snapshots yield an empty cart.
func (s *Store) Restore(ctx context.Context) {
	items := s.readSnapshot(ctx)

	s.mu.Lock()
	s.items = items
	snapshot := s.copyLocked()
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Debug("cart restored", zap.Int("lines", len(items)))
	notify(listeners, snapshot)
}

func (s *Store) readSnapshot(ctx context.Context) []domain.LineItem {
	if s.kv == nil {
		return nil
	}
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("cart snapshot unreadable, starting empty", zap.Error(err))
		return nil
	}
	if !found || len(data) == 0 {
		return nil
	}
	var raw []domain.LineItem
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("cart snapshot malformed, starting empty", zap.Error(err))
		return nil
	}

	// merge duplicate keys and drop lines that could not have been written by Add
	items := make([]domain.LineItem, 0, len(raw))
	index := make(map[domain.ItemKey]int, len(raw))
	for _, it := range raw {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := index[it.Key()]; ok {
			items[i].Quantity += it.Quantity
			continue
		}
		index[it.Key()] = len(items)
		items = append(items, it)
	}
	return items
}

// Add merges item into the cart. A matching (product, size) line has its quantity
// increased; otherwise the item is appended. Quantities below 1 count as 1.
func (s *Store) Add(item domain.LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	s.mutate(func(items []domain.LineItem) []domain.LineItem {
		if i := indexOf(items, item.Key()); i >= 0 {
			items[i].Quantity += item.Quantity
			return items
		}
		return append(items, item)
	})
}

// SetQuantity sets the quantity of the matching line. Below 1 the line is removed.
func (s *Store) SetQuantity(productID, size string, quantity int) {
	if quantity < 1 {
		s.Remove(productID, size)
		return
	}
	key := domain.ItemKey{ProductID: productID, Size: size}
	s.mutate(func(items []domain.LineItem) []domain.LineItem {
		if i := indexOf(items, key); i >= 0 {
			items[i].Quantity = quantity
		}
		return items
	})
}

// Remove deletes the matching line if present.
func (s *Store) Remove(productID, size string) {
	key := domain.ItemKey{ProductID: productID, Size: size}
	s.mutate(func(items []domain.LineItem) []domain.LineItem {
		if i := indexOf(items, key); i >= 0 {
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mutate(func([]domain.LineItem) []domain.LineItem { return nil })
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Lines is the number of distinct line items.
func (s *Store) Lines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Count is the total quantity across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Find returns the line for (productID, size).
func (s *Store) Find(productID, size string) (domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.items, domain.ItemKey{ProductID: productID, Size: size}); i >= 0 {
		return s.items[i], true
	}
	return domain.LineItem{}, false
}

// mutate applies fn and writes the snapshot through before releasing the lock,
// so the stored snapshot always matches the order of mutations.
func (s *Store) mutate(fn func([]domain.LineItem) []domain.LineItem) {
	s.mu.Lock()
	s.items = fn(s.items)
	snapshot := s.copyLocked()
	s.persistLocked(snapshot)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, snapshot)
}

func (s *Store) persistLocked(items []domain.LineItem) {
	if s.kv == nil {
		return
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("cart snapshot encode failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("cart snapshot write failed", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) copyLocked() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func indexOf(items []domain.LineItem, key domain.ItemKey) int {
	for i, it := range items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

func notify(listeners []func([]domain.LineItem), items []domain.LineItem) {
	for _, fn := range listeners {
		fn(items)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/backend"
	"storefront/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Account Service: profile, orders and addresses dashboard
// ─────────────────────────────────────────────────────────────

// OrdersPerPage is the page size of the orders tab.
const OrdersPerPage = 10

const (
	resourceProfile   = "profile"
	resourceOrders    = "orders"
	resourceAddresses = "addresses"
	newAddressKey     = "address:new"
)

// AccountBackend is the part of the backend the dashboard needs.
type AccountBackend interface {
	GetProfile(ctx context.Context) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, p domain.Profile) error
	ListOrders(ctx context.Context, page, limit int) (domain.OrderPage, error)
	ListCustomOrders(ctx context.Context, page, limit int) (domain.OrderPage, error)
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	CreateAddress(ctx context.Context, text string, isDefault bool) (*domain.Address, error)
	UpdateAddress(ctx context.Context, id string, patch backend.AddressPatch) error
	DeleteAddress(ctx context.Context, id string) error
}

type Tab string

const (
	TabProfile   Tab = "profile"
	TabOrders    Tab = "orders"
	TabAddresses Tab = "addresses"
	TabContact   Tab = "contact"
)

// resources fetched while a tab is shown.
var tabResources = map[Tab][]string{
	TabProfile:   {resourceProfile},
	TabOrders:    {resourceOrders},
	TabAddresses: {resourceAddresses},
}

type OrderKind string

const (
	OrdersStore  OrderKind = "orders"
	OrdersCustom OrderKind = "custom"
)

// AccountService backs the account dashboard. Reads are sequenced so a
// response overtaken by a newer request is dropped; writes are guarded per
// entity and re-fetch the server state when they fail.
type AccountService struct {
	backend AccountBackend
	emitter EventEmitter
	logger  *zap.Logger
	guard   runningGuard
	seq     *Sequencer
	group   singleflight.Group

	mu        sync.Mutex
	active    Tab
	profile   *domain.Profile
	orders    domain.OrderPage
	addresses []domain.Address
	lastFetch func(context.Context) error
}

func NewAccountService(b AccountBackend, emitter EventEmitter, logger *zap.Logger) *AccountService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &AccountService{
		backend: b,
		emitter: emitter,
		logger:  logger,
		seq:     NewSequencer(),
		active:  TabProfile,
	}
}

// ── Tabs ──────────────────────────────────────────────────

// Switch shows tab. Loads still running for the tab being left are discarded
// when they arrive.
func (s *AccountService) Switch(tab Tab) error {
	switch tab {
	case TabProfile, TabOrders, TabAddresses, TabContact:
	default:
		return domain.NewValidationError("tab", fmt.Sprintf("unknown tab %q", tab))
	}
	s.mu.Lock()
	prev := s.active
	s.active = tab
	s.mu.Unlock()

	if prev != tab {
		for _, r := range tabResources[prev] {
			s.seq.Invalidate(r)
		}
	}
	return nil
}

func (s *AccountService) Active() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Retry re-runs the last read that was issued.
func (s *AccountService) Retry(ctx context.Context) error {
	s.mu.Lock()
	fetch := s.lastFetch
	s.mu.Unlock()
	if fetch == nil {
		return nil
	}
	return fetch(ctx)
}

func (s *AccountService) remember(fetch func(context.Context) error) {
	s.mu.Lock()
	s.lastFetch = fetch
	s.mu.Unlock()
}

// ── Profile ───────────────────────────────────────────────

func (s *AccountService) Profile(ctx context.Context) (*domain.Profile, error) {
	s.remember(func(ctx context.Context) error { _, err := s.Profile(ctx); return err })
	tok := s.seq.Next(resourceProfile)
	p, err := s.backend.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if !s.seq.IsCurrent(tok) {
		return nil, domain.ErrStale
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return p, nil
}

// SaveProfile requires a name and an email.
func (s *AccountService) SaveProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	p.FullName = strings.TrimSpace(p.FullName)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.Email = strings.TrimSpace(p.Email)
	if p.FullName == "" {
		return nil, domain.NewValidationError("full_name", "name is required")
	}
	if p.Email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}

	release, err := s.guard.Acquire(resourceProfile)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.backend.UpdateProfile(ctx, p); err != nil {
		s.writeFailed(ctx, "save profile", err, func(ctx context.Context) error {
			_, err := s.Profile(ctx)
			return err
		})
		return nil, fmt.Errorf("save profile: %w", err)
	}

	// a load issued before the save must not overwrite it
	s.seq.Invalidate(resourceProfile)
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
	s.logger.Info("profile saved")
	return &p, nil
}

// ── Orders ────────────────────────────────────────────────

// Orders loads page of the store or custom orders, OrdersPerPage at a time.
func (s *AccountService) Orders(ctx context.Context, kind OrderKind, page int) (domain.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	s.remember(func(ctx context.Context) error { _, err := s.Orders(ctx, kind, page); return err })
	tok := s.seq.Next(resourceOrders)

	key := fmt.Sprintf("%s:%d", kind, page)
	v, err, _ := s.group.Do(key, func() (any, error) {
		if kind == OrdersCustom {
			return s.backend.ListCustomOrders(ctx, page, OrdersPerPage)
		}
		return s.backend.ListOrders(ctx, page, OrdersPerPage)
	})
	if err != nil {
		return domain.OrderPage{}, err
	}
	if !s.seq.IsCurrent(tok) {
		return domain.OrderPage{}, domain.ErrStale
	}
	result := v.(domain.OrderPage)
	s.mu.Lock()
	s.orders = result
	s.mu.Unlock()
	return result, nil
}

// SearchOrders matches q case-insensitively against the order id, customer
// name, item names and custom instructions.
func SearchOrders(orders []domain.Order, q string) []domain.Order {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return orders
	}
	has := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	var out []domain.Order
	for _, o := range orders {
		match := has(o.ID) || has(o.CustomerName)
		for _, it := range o.Items {
			if match {
				break
			}
			match = has(it.ProductName) || has(it.CustomInstructions)
		}
		if match {
			out = append(out, o)
		}
	}
	return out
}

// ── Addresses ─────────────────────────────────────────────

func (s *AccountService) Addresses(ctx context.Context) ([]domain.Address, error) {
	s.remember(func(ctx context.Context) error { _, err := s.Addresses(ctx); return err })
	return s.loadAddresses(ctx)
}

func (s *AccountService) loadAddresses(ctx context.Context) ([]domain.Address, error) {
	tok := s.seq.Next(resourceAddresses)
	list, err := s.backend.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}
	if !s.seq.IsCurrent(tok) {
		return nil, domain.ErrStale
	}
	s.mu.Lock()
	s.addresses = list
	s.mu.Unlock()
	return list, nil
}

// AddAddress creates an address. The first address becomes the default.
func (s *AccountService) AddAddress(ctx context.Context, text string) (*domain.Address, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("address", "address cannot be empty")
	}
	s.mu.Lock()
	first := len(s.addresses) == 0
	s.mu.Unlock()

	var created *domain.Address
	err := s.writeAddress(ctx, newAddressKey, "add address", func() error {
		var err error
		created, err = s.backend.CreateAddress(ctx, text, first)
		return err
	})
	return created, err
}

func (s *AccountService) SetDefaultAddress(ctx context.Context, id string) error {
	yes := true
	return s.writeAddress(ctx, "address:"+id, "set default address", func() error {
		return s.backend.UpdateAddress(ctx, id, backend.AddressPatch{IsDefault: &yes})
	})
}

func (s *AccountService) UpdateAddress(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.NewValidationError("address", "address cannot be empty")
	}
	return s.writeAddress(ctx, "address:"+id, "update address", func() error {
		return s.backend.UpdateAddress(ctx, id, backend.AddressPatch{Address: &text})
	})
}

func (s *AccountService) DeleteAddress(ctx context.Context, id string) error {
	return s.writeAddress(ctx, "address:"+id, "delete address", func() error {
		return s.backend.DeleteAddress(ctx, id)
	})
}

// writeAddress runs one guarded address write and reloads the list afterwards,
// whether or not the write succeeded.
func (s *AccountService) writeAddress(ctx context.Context, key, op string, write func() error) error {
	release, err := s.guard.Acquire(key)
	if err != nil {
		return err
	}
	defer release()

	reload := func(ctx context.Context) error {
		_, err := s.loadAddresses(ctx)
		return err
	}
	if err := write(); err != nil {
		s.writeFailed(ctx, op, err, reload)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := reload(ctx); err != nil && !errors.Is(err, domain.ErrStale) {
		s.logger.Warn("address reload failed", zap.String("op", op), zap.Error(err))
	}
	return nil
}

// writeFailed reports a failed write and re-fetches the authoritative state.
func (s *AccountService) writeFailed(ctx context.Context, op string, err error, refetch func(context.Context) error) {
	s.logger.Warn("account write failed", zap.String("op", op), zap.Error(err))
	s.emitter.Emit(ctx, EventAccountError, map[string]string{
		"op":    op,
		"kind":  string(domain.Classify(err)),
		"error": err.Error(),
	})
	if rerr := refetch(ctx); rerr != nil && !errors.Is(rerr, domain.ErrStale) {
		s.logger.Warn("re-fetch after failed write failed", zap.String("op", op), zap.Error(rerr))
	}
}

package service_test

import (
	"context"
	"sync"

	"storefront/internal/backend"
	"storefront/internal/catalog"
	"storefront/internal/domain"
)

// fakeBackend implements the backend interfaces of every service. Unset
// hooks succeed with empty results.
type fakeBackend struct {
	mu sync.Mutex

	profile   *domain.Profile
	addresses []domain.Address
	products  catalog.ProductList

	profileErr  error
	updateErr   error
	orderErr    error
	addressErr  error
	productsErr error

	listOrders func(ctx context.Context, page, limit int) (domain.OrderPage, error)
	onUpdate   func(ctx context.Context)

	orders        []domain.OrderPayload
	profileGets   int
	addressGets   int
	productGets   int
	createdAddrs  []string
	defaultFlags  []bool
	patches []backend.AddressPatch
}

func (f *fakeBackend) GetProfile(context.Context) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileGets++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return &domain.Profile{}, nil
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, p domain.Profile) error {
	if f.onUpdate != nil {
		f.onUpdate(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.profile = &p
	return nil
}

func (f *fakeBackend) ListOrders(ctx context.Context, page, limit int) (domain.OrderPage, error) {
	if f.listOrders != nil {
		return f.listOrders(ctx, page, limit)
	}
	return domain.OrderPage{Pagination: domain.Pagination{CurrentPage: page, TotalPages: 1, PerPage: limit}}, nil
}

func (f *fakeBackend) ListCustomOrders(ctx context.Context, page, limit int) (domain.OrderPage, error) {
	return f.ListOrders(ctx, page, limit)
}

func (f *fakeBackend) CreateCustomOrder(_ context.Context, payload domain.OrderPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return f.orderErr
	}
	f.orders = append(f.orders, payload)
	return nil
}

func (f *fakeBackend) ListAddresses(context.Context) ([]domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addressGets++
	return append([]domain.Address(nil), f.addresses...), nil
}

func (f *fakeBackend) CreateAddress(_ context.Context, text string, isDefault bool) (*domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addressErr != nil {
		return nil, f.addressErr
	}
	f.createdAddrs = append(f.createdAddrs, text)
	f.defaultFlags = append(f.defaultFlags, isDefault)
	a := domain.Address{ID: text, Address: text, IsDefault: isDefault}
	f.addresses = append(f.addresses, a)
	return &a, nil
}

func (f *fakeBackend) UpdateAddress(_ context.Context, id string, patch backend.AddressPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addressErr != nil {
		return f.addressErr
	}
	f.patches = append(f.patches, patch)
	return nil
}

func (f *fakeBackend) DeleteAddress(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addressErr != nil {
		return f.addressErr
	}
	for i, a := range f.addresses {
		if a.ID == id {
			f.addresses = append(f.addresses[:i], f.addresses[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) ListProducts(context.Context) (catalog.ProductList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productGets++
	if f.productsErr != nil {
		return catalog.ProductList{}, f.productsErr
	}
	return f.products, nil
}

package app

import (
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/currency"
	"storefront/internal/domain"
	"storefront/internal/service"
)

// ============================================================
// Catalog
// ============================================================

// BrowseProducts returns the filtered and sorted product grid.
func (a *App) BrowseProducts(query catalog.Query, sort string) (service.CatalogView, error) {
	if err := a.ready(); err != nil {
		return service.CatalogView{}, err
	}
	return a.core.Catalog.Browse(a.ctx, query, catalog.SortOrder(sort))
}

// RefreshProducts refetches the catalog, bypassing the cache.
func (a *App) RefreshProducts() error {
	if err := a.ready(); err != nil {
		return err
	}
	_, err := a.core.Catalog.Refresh(a.ctx)
	return err
}

func (a *App) GetProduct(id string) (domain.Product, error) {
	if err := a.ready(); err != nil {
		return domain.Product{}, err
	}
	return a.core.Catalog.Product(a.ctx, id)
}

// ============================================================
// Cart
// ============================================================

func (a *App) AddToCart(productID, size string, quantity int) (service.CartView, error) {
	if err := a.ready(); err != nil {
		return service.CartView{}, err
	}
	return a.core.Catalog.AddToCart(a.ctx, productID, size, quantity)
}

func (a *App) GetCart(includeDelivery bool) (service.CartView, error) {
	if err := a.ready(); err != nil {
		return service.CartView{}, err
	}
	return a.core.Cart.View(includeDelivery), nil
}

func (a *App) UpdateCartQuantity(productID, size string, quantity int) (service.CartView, error) {
	if err := a.ready(); err != nil {
		return service.CartView{}, err
	}
	return a.core.Cart.SetQuantity(productID, size, quantity), nil
}

func (a *App) RemoveFromCart(productID, size string) (service.CartView, error) {
	if err := a.ready(); err != nil {
		return service.CartView{}, err
	}
	return a.core.Cart.Remove(productID, size), nil
}

func (a *App) ClearCart() (service.CartView, error) {
	if err := a.ready(); err != nil {
		return service.CartView{}, err
	}
	return a.core.Cart.Clear(), nil
}

// FormatPrice renders amount in the store currency, e.g. "GHC 12.50".
func (a *App) FormatPrice(amount float64) string {
	return currency.Format(amount)
}

// ============================================================
// Checkout
// ============================================================

// BeginCheckout opens the payment widget for the cart.
func (a *App) BeginCheckout(includeDelivery bool) (checkout.PaymentRequest, error) {
	if err := a.ready(); err != nil {
		return checkout.PaymentRequest{}, err
	}
	return a.core.Checkout.Begin(a.ctx, includeDelivery)
}

// ResolvePayment reports the widget outcome. A failed order submission after
// a successful payment comes back as a reconciliation error.
func (a *App) ResolvePayment(reference string, success bool) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.core.Widget.Resolve(a.ctx, reference, success)
}

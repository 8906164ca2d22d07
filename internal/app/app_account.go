package app

import (
	"math/rand/v2"

	"storefront/internal/domain"
	"storefront/internal/service"
)

// ============================================================
// Session
// ============================================================

func (a *App) SignIn(email, password string) (domain.User, error) {
	if err := a.ready(); err != nil {
		return domain.User{}, err
	}
	sess, err := a.core.Auth.SignIn(a.ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	return sess.User, nil
}

// SignOut ends the session. The cart is kept.
func (a *App) SignOut() error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.core.Auth.SignOut(a.ctx)
}

// CurrentUser returns the signed-in user, or ErrNoSession.
func (a *App) CurrentUser() (domain.User, error) {
	if err := a.ready(); err != nil {
		return domain.User{}, err
	}
	sess, err := a.core.Auth.Session(a.ctx)
	if err != nil {
		return domain.User{}, err
	}
	return sess.User, nil
}

// ============================================================
// Account dashboard
// ============================================================

func (a *App) SwitchAccountTab(tab string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.core.Account.Switch(service.Tab(tab))
}

// RetryAccount re-runs the last dashboard load after an error.
func (a *App) RetryAccount() error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.core.Account.Retry(a.ctx)
}

func (a *App) GetProfile() (*domain.Profile, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return a.core.Account.Profile(a.ctx)
}

func (a *App) SaveProfile(p domain.Profile) (*domain.Profile, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return a.core.Account.SaveProfile(a.ctx, p)
}

// ListOrders loads one page of store ("orders") or custom ("custom") orders,
// filtered by search within the page.
func (a *App) ListOrders(kind string, page int, search string) (domain.OrderPage, error) {
	if err := a.ready(); err != nil {
		return domain.OrderPage{}, err
	}
	result, err := a.core.Account.Orders(a.ctx, service.OrderKind(kind), page)
	if err != nil {
		return domain.OrderPage{}, err
	}
	result.Orders = service.SearchOrders(result.Orders, search)
	return result, nil
}

func (a *App) ListAddresses() ([]domain.Address, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return a.core.Account.Addresses(a.ctx)
}

func (a *App) AddAddress(text string) (*domain.Address, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return a.core.Account.AddAddress(a.ctx, text)
}

func (a *App) UpdateAddress(id, text string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.core.Account.UpdateAddress(a.ctx, id, text)
}

func (a *App) SetDefaultAddress(id string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.core.Account.SetDefaultAddress(a.ctx, id)
}

func (a *App) DeleteAddress(id string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.core.Account.DeleteAddress(a.ctx, id)
}

// ============================================================
// Contact
// ============================================================

func (a *App) QuickMessages() []string {
	return service.QuickMessages()
}

// ContactLink builds the WhatsApp link for message to the configured number.
func (a *App) ContactLink(message string) string {
	phone := service.DefaultWhatsApp
	if a.core != nil && a.core.Config.Contact.WhatsApp != "" {
		phone = a.core.Config.Contact.WhatsApp
	}
	return service.ContactLink(phone, message)
}

// ThankYouMessage picks a random thank-you message for the signed-in user.
func (a *App) ThankYouMessage() string {
	user, _ := a.CurrentUser()
	return service.ThankYouMessage(user, rand.IntN(service.ThankYouTemplates()))
}

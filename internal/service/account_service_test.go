package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service"
)

func newAccount(b *fakeBackend) (*service.AccountService, *service.MockEmitter) {
	m := &service.MockEmitter{}
	return service.NewAccountService(b, m, zap.NewNop()), m
}

func TestAccount_SaveProfileValidates(t *testing.T) {
	s, _ := newAccount(&fakeBackend{})
	ctx := context.Background()

	_, err := s.SaveProfile(ctx, domain.Profile{Email: "a@b.c"})
	var v *domain.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "full_name", v.Field)

	_, err = s.SaveProfile(ctx, domain.Profile{FullName: "Ama"})
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "email", v.Field)

	p, err := s.SaveProfile(ctx, domain.Profile{FullName: " Ama ", Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "Ama", p.FullName)
}

func TestAccount_OverlappingSaveIsBusy(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	b := &fakeBackend{onUpdate: func(context.Context) {
		close(entered)
		<-unblock
	}}
	s, _ := newAccount(b)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.SaveProfile(ctx, domain.Profile{FullName: "Ama", Email: "a@b.c"})
		done <- err
	}()
	<-entered

	_, err := s.SaveProfile(ctx, domain.Profile{FullName: "Kofi", Email: "k@b.c"})
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(unblock)
	require.NoError(t, <-done)
	assert.Equal(t, "Ama", b.profile.FullName)
}

func TestAccount_FailedSaveRefetches(t *testing.T) {
	b := &fakeBackend{
		profile:   &domain.Profile{FullName: "Server Name", Email: "s@b.c"},
		updateErr: &domain.APIError{Status: 500},
	}
	s, m := newAccount(b)

	_, err := s.SaveProfile(context.Background(), domain.Profile{FullName: "Ama", Email: "a@b.c"})
	assert.Equal(t, domain.KindBackend, domain.Classify(err))
	assert.Equal(t, 1, b.profileGets, "authoritative state re-fetched")
	assert.Len(t, m.Named(service.EventAccountError), 1)
}

func TestAccount_StaleOrdersPageDiscarded(t *testing.T) {
	slowEntered := make(chan struct{})
	release := make(chan struct{})
	b := &fakeBackend{}
	b.listOrders = func(_ context.Context, page, limit int) (domain.OrderPage, error) {
		assert.Equal(t, service.OrdersPerPage, limit)
		if page == 1 {
			close(slowEntered)
			<-release
		}
		return domain.OrderPage{
			Orders:     []domain.Order{{ID: strings.Repeat("x", page)}},
			Pagination: domain.Pagination{CurrentPage: page, TotalPages: 3},
		}, nil
	}
	s, _ := newAccount(b)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() {
		_, err := s.Orders(ctx, service.OrdersStore, 1)
		slow <- err
	}()
	<-slowEntered

	page2, err := s.Orders(ctx, service.OrdersStore, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page2.Pagination.CurrentPage)

	close(release)
	assert.ErrorIs(t, <-slow, domain.ErrStale)
}

func TestAccount_SwitchingTabDiscardsLoad(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	b := &fakeBackend{}
	b.listOrders = func(context.Context, int, int) (domain.OrderPage, error) {
		close(entered)
		<-release
		return domain.OrderPage{}, nil
	}
	s, _ := newAccount(b)
	require.NoError(t, s.Switch(service.TabOrders))

	res := make(chan error, 1)
	go func() {
		_, err := s.Orders(context.Background(), service.OrdersCustom, 1)
		res <- err
	}()
	<-entered
	require.NoError(t, s.Switch(service.TabContact))
	close(release)

	assert.ErrorIs(t, <-res, domain.ErrStale)
	assert.Equal(t, service.TabContact, s.Active())
	assert.Error(t, s.Switch("settings"))
}

func TestAccount_RetryRepeatsLastRead(t *testing.T) {
	b := &fakeBackend{profileErr: errors.New("timeout")}
	s, _ := newAccount(b)
	ctx := context.Background()

	_, err := s.Profile(ctx)
	require.Error(t, err)

	b.profileErr = nil
	require.NoError(t, s.Retry(ctx))
	assert.Equal(t, 2, b.profileGets)
}

func TestAccount_Addresses(t *testing.T) {
	b := &fakeBackend{}
	s, _ := newAccount(b)
	ctx := context.Background()

	_, err := s.AddAddress(ctx, "   ")
	assert.Equal(t, domain.KindValidation, domain.Classify(err))

	_, err = s.AddAddress(ctx, "12 Oxford St, Accra")
	require.NoError(t, err)
	_, err = s.AddAddress(ctx, "4 Ring Rd, Kumasi")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, b.defaultFlags, "only the first address is default")

	require.NoError(t, s.SetDefaultAddress(ctx, "4 Ring Rd, Kumasi"))
	require.Len(t, b.patches, 1)
	assert.True(t, *b.patches[0].IsDefault)
	assert.Nil(t, b.patches[0].Address)

	assert.Error(t, s.UpdateAddress(ctx, "x", ""))
	require.NoError(t, s.DeleteAddress(ctx, "12 Oxford St, Accra"))
	list, err := s.Addresses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAccount_FailedAddressWriteRefetches(t *testing.T) {
	b := &fakeBackend{addresses: []domain.Address{{ID: "a1", Address: "Home"}}}
	s, m := newAccount(b)
	b.addressErr = &domain.APIError{Status: 404, Message: "address not found"}

	err := s.DeleteAddress(context.Background(), "a1")
	assert.Equal(t, domain.KindBackend, domain.Classify(err))
	assert.Equal(t, 1, b.addressGets)
	assert.Len(t, m.Named(service.EventAccountError), 1)
}

func TestSearchOrders(t *testing.T) {
	orders := []domain.Order{
		{ID: "ORD-1", CustomerName: "Ama", Items: []domain.OrderItem{{ProductName: "Hoodie"}}},
		{ID: "ORD-2", CustomerName: "Kofi", Items: []domain.OrderItem{{ProductName: "Tee", CustomInstructions: "gold print"}}},
	}
	assert.Len(t, service.SearchOrders(orders, ""), 2)
	assert.Equal(t, "ORD-2", service.SearchOrders(orders, "GOLD")[0].ID)
	assert.Equal(t, "ORD-1", service.SearchOrders(orders, "hood")[0].ID)
	assert.Equal(t, "ORD-2", service.SearchOrders(orders, "kofi")[0].ID)
	assert.Empty(t, service.SearchOrders(orders, "zzz"))
}

func TestContactLink(t *testing.T) {
	assert.Equal(t,
		"https://wa.me/233556664343?text=Hello%20PlangeX%2C%20I%20need%20assistance.",
		service.ContactLink(service.DefaultWhatsApp, ""))
	assert.Equal(t,
		"https://wa.me/233556664343?text=Can%20you%20tell%20me%20about%20shipping%3F",
		service.ContactLink(service.DefaultWhatsApp, service.QuickMessages()[3]))
}

func TestThankYouMessage(t *testing.T) {
	msg := service.ThankYouMessage(domain.User{Email: "ama.mensah@example.com"}, 0)
	assert.True(t, strings.HasPrefix(msg, "Thank you for your order, Ama.mensah "), msg)

	msg = service.ThankYouMessage(domain.User{Username: "kofi", Email: "k@x.com"}, 1)
	assert.True(t, strings.HasPrefix(msg, "Kofi, thank you"), msg)

	n := service.ThankYouTemplates()
	assert.Equal(t, service.ThankYouMessage(domain.User{Username: "a"}, -1), service.ThankYouMessage(domain.User{Username: "a"}, n-1))
}

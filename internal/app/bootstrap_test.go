package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/currency"
	"storefront/internal/domain"
	"storefront/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Catalog.RefreshCron = ""
	return cfg
}

func TestBootstrap_CartSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	core, err := Bootstrap(ctx, cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	core.Cart.Add(domain.LineItem{ProductID: "7", Name: "Tee", Price: 80, Size: "M", Quantity: 2})
	core.Close()

	core, err = Bootstrap(ctx, cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer core.Close()
	assert.Equal(t, 2, core.Cart.Store().Count())
}

func TestBootstrap_ReloadAppliesPricing(t *testing.T) {
	cfg := testConfig(t)
	emitter := &service.MockEmitter{}
	core, err := Bootstrap(context.Background(), cfg, zap.NewNop(), emitter)
	require.NoError(t, err)
	defer core.Close()
	defer currency.SetLabels("GHC", "₵")

	core.Cart.Add(domain.LineItem{ProductID: "7", Name: "Tee", Price: 100, Size: "M", Quantity: 1})
	assert.Equal(t, "40", core.Cart.Totals(true).DeliveryFee.String())

	next := testConfig(t)
	next.Checkout.BaseDeliveryFee = 25
	next.Checkout.CurrencyLabel = "USD"
	next.Checkout.CurrencySymbol = "$"
	core.Reload(next)

	assert.Equal(t, "25", core.Cart.Totals(true).DeliveryFee.String())
	assert.Equal(t, "USD 1.00", currency.Format(1))
}

func TestBootstrap_UnsupportedDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "cassandra"
	_, err := Bootstrap(context.Background(), cfg, zap.NewNop(), nil)
	assert.Error(t, err)
}

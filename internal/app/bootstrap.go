package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/currency"
	"storefront/internal/payment"
	"storefront/internal/secret"
	"storefront/internal/service"
	"storefront/internal/storage"
)

// Core is the wired storefront, shared by the desktop app and the headless modes.
type Core struct {
	Config  *config.Config
	Logger  *zap.Logger
	Emitter service.EventEmitter

	Store   storage.Store
	Auth    auth.Provider
	Backend *backend.Client
	Pricing *checkout.PricingHolder
	Widget  *payment.EventWidget

	Cart     *service.CartService
	Catalog  *service.CatalogService
	Checkout *service.CheckoutService
	Account  *service.AccountService
	Design   *service.DesignService
	Windows  *service.WindowSettingsService

	redis *redis.Client
}

// Bootstrap opens storage, restores the cart and builds every service.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger, emitter service.EventEmitter) (*Core, error) {
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	currency.SetLabels(cfg.Checkout.CurrencyLabel, cfg.Checkout.CurrencySymbol)
	c := &Core{
		Config:  cfg,
		Logger:  logger,
		Emitter: emitter,
		Store:   store,
		Pricing: checkout.NewPricingHolder(checkout.PricingFrom(cfg.Checkout)),
		Windows: service.NewWindowSettingsService(store),
	}

	c.Auth = auth.NewGoTrue(cfg.Auth, secret.Default(store), auth.WithLogger(logger.Named("auth")))
	c.Backend = backend.New(cfg.API, c.Auth, backend.WithLogger(logger.Named("backend")))

	var cache catalog.Cache
	if cfg.Catalog.RedisAddr != "" {
		c.redis = redis.NewClient(&redis.Options{Addr: cfg.Catalog.RedisAddr})
		if err := c.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("catalog cache unavailable, fetching directly", zap.String("addr", cfg.Catalog.RedisAddr), zap.Error(err))
			c.redis.Close()
			c.redis = nil
		} else {
			cache = catalog.NewRedisCache(c.redis, cfg.Catalog.CacheTTL)
		}
	}

	carts := cart.New(store, cart.WithLogger(logger.Named("cart")))
	carts.Restore(ctx)

	c.Widget = payment.NewEventWidget(emitter, logger.Named("payment"))
	c.Cart = service.NewCartService(carts, c.Pricing, emitter, logger.Named("cart"))
	c.Catalog = service.NewCatalogService(c.Backend, cache, c.Cart, emitter, logger.Named("catalog"))
	c.Checkout = service.NewCheckoutService(c.Cart, c.Backend, c.Widget, c.Auth, c.Pricing, emitter, logger.Named("checkout"))
	c.Account = service.NewAccountService(c.Backend, emitter, logger.Named("account"))
	c.Design = service.NewDesignService(cfg.Designer, emitter, logger.Named("design"))
	return c, nil
}

// Start runs the background jobs: catalog refresh and config reload.
func (c *Core) Start(ctx context.Context, configPath string) {
	if err := c.Catalog.StartRefresh(ctx, c.Config.Catalog.RefreshCron); err != nil {
		c.Logger.Warn("catalog refresh not scheduled", zap.Error(err))
	}
	if configPath == "" {
		return
	}
	if err := config.Watch(ctx, configPath, c.Logger.Named("config"), c.Reload); err != nil {
		c.Logger.Warn("config watch disabled", zap.Error(err))
	}
}

// Reload applies the parts of cfg that can change while running.
func (c *Core) Reload(cfg *config.Config) {
	c.Pricing.Store(checkout.PricingFrom(cfg.Checkout))
	currency.SetLabels(cfg.Checkout.CurrencyLabel, cfg.Checkout.CurrencySymbol)
	c.Design.SetProduct(cfg.Designer.ProductName)
	c.Logger.Info("config reloaded",
		zap.Float64("free_shipping_threshold", cfg.Checkout.FreeShippingThreshold),
		zap.Float64("base_delivery_fee", cfg.Checkout.BaseDeliveryFee))
}

func (c *Core) Close() {
	c.Catalog.Stop()
	if c.redis != nil {
		c.redis.Close()
	}
	if err := c.Store.Close(); err != nil {
		c.Logger.Warn("close storage", zap.Error(err))
	}
	c.Logger.Sync()
}

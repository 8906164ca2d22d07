// Package config loads the storefront configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STOREFRONT_"

// Config is the top-level storefront configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Designer DesignerConfig `yaml:"designer"`
	HTTP     HTTPConfig     `yaml:"http"`
	MCP      MCPConfig      `yaml:"mcp"`
	Contact  ContactConfig  `yaml:"contact"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig points at the remote REST backend.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	Breaker      BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

type AuthConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

// StorageConfig selects where the cart snapshot and session are kept.
type StorageConfig struct {
	Driver   string `yaml:"driver"` // sqlite | postgres | mysql | mongo | redis
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"` // mongo only
	DataDir  string `yaml:"data_dir"`
}

type CheckoutConfig struct {
	FreeShippingThreshold float64 `yaml:"free_shipping_threshold"`
	BaseDeliveryFee       float64 `yaml:"base_delivery_fee"`
	Currency              string  `yaml:"currency"`
	CurrencyLabel         string  `yaml:"currency_label"`
	CurrencySymbol        string  `yaml:"currency_symbol"`
	MinorUnits            int64   `yaml:"minor_units"`
}

type CatalogConfig struct {
	RefreshCron string        `yaml:"refresh_cron"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	RedisAddr   string        `yaml:"redis_addr"`
}

type DesignerConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	HistoryMode  string `yaml:"history_mode"`  // dual | unified
	HistoryLimit int    `yaml:"history_limit"` // 0 keeps every entry
	ProductName  string `yaml:"product_name"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

type MCPConfig struct {
	RequireApproval bool   `yaml:"require_approval"`
	Listen          string `yaml:"listen"` // streamable HTTP address inside the desktop app; empty disables
}

type ContactConfig struct {
	WhatsApp string `yaml:"whatsapp"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:3000/api/users",
			Timeout:      30 * time.Second,
			MaxBodyBytes: 5 * 1024 * 1024,
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Storage: StorageConfig{
			Driver:  "sqlite",
			DataDir: filepath.Join(homeDir, ".local", "share", "storefront"),
		},
		Checkout: CheckoutConfig{
			FreeShippingThreshold: 500,
			BaseDeliveryFee:       40,
			Currency:              "GHS",
			CurrencyLabel:         "GHC",
			CurrencySymbol:        "₵",
			MinorUnits:            100,
		},
		Catalog: CatalogConfig{
			RefreshCron: "@every 15m",
			CacheTTL:    15 * time.Minute,
		},
		Designer: DesignerConfig{
			Width:       800,
			Height:      600,
			HistoryMode: "dual",
			ProductName: "plangex",
		},
		HTTP:    HTTPConfig{Listen: "127.0.0.1:8787"},
		MCP:     MCPConfig{RequireApproval: true},
		Contact: ContactConfig{WhatsApp: "+233556664343"},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// DefaultPath is ~/.config/storefront/config.yaml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "storefront", "config.yaml")
}

// Load reads path over Default and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *float64) {
		if v, ok := lookup(envPrefix + name); ok {
			if f, err := cast.ToFloat64E(v); err == nil {
				*dst = f
			}
		}
	}
	str("API_BASE_URL", &c.API.BaseURL)
	str("AUTH_URL", &c.Auth.URL)
	str("AUTH_ANON_KEY", &c.Auth.AnonKey)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_DSN", &c.Storage.DSN)
	str("DATA_DIR", &c.Storage.DataDir)
	str("HTTP_LISTEN", &c.HTTP.Listen)
	str("MCP_LISTEN", &c.MCP.Listen)
	str("LOG_LEVEL", &c.Log.Level)
	str("REDIS_ADDR", &c.Catalog.RedisAddr)
	num("FREE_SHIPPING_THRESHOLD", &c.Checkout.FreeShippingThreshold)
	num("BASE_DELIVERY_FEE", &c.Checkout.BaseDeliveryFee)
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for sqlite")
		}
	case "postgres", "mysql", "mongo", "redis":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Checkout.FreeShippingThreshold < 0 || c.Checkout.BaseDeliveryFee < 0 {
		return fmt.Errorf("checkout amounts must be >= 0")
	}
	if c.Checkout.Currency == "" {
		return fmt.Errorf("checkout.currency is required")
	}
	if c.Checkout.MinorUnits <= 0 {
		return fmt.Errorf("checkout.minor_units must be > 0")
	}
	if c.Designer.Width <= 0 || c.Designer.Height <= 0 {
		return fmt.Errorf("designer canvas size must be > 0")
	}
	switch strings.ToLower(c.Designer.HistoryMode) {
	case "dual", "unified":
	default:
		return fmt.Errorf("designer.history_mode must be dual or unified")
	}
	return nil
}

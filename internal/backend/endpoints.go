package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cast"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Profile
// ─────────────────────────────────────────────────────────────

func (c *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	data, err := c.do(ctx, http.MethodGet, "account-profile", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return parseProfile(data)
}

// UpdateProfile sends name, phone and email. The image is managed elsewhere.
func (c *Client) UpdateProfile(ctx context.Context, p domain.Profile) error {
	body := map[string]string{
		"full_name":    p.FullName,
		"phone_number": p.PhoneNumber,
		"email":        p.Email,
	}
	if _, err := c.do(ctx, http.MethodPut, "account-profile", nil, body); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func parseProfile(data []byte) (*domain.Profile, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.ParseError{Kind: "profile", Reason: err.Error()}
	}
	if inner, ok := raw["profile"].(map[string]any); ok {
		raw = inner
	}
	return &domain.Profile{
		FullName:     cast.ToString(raw["full_name"]),
		PhoneNumber:  cast.ToString(raw["phone_number"]),
		Email:        cast.ToString(raw["email"]),
		ProfileImage: cast.ToString(raw["profile_image"]),
	}, nil
}

// ─────────────────────────────────────────────────────────────
// Orders
// ─────────────────────────────────────────────────────────────

func pageQuery(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
}

func (c *Client) ListOrders(ctx context.Context, page, limit int) (domain.OrderPage, error) {
	data, err := c.do(ctx, http.MethodGet, "orders", pageQuery(page, limit), nil)
	if err != nil {
		return domain.OrderPage{}, fmt.Errorf("list orders: %w", err)
	}
	return ParseOrders(data)
}

func (c *Client) ListCustomOrders(ctx context.Context, page, limit int) (domain.OrderPage, error) {
	data, err := c.do(ctx, http.MethodGet, "custom-orders", pageQuery(page, limit), nil)
	if err != nil {
		return domain.OrderPage{}, fmt.Errorf("list custom orders: %w", err)
	}
	return ParseOrders(data)
}

// CreateCustomOrder submits the order placed after a successful payment.
func (c *Client) CreateCustomOrder(ctx context.Context, payload domain.OrderPayload) error {
	if _, err := c.do(ctx, http.MethodPost, "create-custom-order", nil, payload); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────
// Addresses
// ─────────────────────────────────────────────────────────────

func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	data, err := c.do(ctx, http.MethodGet, "user-address", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return ParseAddresses(data)
}

// CreateAddress returns the created address when the backend echoes it.
func (c *Client) CreateAddress(ctx context.Context, text string, isDefault bool) (*domain.Address, error) {
	body := map[string]any{"address": text, "is_default": isDefault}
	data, err := c.do(ctx, http.MethodPost, "user-address", nil, body)
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	addr := &domain.Address{Address: text, IsDefault: isDefault}
	var raw map[string]any
	if json.Unmarshal(data, &raw) == nil {
		for _, k := range []string{"address", "profile", "data"} {
			if obj, ok := raw[k].(map[string]any); ok {
				addr.ID = cast.ToString(obj["id"])
				break
			}
		}
		if addr.ID == "" {
			addr.ID = cast.ToString(raw["id"])
		}
	}
	return addr, nil
}

// AddressPatch carries the fields to change; nil fields are left alone.
type AddressPatch struct {
	Address   *string `json:"address,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

func (c *Client) UpdateAddress(ctx context.Context, id string, patch AddressPatch) error {
	if _, err := c.do(ctx, http.MethodPatch, "user-address/"+url.PathEscape(id), nil, patch); err != nil {
		return fmt.Errorf("update address %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "user-address/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete address %s: %w", id, err)
	}
	return nil
}

// ParseAddresses accepts {addresses: [...]}, {data: [...]} or a bare array.
func ParseAddresses(data []byte) ([]domain.Address, error) {
	records, err := extractList(data, "addresses", "data")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Address, 0, len(records))
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.Address{
			ID:        cast.ToString(obj["id"]),
			Address:   cast.ToString(firstOf(obj, "address", "full_address")),
			IsDefault: cast.ToBool(obj["is_default"]),
		})
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────
// Products
// ─────────────────────────────────────────────────────────────

func (c *Client) ListProducts(ctx context.Context) (catalog.ProductList, error) {
	data, err := c.do(ctx, http.MethodGet, "users-products", nil, nil)
	if err != nil {
		return catalog.ProductList{}, fmt.Errorf("list products: %w", err)
	}
	return catalog.ParseProducts(data)
}

// Package checkout computes order totals, gates payment on the customer profile
// and builds the order payload submitted after a successful payment.
package checkout

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// ErrProfileIncomplete means the profile lacks a name or phone number.
var ErrProfileIncomplete = errors.New("please complete your profile (full name and phone number) before making payment")

// Pricing holds the adjustable checkout amounts.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	BaseDeliveryFee       decimal.Decimal
	Currency              string
	MinorUnits            int64
}

func DefaultPricing() Pricing {
	return PricingFrom(config.Default().Checkout)
}

func PricingFrom(c config.CheckoutConfig) Pricing {
	minor := c.MinorUnits
	if minor <= 0 {
		minor = 100
	}
	return Pricing{
		FreeShippingThreshold: decimal.NewFromFloat(c.FreeShippingThreshold),
		BaseDeliveryFee:       decimal.NewFromFloat(c.BaseDeliveryFee),
		Currency:              c.Currency,
		MinorUnits:            minor,
	}
}

// PricingHolder lets the config watcher swap pricing while checkouts read it.
type PricingHolder struct {
	p atomic.Pointer[Pricing]
}

func NewPricingHolder(p Pricing) *PricingHolder {
	h := &PricingHolder{}
	h.Store(p)
	return h
}

func (h *PricingHolder) Load() Pricing  { return *h.p.Load() }
func (h *PricingHolder) Store(p Pricing) { h.p.Store(&p) }

// Totals is the derived price breakdown of a cart.
type Totals struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	DeliveryFee         decimal.Decimal `json:"deliveryFee"`
	Total               decimal.Decimal `json:"total"`
	FreeShippingApplied bool            `json:"freeShippingApplied"`
	// AmountToFreeShipping is what must be added to qualify; zero once qualified.
	AmountToFreeShipping decimal.Decimal `json:"amountToFreeShipping"`
	ItemCount            int             `json:"itemCount"`
	Units                int             `json:"units"`
}

// ComputeTotals derives the breakdown. Delivery is free when the subtotal is
// strictly above the threshold or when delivery is not included.
func ComputeTotals(items []domain.LineItem, includeDelivery bool, p Pricing) Totals {
	subtotal := decimal.Zero
	units := 0
	for _, it := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		units += it.Quantity
	}

	eligible := subtotal.GreaterThan(p.FreeShippingThreshold)
	fee := decimal.Zero
	if includeDelivery && !eligible {
		fee = p.BaseDeliveryFee
	}

	remaining := decimal.Zero
	if !eligible {
		remaining = p.FreeShippingThreshold.Sub(subtotal)
	}

	return Totals{
		Subtotal:             subtotal,
		DeliveryFee:          fee,
		Total:                subtotal.Add(fee),
		FreeShippingApplied:  eligible && includeDelivery,
		AmountToFreeShipping: remaining,
		ItemCount:            len(items),
		Units:                units,
	}
}

// ProfileComplete is the payment gate: a non-empty name and phone number.
func ProfileComplete(p *domain.Profile) bool {
	return p != nil && p.Complete()
}

// CheckGate returns ErrProfileIncomplete when the gate is closed.
func CheckGate(p *domain.Profile) error {
	if !ProfileComplete(p) {
		return ErrProfileIncomplete
	}
	return nil
}

// BuildPayload maps the cart and totals onto the create-custom-order body.
func BuildPayload(items []domain.LineItem, t Totals, includeDelivery bool, profile *domain.Profile, reference string) domain.OrderPayload {
	lines := make([]domain.OrderPayloadItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderPayloadItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Size:      it.Size,
			Quantity:  it.Quantity,
			ItemTotal: it.LineTotal(),
		})
	}

	payload := domain.OrderPayload{
		Items:               lines,
		OrderTotal:          t.Total.InexactFloat64(),
		ItemCount:           len(items),
		DeliveryIncluded:    includeDelivery,
		DeliveryPaid:        includeDelivery,
		FreeShippingApplied: t.FreeShippingApplied,
		PaymentReference:    reference,
	}
	if includeDelivery {
		payload.DeliveryFee = t.DeliveryFee.InexactFloat64()
	}
	if profile != nil {
		payload.CustomerName = strings.TrimSpace(profile.FullName)
		payload.CustomerPhone = strings.TrimSpace(profile.PhoneNumber)
	}
	return payload
}

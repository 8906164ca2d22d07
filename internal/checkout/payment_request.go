package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// PaymentRequest is what the payment widget is opened with.
type PaymentRequest struct {
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	Reference   string `json:"reference"`
}

// NewPaymentRequest fixes the amount at the time the widget is opened.
func NewPaymentRequest(t Totals, p Pricing, profile *domain.Profile) PaymentRequest {
	req := PaymentRequest{
		AmountMinor: ToMinor(t.Total, p.MinorUnits),
		Currency:    p.Currency,
		Reference:   NewReference(),
	}
	if profile != nil {
		req.Email = strings.TrimSpace(profile.Email)
	}
	return req
}

// ToMinor converts amount to minor units, rounded half away from zero.
func ToMinor(amount decimal.Decimal, minorUnits int64) int64 {
	return amount.Mul(decimal.NewFromInt(minorUnits)).Round(0).IntPart()
}

// NewReference returns a unique payment reference.
func NewReference() string {
	return "SF-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

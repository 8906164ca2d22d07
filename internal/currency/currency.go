// Package currency formats amounts for display in the store currency.
package currency

import (
	"math"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type labels struct {
	code   string
	symbol string
}

var current atomic.Pointer[labels]

func init() {
	current.Store(&labels{code: "GHC", symbol: "₵"})
}

// SetLabels replaces the display code ("GHC") and symbol ("₵").
func SetLabels(code, symbol string) {
	if code == "" || symbol == "" {
		return
	}
	current.Store(&labels{code: code, symbol: symbol})
}

// Format renders amount as "GHC 12.50". Invalid or non-finite input renders as zero.
func Format(amount any) string {
	return current.Load().code + " " + ToDecimal(amount).StringFixed(2)
}

// FormatSymbol renders amount as "₵12.50".
func FormatSymbol(amount any) string {
	return current.Load().symbol + ToDecimal(amount).StringFixed(2)
}

// FormatDecimal renders d as "GHC 12.50".
func FormatDecimal(d decimal.Decimal) string {
	return current.Load().code + " " + d.StringFixed(2)
}

// ToDecimal coerces amount to a decimal, degenerating to zero.
func ToDecimal(amount any) decimal.Decimal {
	switch v := amount.(type) {
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	}
	f, err := cast.ToFloat64E(amount)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

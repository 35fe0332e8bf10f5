package common

import (
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Placeholder is shown in place of an unknown value.
const Placeholder = "—"

// FormatUSD renders an amount as US dollars, e.g. "$1,500.00".
func FormatUSD(v float64) string {
	cur := money.GetCurrency(money.USD)
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatUSDPtr is FormatUSD for optional amounts.
func FormatUSDPtr(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatUSD(*v)
}

// FormatNumber renders a quantity without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

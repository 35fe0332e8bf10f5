package interfaces

import (
	"context"

	"github.com/bobmcallan/stockview/internal/models"
)

// Notifier receives user-visible notifications (toasts).
type Notifier interface {
	Push(n models.Notification) models.Notification
}

// PriceLookup resolves last-known closes for a set of tickers.
// Failed lookups are recorded as nil, never as an error for the whole set.
type PriceLookup interface {
	Refresh(ctx context.Context, tickers []string) models.PriceTable
}

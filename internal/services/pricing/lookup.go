// Package pricing resolves last-known closes for portfolio tickers.
package pricing

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/interfaces"
	"github.com/bobmcallan/stockview/internal/models"
)

// DefaultConcurrency bounds in-flight lookups when none is configured.
const DefaultConcurrency = 4

// Lookup implements interfaces.PriceLookup over the backend /stock endpoint.
type Lookup struct {
	client      interfaces.StockDataClient
	logger      *common.Logger
	concurrency int
}

// NewLookup creates a price lookup. concurrency <= 0 selects DefaultConcurrency.
func NewLookup(client interfaces.StockDataClient, logger *common.Logger, concurrency int) *Lookup {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Lookup{client: client, logger: logger, concurrency: concurrency}
}

// LastClose fetches one year of daily candles and returns the final close.
// Any failure or an empty series yields nil.
func (l *Lookup) LastClose(ctx context.Context, ticker string) *float64 {
	series, err := l.client.GetStock(ctx, ticker, models.Range1Y, models.Interval1D)
	if err != nil {
		l.logger.Warn().Err(err).Str("ticker", ticker).Msg("Last close lookup failed")
		return nil
	}
	return series.LastClose()
}

// Refresh looks up every distinct ticker concurrently and returns a new table
// once all lookups have settled. Each ticker in the input has an entry.
func (l *Lookup) Refresh(ctx context.Context, tickers []string) models.PriceTable {
	table := make(models.PriceTable, len(tickers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for _, ticker := range distinct(tickers) {
		ticker := ticker // per-iteration copy (go.mod targets go1.21 loop semantics)
		g.Go(func() error {
			last := l.LastClose(gctx, ticker)
			mu.Lock()
			table[ticker] = last
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	l.logger.Debug().Int("tickers", len(table)).Msg("Price table refreshed")
	return table
}

func distinct(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SameTickers reports whether the table already holds exactly this ticker set.
func SameTickers(table models.PriceTable, tickers []string) bool {
	set := distinct(tickers)
	if table == nil || len(table) != len(set) {
		return false
	}
	for _, t := range set {
		if _, ok := table[t]; !ok {
			return false
		}
	}
	return true
}

package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockview/internal/models"
)

type fakeStockClient struct {
	mu       sync.Mutex
	closes   map[string][]float64
	fail     map[string]bool
	delay    time.Duration
	calls    map[string]int
	inFlight int32
	peak     int32
}

func (f *fakeStockClient) GetStock(ctx context.Context, ticker string, rng models.Range, interval models.Interval) (*models.StockSeries, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}

	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[ticker]++
	f.mu.Unlock()

	if rng != models.Range1Y || interval != models.Interval1D {
		return nil, errors.New("unexpected range/interval")
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[ticker] {
		return nil, errors.New("boom")
	}
	series := &models.StockSeries{Ticker: ticker, Interval: "1d"}
	for _, c := range f.closes[ticker] {
		series.Data = append(series.Data, models.Candle{Close: c})
	}
	return series, nil
}

func (f *fakeStockClient) GetIndicators(ctx context.Context, ticker string, rng models.Range, interval models.Interval) (*models.IndicatorResponse, error) {
	return nil, errors.New("not used")
}

func TestRefresh_RecordsNilForFailures(t *testing.T) {
	client := &fakeStockClient{
		closes: map[string][]float64{"AAPL": {170, 175, 180}, "EMPTY": nil},
		fail:   map[string]bool{"BAD": true},
	}
	lookup := NewLookup(client, nil, 2)

	table := lookup.Refresh(context.Background(), []string{"AAPL", "BAD", "EMPTY"})

	require.Len(t, table, 3)
	require.NotNil(t, table["AAPL"])
	assert.Equal(t, 180.0, *table["AAPL"])
	assert.Contains(t, table, "BAD")
	assert.Nil(t, table["BAD"])
	assert.Contains(t, table, "EMPTY")
	assert.Nil(t, table["EMPTY"])
}

func TestRefresh_OneRequestPerDistinctTicker(t *testing.T) {
	client := &fakeStockClient{closes: map[string][]float64{"AAPL": {1}, "MSFT": {2}}}
	lookup := NewLookup(client, nil, 0)

	table := lookup.Refresh(context.Background(), []string{"AAPL", "MSFT", "AAPL"})

	assert.Len(t, table, 2)
	assert.Equal(t, map[string]int{"AAPL": 1, "MSFT": 1}, client.calls)
}

func TestRefresh_BoundedConcurrency(t *testing.T) {
	client := &fakeStockClient{delay: 20 * time.Millisecond}
	lookup := NewLookup(client, nil, 2)

	tickers := []string{"A", "B", "C", "D", "E", "F"}
	table := lookup.Refresh(context.Background(), tickers)

	assert.Len(t, table, len(tickers))
	assert.LessOrEqual(t, atomic.LoadInt32(&client.peak), int32(2))
}

func TestRefresh_EmptyInput(t *testing.T) {
	lookup := NewLookup(&fakeStockClient{}, nil, 1)
	table := lookup.Refresh(context.Background(), nil)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestSameTickers(t *testing.T) {
	table := models.PriceTable{"AAPL": models.Float(1), "MSFT": nil}

	assert.True(t, SameTickers(table, []string{"MSFT", "AAPL", "AAPL"}))
	assert.False(t, SameTickers(table, []string{"AAPL"}))
	assert.False(t, SameTickers(table, []string{"AAPL", "TSLA"}))
	assert.False(t, SameTickers(nil, nil))
}

// Package market loads candles and indicators for the chart view.
package market

import (
	"context"
	"fmt"

	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/interfaces"
	"github.com/bobmcallan/stockview/internal/models"
)

// Query selects the series to load.
type Query struct {
	Ticker   string          `json:"ticker"`
	Range    models.Range    `json:"range"`
	Interval models.Interval `json:"interval"`
}

// ParseQuery validates raw query inputs. Empty range or interval select
// the defaults.
func ParseQuery(ticker, rng, interval string) (Query, error) {
	t := models.NormalizeTicker(ticker)
	if t == "" {
		return Query{}, fmt.Errorf("ticker is required")
	}
	r, err := models.ParseRange(rng)
	if err != nil {
		return Query{}, err
	}
	i, err := models.ParseInterval(interval)
	if err != nil {
		return Query{}, err
	}
	return Query{Ticker: t, Range: r, Interval: i}, nil
}

// View is everything the price and RSI charts need.
type View struct {
	Query    Query                         `json:"query"`
	Candles  []models.Candle               `json:"candles"`
	Overlays map[string][]models.LinePoint `json:"overlays"`
	RSI      []models.LinePoint            `json:"rsi"`
}

// LastClose returns the most recent close, or nil without candles.
func (v *View) LastClose() *float64 {
	if v == nil || len(v.Candles) == 0 {
		return nil
	}
	c := v.Candles[len(v.Candles)-1].Close
	return &c
}

// Service implements the market view loader.
type Service struct {
	client interfaces.StockDataClient
	logger *common.Logger
}

// NewService creates a market service.
func NewService(client interfaces.StockDataClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{client: client, logger: logger}
}

// Load fetches candles, then indicators, and maps them into chart series.
func (s *Service) Load(ctx context.Context, q Query) (*View, error) {
	series, err := s.client.GetStock(ctx, q.Ticker, q.Range, q.Interval)
	if err != nil {
		return nil, fmt.Errorf("load candles for %s: %w", q.Ticker, err)
	}

	ind, err := s.client.GetIndicators(ctx, q.Ticker, q.Range, q.Interval)
	if err != nil {
		return nil, fmt.Errorf("load indicators for %s: %w", q.Ticker, err)
	}

	view := &View{
		Query:    q,
		Candles:  series.Data,
		Overlays: MapOverlays(ind),
		RSI:      MapRSI(ind),
	}
	if view.Candles == nil {
		view.Candles = []models.Candle{}
	}

	s.logger.Debug().
		Str("ticker", q.Ticker).
		Str("range", string(q.Range)).
		Str("interval", string(q.Interval)).
		Int("candles", len(view.Candles)).
		Int("rsi", len(view.RSI)).
		Msg("Market view loaded")

	return view, nil
}

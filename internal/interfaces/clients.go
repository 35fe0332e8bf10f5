// Package interfaces defines service contracts for stockview
package interfaces

import (
	"context"

	"github.com/bobmcallan/stockview/internal/models"
)

// StockDataClient provides candle and indicator data from the backend.
type StockDataClient interface {
	// GetStock retrieves candles for a ticker
	GetStock(ctx context.Context, ticker string, rng models.Range, interval models.Interval) (*models.StockSeries, error)

	// GetIndicators retrieves SMA/EMA/Bollinger/RSI series for a ticker
	GetIndicators(ctx context.Context, ticker string, rng models.Range, interval models.Interval) (*models.IndicatorResponse, error)
}

// PortfolioClient provides portfolio persistence on the backend.
type PortfolioClient interface {
	CreatePortfolio(ctx context.Context, name string) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error)
	AddHolding(ctx context.Context, portfolioID int64, h models.NewHolding) (*models.Portfolio, error)
	UpdateHolding(ctx context.Context, portfolioID, holdingID int64, patch models.HoldingPatch) (*models.Portfolio, error)
	DeleteHolding(ctx context.Context, portfolioID, holdingID int64) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, portfolioID int64) (*models.DeleteResult, error)

	// GetSummary retrieves the server-aggregated positions and totals
	GetSummary(ctx context.Context, portfolioID int64) (*models.Summary, error)
}

// BackendClient is the full backend contract.
type BackendClient interface {
	StockDataClient
	PortfolioClient

	// Health checks that the backend is reachable
	Health(ctx context.Context) error
}

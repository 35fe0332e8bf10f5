package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockview/internal/models"
)

const tolerance = 1e-9

func TestDerive_SingleHolding(t *testing.T) {
	holdings := []models.Holding{{ID: 1, Ticker: "AAPL", Qty: 10, AvgPrice: 150}}
	prices := models.PriceTable{"AAPL": models.Float(180)}

	positions, totals := Derive(holdings, prices)

	require.Len(t, positions, 1)
	p := positions[0]
	assert.InDelta(t, 1500, p.Cost, tolerance)
	require.NotNil(t, p.Value)
	require.NotNil(t, p.PnL)
	assert.InDelta(t, 1800, *p.Value, tolerance)
	assert.InDelta(t, 300, *p.PnL, tolerance)
	assert.Equal(t, models.Totals{Cost: 1500, Value: 1800, PnL: 300}, totals)
}

func TestDerive_PreservesOrderAndSourceFields(t *testing.T) {
	holdings := []models.Holding{
		{ID: 9, Ticker: "MSFT", Qty: 3, AvgPrice: 310.25},
		{ID: 2, Ticker: "AAPL", Qty: -4, AvgPrice: 120},
		{ID: 5, Ticker: "MSFT", Qty: 1.5, AvgPrice: 0},
	}
	prices := models.PriceTable{"MSFT": models.Float(400)}

	positions, _ := Derive(holdings, prices)

	require.Len(t, positions, len(holdings))
	for i, h := range holdings {
		assert.Equal(t, h.ID, positions[i].ID)
		assert.Equal(t, h.Ticker, positions[i].Ticker)
		assert.Equal(t, h.Qty, positions[i].Qty)
		assert.Equal(t, h.AvgPrice, positions[i].AvgPrice)
		assert.InDelta(t, h.Qty*h.AvgPrice, positions[i].Cost, tolerance)
	}
}

func TestDerive_UnknownPriceIsExcluded(t *testing.T) {
	holdings := []models.Holding{
		{ID: 1, Ticker: "AAPL", Qty: 10, AvgPrice: 150},
		{ID: 2, Ticker: "ZZZZ", Qty: 5, AvgPrice: 20},
	}
	prices := models.PriceTable{"AAPL": models.Float(180), "ZZZZ": nil}

	positions, totals := Derive(holdings, prices)

	require.Len(t, positions, 2)
	assert.Nil(t, positions[1].Last)
	assert.Nil(t, positions[1].Value)
	assert.Nil(t, positions[1].PnL)
	assert.InDelta(t, 100, positions[1].Cost, tolerance)

	assert.InDelta(t, 1600, totals.Cost, tolerance)
	assert.InDelta(t, 1800, totals.Value, tolerance)
	assert.InDelta(t, 200, totals.PnL, tolerance)
}

func TestDerive_MissingTickerTreatedAsUnknown(t *testing.T) {
	positions, totals := Derive([]models.Holding{{ID: 1, Ticker: "AAPL", Qty: 1, AvgPrice: 2}}, nil)

	require.Len(t, positions, 1)
	assert.Nil(t, positions[0].Value)
	assert.Equal(t, models.Totals{Cost: 2, Value: 0, PnL: -2}, totals)
}

func TestDerive_TotalsMatchPositions(t *testing.T) {
	holdings := []models.Holding{
		{ID: 1, Ticker: "A", Qty: 0.1, AvgPrice: 0.2},
		{ID: 2, Ticker: "B", Qty: 7, AvgPrice: 13.37},
		{ID: 3, Ticker: "C", Qty: 2, AvgPrice: 99.99},
		{ID: 4, Ticker: "D", Qty: 100, AvgPrice: 1.01},
	}
	prices := models.PriceTable{"A": models.Float(0.3), "B": nil, "C": models.Float(101.5), "D": models.Float(0.99)}

	positions, totals := Derive(holdings, prices)

	var cost, value float64
	for _, p := range positions {
		cost += p.Cost
		if p.Value != nil {
			value += *p.Value
		}
	}
	assert.InDelta(t, cost, totals.Cost, 1e-6)
	assert.InDelta(t, value, totals.Value, 1e-6)
	assert.InDelta(t, totals.Value-totals.Cost, totals.PnL, 1e-6)
}

func TestDerive_Empty(t *testing.T) {
	positions, totals := Derive(nil, models.PriceTable{})
	assert.NotNil(t, positions)
	assert.Empty(t, positions)
	assert.Equal(t, models.Totals{}, totals)
}

func TestDerive_Idempotent(t *testing.T) {
	holdings := []models.Holding{{ID: 1, Ticker: "AAPL", Qty: 10, AvgPrice: 150}}
	prices := models.PriceTable{"AAPL": models.Float(180)}

	p1, t1 := Derive(holdings, prices)
	p2, t2 := Derive(holdings, prices)
	assert.Equal(t, p1, p2)
	assert.Equal(t, t1, t2)
}

func TestFromSummary(t *testing.T) {
	s := &models.Summary{
		ID:   1,
		Name: "P",
		Positions: []models.Position{
			{ID: 1, Ticker: "AAPL", Qty: 1, AvgPrice: 1, Cost: 1, Last: models.Float(2), Value: models.Float(2), PnL: models.Float(1)},
			{ID: 2, Ticker: "ZZZZ", Qty: 1, AvgPrice: 1, Cost: 1},
		},
		Totals: models.Totals{Cost: 2, Value: 2, PnL: 0},
	}

	positions, totals := FromSummary(s)
	assert.Equal(t, s.Positions, positions)
	assert.Equal(t, s.Totals, totals)

	positions, totals = FromSummary(nil)
	assert.Empty(t, positions)
	assert.Equal(t, models.Totals{}, totals)
}

func TestPriceTableFromPositions(t *testing.T) {
	table := PriceTableFromPositions([]models.Position{
		{Ticker: "AAPL", Last: models.Float(180)},
		{Ticker: "ZZZZ"},
	})
	require.Contains(t, table, "ZZZZ")
	assert.Nil(t, table["ZZZZ"])
	assert.Equal(t, 180.0, *table["AAPL"])
}

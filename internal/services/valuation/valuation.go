// Package valuation derives positions and totals from holdings and last prices.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stockview/internal/models"
)

// Derive projects holdings onto positions using the price table.
//
// Positions keep holdings order. A ticker with no known price yields nil
// Last, Value and PnL, and is excluded from Totals.Value; its cost still
// counts toward Totals.Cost.
func Derive(holdings []models.Holding, prices models.PriceTable) ([]models.Position, models.Totals) {
	positions := make([]models.Position, 0, len(holdings))
	totalCost := decimal.Zero
	totalValue := decimal.Zero

	for _, h := range holdings {
		qty := decimal.NewFromFloat(h.Qty)
		cost := qty.Mul(decimal.NewFromFloat(h.AvgPrice))

		pos := models.Position{
			ID:       h.ID,
			Ticker:   h.Ticker,
			Qty:      h.Qty,
			AvgPrice: h.AvgPrice,
			Cost:     cost.InexactFloat64(),
		}

		if last := prices[h.Ticker]; last != nil {
			value := qty.Mul(decimal.NewFromFloat(*last))
			pos.Last = models.Float(*last)
			pos.Value = models.Float(value.InexactFloat64())
			pos.PnL = models.Float(value.Sub(cost).InexactFloat64())
			totalValue = totalValue.Add(value)
		}

		totalCost = totalCost.Add(cost)
		positions = append(positions, pos)
	}

	return positions, models.Totals{
		Cost:  totalCost.InexactFloat64(),
		Value: totalValue.InexactFloat64(),
		PnL:   totalValue.Sub(totalCost).InexactFloat64(),
	}
}

// FromSummary adopts a server-side aggregation as-is.
func FromSummary(s *models.Summary) ([]models.Position, models.Totals) {
	if s == nil {
		return []models.Position{}, models.Totals{}
	}
	positions := make([]models.Position, len(s.Positions))
	copy(positions, s.Positions)
	return positions, s.Totals
}

// PriceTableFromPositions recovers the last-price table carried by positions.
func PriceTableFromPositions(positions []models.Position) models.PriceTable {
	table := make(models.PriceTable, len(positions))
	for _, p := range positions {
		if p.Last != nil {
			table[p.Ticker] = models.Float(*p.Last)
		} else if _, ok := table[p.Ticker]; !ok {
			table[p.Ticker] = nil
		}
	}
	return table
}

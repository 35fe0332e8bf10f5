package portfolio

import (
	"github.com/bobmcallan/stockview/internal/models"
)

// AddForm holds the raw new-holding inputs.
type AddForm struct {
	Ticker   string `json:"ticker"`
	Qty      string `json:"qty"`
	AvgPrice string `json:"avg_price"`
}

// EditSlot is the single inline-edit slot. HoldingID is meaningful only
// while Editing is true.
type EditSlot struct {
	Editing   bool   `json:"editing"`
	HoldingID int64  `json:"holding_id,omitempty"`
	Qty       string `json:"qty"`
	AvgPrice  string `json:"avg_price"`
}

// State is a point-in-time copy of the view-model.
type State struct {
	Strategy    string            `json:"strategy"`
	PortfolioID int64             `json:"portfolio_id"`
	Portfolio   *models.Portfolio `json:"portfolio"`
	Positions   []models.Position `json:"positions"`
	Totals      *models.Totals    `json:"totals"`
	Prices      models.PriceTable `json:"prices,omitempty"`
	Busy        bool              `json:"busy"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
	Form        AddForm           `json:"form"`
	Edit        EditSlot          `json:"edit"`
}

// IsEditing reports whether the given holding occupies the edit slot.
func (s State) IsEditing(holdingID int64) bool {
	return s.Edit.Editing && s.Edit.HoldingID == holdingID
}

func clonePortfolio(p *models.Portfolio) *models.Portfolio {
	if p == nil {
		return nil
	}
	out := *p
	out.Holdings = append([]models.Holding(nil), p.Holdings...)
	return &out
}

func clonePositions(ps []models.Position) []models.Position {
	if ps == nil {
		return nil
	}
	out := make([]models.Position, len(ps))
	for i, p := range ps {
		out[i] = p
		if p.Last != nil {
			out[i].Last = models.Float(*p.Last)
		}
		if p.Value != nil {
			out[i].Value = models.Float(*p.Value)
		}
		if p.PnL != nil {
			out[i].PnL = models.Float(*p.PnL)
		}
	}
	return out
}

package models

import "sort"

// Portfolio is the backend portfolio snapshot.
type Portfolio struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Holdings []Holding `json:"holdings"`
}

// Holding is a user-recorded position within a portfolio.
type Holding struct {
	ID       int64   `json:"id"`
	Ticker   string  `json:"ticker"`
	Qty      float64 `json:"qty"`
	AvgPrice float64 `json:"avg_price"`
}

// FindHolding returns the holding with the given id.
func (p *Portfolio) FindHolding(id int64) (Holding, bool) {
	if p == nil {
		return Holding{}, false
	}
	for _, h := range p.Holdings {
		if h.ID == id {
			return h, true
		}
	}
	return Holding{}, false
}

// Tickers returns the sorted distinct ticker set of the holdings.
func Tickers(holdings []Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	var out []string
	for _, h := range holdings {
		if _, ok := seen[h.Ticker]; ok {
			continue
		}
		seen[h.Ticker] = struct{}{}
		out = append(out, h.Ticker)
	}
	sort.Strings(out)
	return out
}

// NewHolding is the body of POST /portfolio/{id}/holdings.
type NewHolding struct {
	Ticker   string  `json:"ticker"`
	Qty      float64 `json:"qty"`
	AvgPrice float64 `json:"avg_price"`
}

// HoldingPatch is the body of PATCH /portfolio/{id}/holdings/{hid}.
// Nil fields are omitted and left unchanged by the backend.
type HoldingPatch struct {
	Qty      *float64 `json:"qty,omitempty"`
	AvgPrice *float64 `json:"avg_price,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p HoldingPatch) IsEmpty() bool {
	return p.Qty == nil && p.AvgPrice == nil
}

// Position is a Holding enriched with a last price and derived valuation.
// Last, Value and PnL are nil while the last price is unknown.
type Position struct {
	ID       int64    `json:"id"`
	Ticker   string   `json:"ticker"`
	Qty      float64  `json:"qty"`
	AvgPrice float64  `json:"avg_price"`
	Last     *float64 `json:"last"`
	Cost     float64  `json:"cost"`
	Value    *float64 `json:"value"`
	PnL      *float64 `json:"pnl"`
}

// Totals aggregates positions.
type Totals struct {
	Cost  float64 `json:"cost"`
	Value float64 `json:"value"`
	PnL   float64 `json:"pnl"`
}

// Summary is the GET /portfolio/{id}/summary response.
type Summary struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Positions []Position `json:"positions"`
	Totals    Totals     `json:"totals"`
}

// DeleteResult is the DELETE /portfolio/{id} response.
type DeleteResult struct {
	OK bool `json:"ok"`
}

// PriceTable maps ticker to last-known close; nil marks an unknown price.
type PriceTable map[string]*float64

// Clone returns an independent copy of the table.
func (t PriceTable) Clone() PriceTable {
	if t == nil {
		return nil
	}
	out := make(PriceTable, len(t))
	for k, v := range t {
		if v != nil {
			c := *v
			out[k] = &c
		} else {
			out[k] = nil
		}
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

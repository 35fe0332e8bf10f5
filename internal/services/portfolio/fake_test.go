package portfolio

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/bobmcallan/stockview/internal/clients/stockapi"
	"github.com/bobmcallan/stockview/internal/models"
)

// fakeBackend is an in-memory portfolio backend.
type fakeBackend struct {
	mu         sync.Mutex
	portfolios map[int64]*models.Portfolio
	nextID     int64
	nextHID    int64
	calls      map[string]int
	errs       map[string]error
	summaries  map[int64]*models.Summary

	// getHook, when set, runs before GetPortfolio returns.
	getHook func(id int64)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		portfolios: map[int64]*models.Portfolio{},
		nextID:     1,
		nextHID:    1,
		calls:      map[string]int{},
		errs:       map[string]error{},
		summaries:  map[int64]*models.Summary{},
	}
}

func notFound(endpoint string) error {
	return &stockapi.APIError{StatusCode: http.StatusNotFound, Detail: "Portfolio not found", Endpoint: endpoint}
}

func (f *fakeBackend) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.errs[op]
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) setErr(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

func (f *fakeBackend) seed(name string, holdings ...models.Holding) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	p := &models.Portfolio{ID: id, Name: name}
	for _, h := range holdings {
		h.ID = f.nextHID
		f.nextHID++
		p.Holdings = append(p.Holdings, h)
	}
	f.portfolios[id] = p
	return id
}

func (f *fakeBackend) snapshot(id int64) (*models.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.portfolios[id]
	if !ok {
		return nil, notFound("/portfolio")
	}
	out := *p
	out.Holdings = append([]models.Holding(nil), p.Holdings...)
	return &out, nil
}

func (f *fakeBackend) CreatePortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	id := f.seed(name)
	return f.snapshot(id)
}

func (f *fakeBackend) GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error) {
	if err := f.record("get"); err != nil {
		return nil, err
	}
	if f.getHook != nil {
		f.getHook(id)
	}
	return f.snapshot(id)
}

func (f *fakeBackend) AddHolding(ctx context.Context, portfolioID int64, h models.NewHolding) (*models.Portfolio, error) {
	if err := f.record("add"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	p, ok := f.portfolios[portfolioID]
	if !ok {
		f.mu.Unlock()
		return nil, notFound("/portfolio")
	}
	p.Holdings = append(p.Holdings, models.Holding{ID: f.nextHID, Ticker: h.Ticker, Qty: h.Qty, AvgPrice: h.AvgPrice})
	f.nextHID++
	f.mu.Unlock()
	return f.snapshot(portfolioID)
}

func (f *fakeBackend) UpdateHolding(ctx context.Context, portfolioID, holdingID int64, patch models.HoldingPatch) (*models.Portfolio, error) {
	if err := f.record("update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	p, ok := f.portfolios[portfolioID]
	if !ok {
		f.mu.Unlock()
		return nil, notFound("/portfolio")
	}
	for i := range p.Holdings {
		if p.Holdings[i].ID == holdingID {
			if patch.Qty != nil {
				p.Holdings[i].Qty = *patch.Qty
			}
			if patch.AvgPrice != nil {
				p.Holdings[i].AvgPrice = *patch.AvgPrice
			}
		}
	}
	f.mu.Unlock()
	return f.snapshot(portfolioID)
}

func (f *fakeBackend) DeleteHolding(ctx context.Context, portfolioID, holdingID int64) (*models.Portfolio, error) {
	if err := f.record("delete_holding"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	p, ok := f.portfolios[portfolioID]
	if !ok {
		f.mu.Unlock()
		return nil, notFound("/portfolio")
	}
	kept := p.Holdings[:0]
	for _, h := range p.Holdings {
		if h.ID != holdingID {
			kept = append(kept, h)
		}
	}
	p.Holdings = kept
	f.mu.Unlock()
	return f.snapshot(portfolioID)
}

func (f *fakeBackend) DeletePortfolio(ctx context.Context, portfolioID int64) (*models.DeleteResult, error) {
	if err := f.record("delete_portfolio"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	delete(f.portfolios, portfolioID)
	f.mu.Unlock()
	return &models.DeleteResult{OK: true}, nil
}

func (f *fakeBackend) GetSummary(ctx context.Context, portfolioID int64) (*models.Summary, error) {
	if err := f.record("summary"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.summaries[portfolioID]; ok {
		return s, nil
	}
	return nil, notFound("/summary")
}

// fakePrices returns fixed prices and counts refreshes.
type fakePrices struct {
	mu        sync.Mutex
	prices    map[string]float64
	refreshes [][]string
}

func (p *fakePrices) Refresh(ctx context.Context, tickers []string) models.PriceTable {
	p.mu.Lock()
	defer p.mu.Unlock()
	sorted := append([]string(nil), tickers...)
	sort.Strings(sorted)
	p.refreshes = append(p.refreshes, sorted)
	table := models.PriceTable{}
	for _, t := range tickers {
		if v, ok := p.prices[t]; ok {
			table[t] = models.Float(v)
		} else {
			table[t] = nil
		}
	}
	return table
}

func (p *fakePrices) refreshCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refreshes)
}

// recordingNotifier captures pushed notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	items []models.Notification
}

func (n *recordingNotifier) Push(item models.Notification) models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
	return item
}

func (n *recordingNotifier) last() models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return models.Notification{}
	}
	return n.items[len(n.items)-1]
}

var errTransport = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

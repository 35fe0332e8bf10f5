// Package portfolio implements the portfolio view-model: it owns the loaded
// portfolio, its derived positions and totals, the add form and the inline
// edit slot, and reconciles them with the backend after every mutation.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/bobmcallan/stockview/internal/clients/stockapi"
	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/interfaces"
	"github.com/bobmcallan/stockview/internal/models"
	"github.com/bobmcallan/stockview/internal/services/pricing"
	"github.com/bobmcallan/stockview/internal/services/valuation"
)

// DefaultName is used when a portfolio is created without a name.
const DefaultName = "My Portfolio"

var (
	// ErrBusy is returned when a mutation is attempted while another is in flight.
	ErrBusy = errors.New("another portfolio operation is in progress")
	// ErrNoPortfolio is returned when no portfolio has been resolved yet.
	ErrNoPortfolio = errors.New("no portfolio loaded")
	// ErrNotEditing is returned when the edit slot does not hold the given holding.
	ErrNotEditing = errors.New("holding is not being edited")
	// ErrHoldingNotFound is returned by BeginEdit for an unknown holding.
	ErrHoldingNotFound = errors.New("holding not found")
)

// Config selects the valuation strategy and creation defaults.
type Config struct {
	Strategy    string // common.StrategyClient or common.StrategySummary
	DefaultName string
}

// ViewModel is safe for concurrent use. Backend calls run outside the lock.
type ViewModel struct {
	client   interfaces.PortfolioClient
	prices   interfaces.PriceLookup
	notifier interfaces.Notifier
	prefs    interfaces.PrefsStore
	logger   *common.Logger

	strategy    string
	defaultName string

	mu        sync.Mutex
	gen       uint64
	id        int64
	portfolio *models.Portfolio
	positions []models.Position
	totals    *models.Totals
	table     models.PriceTable
	busy      bool
	loading   bool
	errMsg    string
	form      AddForm
	edit      EditSlot
}

// NewViewModel creates a view-model. prices may be nil for the summary
// strategy; prefs may be nil when nothing should be remembered.
func NewViewModel(
	client interfaces.PortfolioClient,
	prices interfaces.PriceLookup,
	notifier interfaces.Notifier,
	prefs interfaces.PrefsStore,
	logger *common.Logger,
	cfg Config,
) *ViewModel {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	strategy := cfg.Strategy
	if strategy != common.StrategySummary {
		strategy = common.StrategyClient
	}
	name := strings.TrimSpace(cfg.DefaultName)
	if name == "" {
		name = DefaultName
	}
	return &ViewModel{
		client:      client,
		prices:      prices,
		notifier:    notifier,
		prefs:       prefs,
		logger:      logger,
		strategy:    strategy,
		defaultName: name,
	}
}

// Snapshot returns a copy of the current state.
func (vm *ViewModel) Snapshot() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	s := State{
		Strategy:    vm.strategy,
		PortfolioID: vm.id,
		Portfolio:   clonePortfolio(vm.portfolio),
		Positions:   clonePositions(vm.positions),
		Prices:      vm.table.Clone(),
		Busy:        vm.busy,
		Loading:     vm.loading,
		Error:       vm.errMsg,
		Form:        vm.form,
		Edit:        vm.edit,
	}
	if vm.totals != nil {
		t := *vm.totals
		s.Totals = &t
	}
	return s
}

// PortfolioID returns the resolved portfolio id, 0 if none.
func (vm *ViewModel) PortfolioID() int64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.id
}

// --- busy guard ---

func (vm *ViewModel) begin() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.busy {
		return ErrBusy
	}
	vm.busy = true
	vm.errMsg = ""
	return nil
}

func (vm *ViewModel) end() {
	vm.mu.Lock()
	vm.busy = false
	vm.mu.Unlock()
}

// fail records a user-visible error and pushes an error toast.
func (vm *ViewModel) fail(title string, err error, fallback string) {
	msg := stockapi.Detail(err, fallback)
	vm.mu.Lock()
	vm.errMsg = msg
	vm.mu.Unlock()
	vm.logger.Warn().Err(err).Str("op", title).Msg("Portfolio operation failed")
	vm.notify(models.NotificationError, title, msg)
}

func (vm *ViewModel) notify(kind models.NotificationKind, title, desc string) {
	if vm.notifier == nil {
		return
	}
	vm.notifier.Push(models.Notification{Kind: kind, Title: title, Desc: desc})
}

// adopt switches to a new portfolio id, dropping derived state and
// invalidating any in-flight load.
func (vm *ViewModel) adopt(ctx context.Context, id int64) {
	vm.mu.Lock()
	vm.gen++
	vm.id = id
	vm.portfolio = nil
	vm.positions = nil
	vm.totals = nil
	vm.table = nil
	vm.loading = false
	vm.edit = EditSlot{}
	vm.mu.Unlock()

	if vm.prefs != nil {
		if err := vm.prefs.SetLastPortfolioID(ctx, id); err != nil {
			vm.logger.Warn().Err(err).Int64("portfolio_id", id).Msg("Failed to remember portfolio")
		}
	}
}

// --- lifecycle ---

// ResolveOrCreate loads portfolio id, creating a new one named name when
// the backend reports it missing. id 0 selects the remembered portfolio,
// or creates one when nothing is remembered. Transport and other errors
// are surfaced without creating anything.
func (vm *ViewModel) ResolveOrCreate(ctx context.Context, id int64, name string) error {
	if err := vm.begin(); err != nil {
		return err
	}
	defer vm.end()

	if id == 0 && vm.prefs != nil {
		remembered, err := vm.prefs.LastPortfolioID(ctx)
		if err != nil {
			vm.logger.Warn().Err(err).Msg("Failed to read remembered portfolio")
		}
		id = remembered
	}

	if id != 0 {
		_, err := vm.client.GetPortfolio(ctx, id)
		switch {
		case err == nil:
			vm.adopt(ctx, id)
			return vm.load(ctx, false)
		case !stockapi.IsNotFound(err):
			vm.fail("Load failed", err, "Failed to load portfolio")
			return fmt.Errorf("resolve portfolio %d: %w", id, err)
		}
		vm.logger.Info().Int64("portfolio_id", id).Msg("Portfolio not found, creating")
	}

	return vm.create(ctx, name)
}

// Create makes a new portfolio and switches to it.
func (vm *ViewModel) Create(ctx context.Context, name string) error {
	if err := vm.begin(); err != nil {
		return err
	}
	defer vm.end()
	return vm.create(ctx, name)
}

func (vm *ViewModel) create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = vm.defaultName
	}

	p, err := vm.client.CreatePortfolio(ctx, name)
	if err != nil {
		vm.fail("Create failed", err, "Failed to create portfolio")
		return fmt.Errorf("create portfolio: %w", err)
	}

	vm.logger.Info().Int64("portfolio_id", p.ID).Str("name", p.Name).Msg("Portfolio created")
	vm.adopt(ctx, p.ID)
	vm.notify(models.NotificationSuccess, "Portfolio created", p.Name)
	return vm.load(ctx, false)
}

// DeletePortfolio removes the current portfolio and forgets it.
func (vm *ViewModel) DeletePortfolio(ctx context.Context) error {
	if err := vm.begin(); err != nil {
		return err
	}
	defer vm.end()

	id := vm.PortfolioID()
	if id == 0 {
		return ErrNoPortfolio
	}

	if _, err := vm.client.DeletePortfolio(ctx, id); err != nil {
		vm.fail("Delete failed", err, "Failed to delete portfolio")
		return fmt.Errorf("delete portfolio %d: %w", id, err)
	}

	vm.mu.Lock()
	vm.gen++
	vm.id = 0
	vm.portfolio = nil
	vm.positions = nil
	vm.totals = nil
	vm.table = nil
	vm.loading = false
	vm.form = AddForm{}
	vm.edit = EditSlot{}
	vm.mu.Unlock()

	if vm.prefs != nil {
		if err := vm.prefs.ClearLastPortfolioID(ctx); err != nil {
			vm.logger.Warn().Err(err).Msg("Failed to forget portfolio")
		}
	}
	vm.notify(models.NotificationSuccess, "Portfolio deleted", "")
	return nil
}

// --- load ---

// Load refreshes the portfolio and its derived state. Under the client
// strategy prices are fetched only when the ticker set has changed.
func (vm *ViewModel) Load(ctx context.Context) error {
	return vm.load(ctx, false)
}

// Reload is Load with a forced price refresh.
func (vm *ViewModel) Reload(ctx context.Context) error {
	return vm.load(ctx, true)
}

func (vm *ViewModel) load(ctx context.Context, refreshPrices bool) error {
	vm.mu.Lock()
	id := vm.id
	if id == 0 {
		vm.mu.Unlock()
		return ErrNoPortfolio
	}
	vm.gen++
	gen := vm.gen
	vm.loading = true
	table := vm.table
	vm.mu.Unlock()

	var (
		p         *models.Portfolio
		positions []models.Position
		totals    models.Totals
		err       error
	)

	p, err = vm.client.GetPortfolio(ctx, id)
	if err == nil {
		if vm.strategy == common.StrategySummary {
			var sum *models.Summary
			sum, err = vm.client.GetSummary(ctx, id)
			if err == nil {
				positions, totals = valuation.FromSummary(sum)
				table = valuation.PriceTableFromPositions(positions)
			}
		} else {
			tickers := models.Tickers(p.Holdings)
			if refreshPrices || !pricing.SameTickers(table, tickers) {
				if vm.prices != nil {
					table = vm.prices.Refresh(ctx, tickers)
				} else {
					table = make(models.PriceTable, len(tickers))
				}
			}
			positions, totals = valuation.Derive(p.Holdings, table)
		}
	}

	vm.mu.Lock()
	if gen != vm.gen {
		vm.mu.Unlock()
		vm.logger.Debug().Uint64("gen", gen).Int64("portfolio_id", id).Msg("Discarding stale load")
		return nil
	}
	vm.loading = false
	if err != nil {
		vm.mu.Unlock()
		vm.fail("Load failed", err, "Failed to load portfolio")
		return fmt.Errorf("load portfolio %d: %w", id, err)
	}
	vm.portfolio = p
	vm.positions = positions
	vm.totals = &totals
	vm.table = table
	vm.errMsg = ""
	if vm.edit.Editing {
		if _, ok := p.FindHolding(vm.edit.HoldingID); !ok {
			vm.edit = EditSlot{}
		}
	}
	vm.mu.Unlock()
	return nil
}

// --- holdings ---

// AddHolding validates the raw form inputs and adds a holding. Blank or
// non-numeric input is skipped without calling the backend. On success the
// form is cleared and the portfolio reloaded.
func (vm *ViewModel) AddHolding(ctx context.Context, ticker, qty, avgPrice string) error {
	vm.mu.Lock()
	if vm.busy {
		vm.mu.Unlock()
		return ErrBusy
	}
	vm.form = AddForm{Ticker: ticker, Qty: qty, AvgPrice: avgPrice}
	id := vm.id
	vm.mu.Unlock()

	h, ok := parseNewHolding(ticker, qty, avgPrice)
	if !ok {
		return nil
	}
	if id == 0 {
		return ErrNoPortfolio
	}

	if err := vm.begin(); err != nil {
		return err
	}
	defer vm.end()

	if _, err := vm.client.AddHolding(ctx, id, h); err != nil {
		vm.fail("Add failed", err, "Failed to add holding")
		return fmt.Errorf("add holding %s: %w", h.Ticker, err)
	}

	vm.mu.Lock()
	vm.form = AddForm{}
	vm.mu.Unlock()
	vm.notify(models.NotificationSuccess, "Holding added", h.Ticker)
	return vm.load(ctx, false)
}

// DeleteHolding removes a holding and reloads.
func (vm *ViewModel) DeleteHolding(ctx context.Context, holdingID int64) error {
	if err := vm.begin(); err != nil {
		return err
	}
	defer vm.end()

	id := vm.PortfolioID()
	if id == 0 {
		return ErrNoPortfolio
	}

	if _, err := vm.client.DeleteHolding(ctx, id, holdingID); err != nil {
		vm.fail("Delete failed", err, "Failed to delete holding")
		return fmt.Errorf("delete holding %d: %w", holdingID, err)
	}

	vm.mu.Lock()
	if vm.edit.Editing && vm.edit.HoldingID == holdingID {
		vm.edit = EditSlot{}
	}
	vm.mu.Unlock()
	vm.notify(models.NotificationSuccess, "Holding deleted", "")
	return vm.load(ctx, false)
}

// --- edit slot ---

// BeginEdit puts a holding into the edit slot, replacing any other, and
// seeds the inputs with its current values.
func (vm *ViewModel) BeginEdit(holdingID int64) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	h, ok := vm.portfolio.FindHolding(holdingID)
	if !ok {
		return fmt.Errorf("begin edit %d: %w", holdingID, ErrHoldingNotFound)
	}
	vm.edit = EditSlot{
		Editing:   true,
		HoldingID: holdingID,
		Qty:       common.FormatNumber(h.Qty),
		AvgPrice:  common.FormatNumber(h.AvgPrice),
	}
	return nil
}

// SetEditInputs replaces the edit inputs of the holding in the slot.
func (vm *ViewModel) SetEditInputs(holdingID int64, qty, avgPrice string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if !vm.edit.Editing || vm.edit.HoldingID != holdingID {
		return ErrNotEditing
	}
	vm.edit.Qty = qty
	vm.edit.AvgPrice = avgPrice
	return nil
}

// CancelEdit empties the edit slot.
func (vm *ViewModel) CancelEdit() {
	vm.mu.Lock()
	vm.edit = EditSlot{}
	vm.mu.Unlock()
}

// SaveEdit sends the non-blank edit inputs as a partial update. Both blank,
// or any non-numeric input, is a no-op. On success the slot is emptied and
// the portfolio reloaded; on failure the slot keeps its inputs.
func (vm *ViewModel) SaveEdit(ctx context.Context, holdingID int64) error {
	vm.mu.Lock()
	if vm.busy {
		vm.mu.Unlock()
		return ErrBusy
	}
	if !vm.edit.Editing || vm.edit.HoldingID != holdingID {
		vm.mu.Unlock()
		return ErrNotEditing
	}
	slot := vm.edit
	id := vm.id
	vm.mu.Unlock()

	patch, ok := parsePatch(slot.Qty, slot.AvgPrice)
	if !ok {
		return nil
	}

	if err := vm.begin(); err != nil {
		return err
	}
	defer vm.end()

	if _, err := vm.client.UpdateHolding(ctx, id, holdingID, patch); err != nil {
		vm.fail("Update failed", err, "Failed to update holding")
		return fmt.Errorf("update holding %d: %w", holdingID, err)
	}

	vm.CancelEdit()
	vm.notify(models.NotificationSuccess, "Holding updated", "")
	return vm.load(ctx, false)
}

// --- input parsing ---

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseNewHolding(ticker, qty, avgPrice string) (models.NewHolding, bool) {
	t := models.NormalizeTicker(ticker)
	if t == "" || strings.TrimSpace(qty) == "" || strings.TrimSpace(avgPrice) == "" {
		return models.NewHolding{}, false
	}
	q, ok := parseNumber(qty)
	if !ok {
		return models.NewHolding{}, false
	}
	a, ok := parseNumber(avgPrice)
	if !ok {
		return models.NewHolding{}, false
	}
	return models.NewHolding{Ticker: t, Qty: q, AvgPrice: a}, true
}

func parsePatch(qty, avgPrice string) (models.HoldingPatch, bool) {
	var patch models.HoldingPatch
	if strings.TrimSpace(qty) != "" {
		v, ok := parseNumber(qty)
		if !ok {
			return patch, false
		}
		patch.Qty = &v
	}
	if strings.TrimSpace(avgPrice) != "" {
		v, ok := parseNumber(avgPrice)
		if !ok {
			return patch, false
		}
		patch.AvgPrice = &v
	}
	return patch, !patch.IsEmpty()
}

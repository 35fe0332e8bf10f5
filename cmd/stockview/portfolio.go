package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/stockview/internal/app"
	"github.com/bobmcallan/stockview/internal/clients/stockapi"
)

// openApp initializes the application from the -config flag.
func openApp() (*app.App, error) {
	return app.NewApp(*configPath)
}

// portfolioFlags selects the working portfolio.
type portfolioFlags struct {
	id int64
}

func (p *portfolioFlags) set(f *flag.FlagSet) {
	f.Int64Var(&p.id, "id", 0, "Portfolio id (default: configured or last used, created when missing)")
}

// withPortfolio resolves the working portfolio, runs fn and prints the
// resulting state.
func (p *portfolioFlags) withPortfolio(ctx context.Context, fn func(a *app.App) error) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	id := p.id
	if id == 0 {
		id = a.Config.Portfolio.DefaultID
	}
	if err := a.Portfolio.ResolveOrCreate(ctx, id, a.Config.Portfolio.DefaultName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", stockapi.Detail(err, "Failed to load portfolio"))
		return subcommands.ExitFailure
	}

	if fn != nil {
		if err := fn(a); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", stockapi.Detail(err, ""))
			return subcommands.ExitFailure
		}
	}

	printMarkdown(portfolioMarkdown(a.Portfolio.Snapshot()))
	return subcommands.ExitSuccess
}

// showCmd prints the portfolio with valuations.
type showCmd struct {
	portfolioFlags
	refresh bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the portfolio with last prices and P&L" }
func (*showCmd) Usage() string {
	return `stockview show [-id <portfolio>] [-refresh]

  Displays holdings valued at the latest close, with totals.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.BoolVar(&c.refresh, "refresh", false, "re-fetch last prices")
}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.withPortfolio(ctx, func(a *app.App) error {
		if c.refresh {
			return a.Portfolio.Reload(ctx)
		}
		return nil
	})
}

// createCmd creates a new portfolio and makes it the current one.
type createCmd struct {
	name string
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "create a new portfolio" }
func (*createCmd) Usage() string {
	return `stockview create [-name <name>]

  Creates a portfolio on the backend and remembers it as the current one.
`
}

func (c *createCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Portfolio name (default from config)")
}

func (c *createCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.Portfolio.Create(ctx, c.name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", stockapi.Detail(err, "Failed to create portfolio"))
		return subcommands.ExitFailure
	}
	printMarkdown(portfolioMarkdown(a.Portfolio.Snapshot()))
	return subcommands.ExitSuccess
}

// addCmd adds a holding.
type addCmd struct {
	portfolioFlags
	ticker   string
	qty      string
	avgPrice string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a holding to the portfolio" }
func (*addCmd) Usage() string {
	return `stockview add -t <ticker> -q <qty> -p <avg price> [-id <portfolio>]

  Records a holding of qty shares bought at avg price.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
	f.StringVar(&c.qty, "q", "", "Quantity")
	f.StringVar(&c.avgPrice, "p", "", "Average purchase price")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.ticker) == "" || strings.TrimSpace(c.qty) == "" || strings.TrimSpace(c.avgPrice) == "" {
		fmt.Fprintln(os.Stderr, "Error: -t, -q and -p are required")
		return subcommands.ExitUsageError
	}
	return c.withPortfolio(ctx, func(a *app.App) error {
		if err := a.Portfolio.AddHolding(ctx, c.ticker, c.qty, c.avgPrice); err != nil {
			return err
		}
		// invalid numbers leave the form populated
		if a.Portfolio.Snapshot().Form.Ticker != "" {
			return fmt.Errorf("quantity and price must be numbers")
		}
		return nil
	})
}

// editCmd updates a holding's quantity and/or average price.
type editCmd struct {
	portfolioFlags
	holding  int64
	qty      string
	avgPrice string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "update a holding's quantity or average price" }
func (*editCmd) Usage() string {
	return `stockview edit -holding <id> [-q <qty>] [-p <avg price>] [-id <portfolio>]

  Only the given values are changed.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.Int64Var(&c.holding, "holding", 0, "Holding id")
	f.StringVar(&c.qty, "q", "", "New quantity")
	f.StringVar(&c.avgPrice, "p", "", "New average price")
}

func (c *editCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holding <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -holding is required")
		return subcommands.ExitUsageError
	}
	return c.withPortfolio(ctx, func(a *app.App) error {
		if err := a.Portfolio.BeginEdit(c.holding); err != nil {
			return err
		}
		if err := a.Portfolio.SetEditInputs(c.holding, c.qty, c.avgPrice); err != nil {
			return err
		}
		if err := a.Portfolio.SaveEdit(ctx, c.holding); err != nil {
			return err
		}
		if a.Portfolio.Snapshot().IsEditing(c.holding) {
			a.Portfolio.CancelEdit()
			return fmt.Errorf("nothing to update")
		}
		return nil
	})
}

// removeCmd deletes a holding.
type removeCmd struct {
	portfolioFlags
	holding int64
}

func (*removeCmd) Name() string     { return "rm" }
func (*removeCmd) Synopsis() string { return "remove a holding from the portfolio" }
func (*removeCmd) Usage() string {
	return `stockview rm -holding <id> [-id <portfolio>]
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.Int64Var(&c.holding, "holding", 0, "Holding id")
}

func (c *removeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holding <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -holding is required")
		return subcommands.ExitUsageError
	}
	return c.withPortfolio(ctx, func(a *app.App) error {
		return a.Portfolio.DeleteHolding(ctx, c.holding)
	})
}

// dropCmd deletes the current portfolio.
type dropCmd struct {
	portfolioFlags
}

func (*dropCmd) Name() string     { return "drop" }
func (*dropCmd) Synopsis() string { return "delete the portfolio and forget it" }
func (*dropCmd) Usage() string {
	return `stockview drop [-id <portfolio>]
`
}

func (c *dropCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *dropCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.id == 0 {
		c.id = a.Config.Portfolio.DefaultID
	}
	if c.id == 0 {
		c.id, _ = a.Prefs.LastPortfolioID(ctx)
	}
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "Error: no portfolio selected")
		return subcommands.ExitUsageError
	}

	// a missing portfolio is reported, never created just to be deleted
	if _, err := a.Backend.GetPortfolio(ctx, c.id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", stockapi.Detail(err, "Failed to load portfolio"))
		return subcommands.ExitFailure
	}
	if err := a.Portfolio.ResolveOrCreate(ctx, c.id, a.Config.Portfolio.DefaultName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", stockapi.Detail(err, "Failed to load portfolio"))
		return subcommands.ExitFailure
	}
	id := a.Portfolio.PortfolioID()
	if err := a.Portfolio.DeletePortfolio(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", stockapi.Detail(err, "Failed to delete portfolio"))
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted portfolio %d\n", id)
	return subcommands.ExitSuccess
}

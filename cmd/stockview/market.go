package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/stockview/internal/clients/stockapi"
	"github.com/bobmcallan/stockview/internal/services/chart"
	"github.com/bobmcallan/stockview/internal/services/market"
)

// marketFlags are shared by the market subcommands.
type marketFlags struct {
	ticker   string
	rng      string
	interval string
}

func (m *marketFlags) set(f *flag.FlagSet) {
	f.StringVar(&m.ticker, "t", "", "Ticker symbol (default from config)")
	f.StringVar(&m.rng, "r", "", "History range: 1y, 5y, 6mo or 3mo")
	f.StringVar(&m.interval, "i", "", "Bar interval: 1d, 1m or 5m")
}

func (m *marketFlags) load(ctx context.Context) (*market.View, error) {
	a, err := openApp()
	if err != nil {
		return nil, err
	}
	defer a.Close()

	ticker := m.ticker
	if ticker == "" {
		ticker = a.Config.Chart.DefaultTicker
	}
	q, err := market.ParseQuery(ticker, m.rng, m.interval)
	if err != nil {
		return nil, err
	}
	return a.Market.Load(ctx, q)
}

// quoteCmd prints the latest bar and indicator readings.
type quoteCmd struct {
	marketFlags
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show the latest close and indicator values for a ticker" }
func (*quoteCmd) Usage() string {
	return `stockview quote [-t <ticker>] [-r <range>] [-i <interval>]

  Loads candles and indicators from the backend and prints the latest readings.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *quoteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	view, err := c.load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %s\n", c.ticker, stockapi.Detail(err, "Failed to load"))
		return subcommands.ExitFailure
	}
	printMarkdown(quoteMarkdown(view))
	return subcommands.ExitSuccess
}

// chartCmd renders the price and RSI charts to PNG files.
type chartCmd struct {
	marketFlags
	out    string
	rsiOut string
	ema    bool
	bb     bool
	noSMA  bool
	noVol  bool
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render price and RSI charts to PNG files" }
func (*chartCmd) Usage() string {
	return `stockview chart [-t <ticker>] [-r <range>] [-i <interval>] [-o price.png] [-rsi rsi.png] [-ema] [-bb]

  Renders the candle close line with overlays, and optionally the RSI panel.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.out, "o", "price.png", "Output file for the price chart")
	f.StringVar(&c.rsiOut, "rsi", "", "Output file for the RSI chart (omit to skip)")
	f.BoolVar(&c.ema, "ema", false, "Show EMA12 and EMA26")
	f.BoolVar(&c.bb, "bb", false, "Show Bollinger bands")
	f.BoolVar(&c.noSMA, "no-sma", false, "Hide SMA20 and SMA50")
	f.BoolVar(&c.noVol, "no-volume", false, "Hide volume bars")
}

func (c *chartCmd) toggles() market.Toggles {
	t := market.DefaultToggles()
	t.SMA20 = !c.noSMA
	t.SMA50 = !c.noSMA
	t.EMA12 = c.ema
	t.EMA26 = c.ema
	t.BB = c.bb
	t.Volume = !c.noVol
	t.RSI = c.rsiOut != ""
	return t
}

func (c *chartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	view, err := c.load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %s\n", c.ticker, stockapi.Detail(err, "Failed to load"))
		return subcommands.ExitFailure
	}

	data, err := chart.RenderPrice(view, c.toggles(), chart.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering price chart: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.out, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Wrote %s\n", c.out)

	if c.rsiOut != "" {
		data, err := chart.RenderRSI(view.RSI, view.Query.Interval, chart.Options{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering RSI chart: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.rsiOut, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.rsiOut, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote %s\n", c.rsiOut)
	}
	return subcommands.ExitSuccess
}

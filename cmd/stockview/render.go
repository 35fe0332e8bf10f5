package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/models"
	"github.com/bobmcallan/stockview/internal/services/market"
	"github.com/bobmcallan/stockview/internal/services/portfolio"
)

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Fprint(os.Stdout, md)
}

func lastValue(points []models.LinePoint) *float64 {
	if len(points) == 0 {
		return nil
	}
	v := points[len(points)-1].Value
	return &v
}

func formatPlain(v *float64) string {
	if v == nil {
		return common.Placeholder
	}
	return fmt.Sprintf("%.2f", *v)
}

// quoteMarkdown summarizes the most recent bar and indicator readings.
func quoteMarkdown(v *market.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", v.Query.Ticker)
	fmt.Fprintf(&b, "Range %s, interval %s, %d bars\n\n", v.Query.Range, v.Query.Interval, len(v.Candles))

	if len(v.Candles) > 0 {
		c := v.Candles[len(v.Candles)-1]
		b.WriteString("| Time | Open | High | Low | Close | Volume |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n\n",
			c.TS,
			common.FormatUSD(c.Open), common.FormatUSD(c.High), common.FormatUSD(c.Low), common.FormatUSD(c.Close),
			common.FormatNumber(c.Volume))
	}

	b.WriteString("| Indicator | Latest |\n")
	b.WriteString("|---|---:|\n")
	for _, style := range market.OverlayStyles {
		fmt.Fprintf(&b, "| %s | %s |\n", style.Label, formatPlain(lastValue(v.Overlays[style.Name])))
	}
	fmt.Fprintf(&b, "| RSI14 | %s |\n", formatPlain(lastValue(v.RSI)))

	return b.String()
}

// portfolioMarkdown renders the holdings table with valuations and totals.
func portfolioMarkdown(s portfolio.State) string {
	var b strings.Builder

	name := "Portfolio"
	if s.Portfolio != nil {
		name = s.Portfolio.Name
	}
	fmt.Fprintf(&b, "# %s (#%d)\n\n", name, s.PortfolioID)

	if s.Error != "" {
		fmt.Fprintf(&b, "**Error:** %s\n\n", s.Error)
	}

	if len(s.Positions) == 0 {
		b.WriteString("No holdings\n")
		return b.String()
	}

	b.WriteString("| ID | Ticker | Qty | Avg | Last | Cost | Value | P&L |\n")
	b.WriteString("|---:|---|---:|---:|---:|---:|---:|---:|\n")
	for _, p := range s.Positions {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			p.ID, p.Ticker, common.FormatNumber(p.Qty), common.FormatUSD(p.AvgPrice),
			common.FormatUSDPtr(p.Last), common.FormatUSD(p.Cost),
			common.FormatUSDPtr(p.Value), common.FormatUSDPtr(p.PnL))
	}

	if s.Totals != nil {
		fmt.Fprintf(&b, "| | **Total** | | | | %s | %s | %s |\n",
			common.FormatUSD(s.Totals.Cost), common.FormatUSD(s.Totals.Value), common.FormatUSD(s.Totals.PnL))
	}
	return b.String()
}

// Package chart renders market views as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/stockview/internal/models"
	"github.com/bobmcallan/stockview/internal/services/market"
)

// Options sets the image size.
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults(w, h int) Options {
	if o.Width <= 0 {
		o.Width = w
	}
	if o.Height <= 0 {
		o.Height = h
	}
	return o
}

var (
	closeColor      = drawing.ColorFromHex("111111")
	volumeColor     = drawing.ColorFromHex("0e9f6e").WithAlpha(90)
	guideColor      = drawing.ColorFromHex("999999")
	gridColor       = drawing.ColorFromHex("eeeeee")
	volumeHeadspace = 4.0 // volume bars use the bottom quarter
)

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

func timeFormatter(interval models.Interval) chart.ValueFormatter {
	layout := "Jan 06"
	if interval == models.Interval1M || interval == models.Interval5M {
		layout = "Jan 2 15:04"
	}
	return func(v interface{}) string {
		if t, ok := v.(float64); ok {
			return chart.TimeFromFloat64(t).UTC().Format(layout)
		}
		return ""
	}
}

func lineSeries(name string, points []models.LinePoint, style chart.Style) chart.TimeSeries {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Time
		ys[i] = p.Value
	}
	return chart.TimeSeries{Name: name, Style: style, XValues: xs, YValues: ys}
}

// paddedRange returns a y-range covering lo..hi with a small margin.
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// RenderPrice draws close prices, the enabled overlays and optional volume.
func RenderPrice(view *market.View, toggles market.Toggles, opts Options) ([]byte, error) {
	if view == nil || len(view.Candles) < 2 {
		n := 0
		if view != nil {
			n = len(view.Candles)
		}
		return nil, fmt.Errorf("need at least 2 candles, got %d", n)
	}
	opts = opts.withDefaults(1000, 420)

	xs := make([]time.Time, 0, len(view.Candles))
	closes := make([]float64, 0, len(view.Candles))
	volumes := make([]float64, 0, len(view.Candles))
	lo, hi := math.Inf(1), math.Inf(-1)
	maxVol := 0.0
	for _, c := range view.Candles {
		t, err := c.Time()
		if err != nil {
			continue
		}
		xs = append(xs, t)
		closes = append(closes, c.Close)
		volumes = append(volumes, c.Volume)
		lo = math.Min(lo, c.Close)
		hi = math.Max(hi, c.Close)
		maxVol = math.Max(maxVol, c.Volume)
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("need at least 2 candles with valid timestamps, got %d", len(xs))
	}

	var series []chart.Series

	if toggles.Volume && maxVol > 0 {
		series = append(series, chart.TimeSeries{
			Name: "Volume",
			Style: chart.Style{
				StrokeColor: volumeColor,
				StrokeWidth: 1,
				FillColor:   volumeColor,
			},
			YAxis:   chart.YAxisSecondary,
			XValues: xs,
			YValues: volumes,
		})
	}

	series = append(series, chart.TimeSeries{
		Name:    view.Query.Ticker,
		Style:   chart.Style{StrokeColor: closeColor, StrokeWidth: 1.5},
		XValues: xs,
		YValues: closes,
	})

	for _, o := range market.OverlayStyles {
		if !toggles.Shows(o.Name) {
			continue
		}
		pts := view.Overlays[o.Name]
		if len(pts) < 2 {
			continue
		}
		for _, p := range pts {
			lo = math.Min(lo, p.Value)
			hi = math.Max(hi, p.Value)
		}
		series = append(series, lineSeries(o.Label, pts, chart.Style{
			StrokeColor: hexColor(o.Color),
			StrokeWidth: o.Width,
		}))
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s %s/%s", view.Query.Ticker, view.Query.Range, view.Query.Interval),
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition:   chart.TickPositionBetweenTicks,
			ValueFormatter: timeFormatter(view.Query.Interval),
		},
		YAxis: chart.YAxis{
			Range: paddedRange(lo, hi),
			GridMajorStyle: chart.Style{
				StrokeColor: gridColor,
				StrokeWidth: 1,
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		YAxisSecondary: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(maxVol, 1) * volumeHeadspace},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("price chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderRSI draws the RSI line on a fixed 0..100 axis with 30/70 guides.
func RenderRSI(points []models.LinePoint, interval models.Interval, opts Options) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 RSI points, got %d", len(points))
	}
	opts = opts.withDefaults(1000, 160)

	first, last := points[0].Time, points[len(points)-1].Time
	guide := func(level float64) chart.TimeSeries {
		return chart.TimeSeries{
			Name: fmt.Sprintf("%.0f", level),
			Style: chart.Style{
				StrokeColor:     guideColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{4.0, 3.0},
			},
			XValues: []time.Time{first, last},
			YValues: []float64{level, level},
		}
	}

	graph := chart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 10, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: timeFormatter(interval),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
			Ticks: []chart.Tick{
				{Value: 0, Label: "0"},
				{Value: 30, Label: "30"},
				{Value: 70, Label: "70"},
				{Value: 100, Label: "100"},
			},
		},
		Series: []chart.Series{
			guide(70),
			guide(30),
			lineSeries("RSI (14)", points, chart.Style{
				StrokeColor: hexColor(market.RSIColor),
				StrokeWidth: 2,
			}),
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rsi chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

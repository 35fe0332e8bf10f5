package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockview/internal/models"
	"github.com/bobmcallan/stockview/internal/services/market"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleView(n int) *market.View {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	view := &market.View{
		Query:    market.Query{Ticker: "AAPL", Range: models.Range1Y, Interval: models.Interval1D},
		Overlays: map[string][]models.LinePoint{},
	}
	for i := 0; i < n; i++ {
		ts := start.AddDate(0, 0, i)
		px := 100 + float64(i%7) - float64(i%3)
		view.Candles = append(view.Candles, models.Candle{
			TS:     ts.Format(time.RFC3339),
			Open:   px - 1,
			High:   px + 2,
			Low:    px - 2,
			Close:  px,
			Volume: float64(1000 + 10*i),
		})
		view.Overlays[market.SMA20] = append(view.Overlays[market.SMA20], models.LinePoint{Time: ts, Value: px - 0.5})
		view.Overlays[market.BBUpper] = append(view.Overlays[market.BBUpper], models.LinePoint{Time: ts, Value: px + 5})
		view.Overlays[market.BBMid] = append(view.Overlays[market.BBMid], models.LinePoint{Time: ts, Value: px})
		view.Overlays[market.BBLower] = append(view.Overlays[market.BBLower], models.LinePoint{Time: ts, Value: px - 5})
		view.RSI = append(view.RSI, models.LinePoint{Time: ts, Value: float64(20 + (i*7)%60)})
	}
	return view
}

func TestRenderPrice_PNG(t *testing.T) {
	toggles := market.DefaultToggles()
	toggles.BB = true

	data, err := RenderPrice(sampleView(30), toggles, Options{Width: 640, Height: 320})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRenderPrice_NoVolumeNoOverlays(t *testing.T) {
	data, err := RenderPrice(sampleView(10), market.Toggles{}, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRenderPrice_FlatSeries(t *testing.T) {
	view := sampleView(5)
	for i := range view.Candles {
		view.Candles[i].Close = 50
		view.Candles[i].Volume = 0
	}
	data, err := RenderPrice(view, market.Toggles{}, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRenderPrice_TooFewCandles(t *testing.T) {
	_, err := RenderPrice(sampleView(1), market.DefaultToggles(), Options{})
	assert.Error(t, err)

	_, err = RenderPrice(nil, market.DefaultToggles(), Options{})
	assert.Error(t, err)
}

func TestRenderRSI_PNG(t *testing.T) {
	data, err := RenderRSI(sampleView(30).RSI, models.Interval1D, Options{Width: 640})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRenderRSI_TooFewPoints(t *testing.T) {
	_, err := RenderRSI(nil, models.Interval1D, Options{})
	assert.Error(t, err)
}

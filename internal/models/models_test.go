package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	r, err := ParseRange("")
	require.NoError(t, err)
	assert.Equal(t, Range1Y, r)

	r, err = ParseRange(" 6mo ")
	require.NoError(t, err)
	assert.Equal(t, Range6M, r)

	_, err = ParseRange("2y")
	assert.Error(t, err)
}

func TestParseInterval(t *testing.T) {
	i, err := ParseInterval("")
	require.NoError(t, err)
	assert.Equal(t, Interval1D, i)

	i, err = ParseInterval("5m")
	require.NoError(t, err)
	assert.Equal(t, Interval5M, i)

	_, err = ParseInterval("1h")
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-02T00:00:00+00:00", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T09:30:00-05:00", time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)},
		{"2024-01-02T09:30:00", time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)},
		{"2024-01-02 09:30:00+00:00", time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.input)
		if assert.NoError(t, err, tt.input) {
			assert.True(t, tt.want.Equal(got), "%s: got %s", tt.input, got)
		}
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestIndicatorRow_Value(t *testing.T) {
	row := IndicatorRow{"ts": "2024-01-02T00:00:00+00:00", "upper": 10.5, "mid": nil}

	assert.Equal(t, "2024-01-02T00:00:00+00:00", row.TS())
	v, ok := row.Value("upper")
	assert.True(t, ok)
	assert.Equal(t, 10.5, v)

	_, ok = row.Value("mid")
	assert.False(t, ok, "null values are skipped")
	_, ok = row.Value("lower")
	assert.False(t, ok)
}

func TestStockSeries_LastClose(t *testing.T) {
	var s *StockSeries
	assert.Nil(t, s.LastClose())

	s = &StockSeries{Data: []Candle{{Close: 1}, {Close: 2}}}
	require.NotNil(t, s.LastClose())
	assert.Equal(t, 2.0, *s.LastClose())
}

func TestTickers_SortedDistinct(t *testing.T) {
	got := Tickers([]Holding{{Ticker: "MSFT"}, {Ticker: "AAPL"}, {Ticker: "MSFT"}})
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
	assert.Empty(t, Tickers(nil))
}

func TestPortfolio_FindHolding(t *testing.T) {
	var nilPortfolio *Portfolio
	_, ok := nilPortfolio.FindHolding(1)
	assert.False(t, ok)

	p := &Portfolio{Holdings: []Holding{{ID: 1, Ticker: "AAPL"}, {ID: 2, Ticker: "MSFT"}}}
	h, ok := p.FindHolding(2)
	assert.True(t, ok)
	assert.Equal(t, "MSFT", h.Ticker)
}

func TestPriceTable_CloneIsIndependent(t *testing.T) {
	orig := PriceTable{"AAPL": Float(150), "ZZZZ": nil}
	c := orig.Clone()

	*c["AAPL"] = 1
	assert.Equal(t, 150.0, *orig["AAPL"])
	v, ok := c["ZZZZ"]
	assert.True(t, ok)
	assert.Nil(t, v)

	assert.Nil(t, PriceTable(nil).Clone())
}

func TestHoldingPatch_IsEmpty(t *testing.T) {
	assert.True(t, HoldingPatch{}.IsEmpty())
	assert.False(t, HoldingPatch{Qty: Float(1)}.IsEmpty())
}

func TestNotification_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Notification{}.Expired(now))
	assert.False(t, Notification{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.True(t, Notification{ExpiresAt: now}.Expired(now))
}

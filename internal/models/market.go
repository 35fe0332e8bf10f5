// Package models defines data structures for stockview
package models

import (
	"fmt"
	"strings"
	"time"
)

// Range is the history window requested from the backend.
type Range string

const (
	Range1Y Range = "1y"
	Range5Y Range = "5y"
	Range6M Range = "6mo"
	Range3M Range = "3mo"
)

// DefaultRange is used when no range is given.
const DefaultRange = Range1Y

// AllowedRanges lists the ranges the backend accepts.
var AllowedRanges = []Range{Range1Y, Range5Y, Range6M, Range3M}

// ParseRange validates a range string. Empty selects DefaultRange.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultRange, nil
	}
	for _, r := range AllowedRanges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid range: %s (allowed: 1y, 5y, 6mo, 3mo)", s)
}

// Interval is the bar size requested from the backend.
type Interval string

const (
	Interval1D Interval = "1d"
	Interval1M Interval = "1m"
	Interval5M Interval = "5m"
)

// DefaultInterval is used when no interval is given.
const DefaultInterval = Interval1D

// AllowedIntervals lists the intervals the backend accepts.
var AllowedIntervals = []Interval{Interval1D, Interval1M, Interval5M}

// ParseInterval validates an interval string. Empty selects DefaultInterval.
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultInterval, nil
	}
	for _, i := range AllowedIntervals {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("invalid interval: %s (allowed: 1d, 1m, 5m)", s)
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Candle is one OHLCV bar as returned by GET /stock.
type Candle struct {
	TS     string  `json:"ts"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Time parses the candle timestamp.
func (c Candle) Time() (time.Time, error) {
	return ParseTimestamp(c.TS)
}

// StockSeries is the GET /stock response.
type StockSeries struct {
	Ticker   string   `json:"ticker"`
	Interval string   `json:"interval"`
	Data     []Candle `json:"data"`
}

// LastClose returns the close of the most recent candle, or nil for an empty series.
func (s *StockSeries) LastClose() *float64 {
	if s == nil || len(s.Data) == 0 {
		return nil
	}
	last := s.Data[len(s.Data)-1].Close
	return &last
}

// IndicatorRow is one point of an indicator series. Rows carry a "ts" key
// plus one or more named values ("sma20", or "upper"/"mid"/"lower" for bands).
type IndicatorRow map[string]interface{}

// TS returns the row timestamp.
func (r IndicatorRow) TS() string {
	s, _ := r["ts"].(string)
	return s
}

// Value returns a named numeric value from the row.
func (r IndicatorRow) Value(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// IndicatorResponse is the GET /indicators response.
type IndicatorResponse struct {
	Ticker     string                    `json:"ticker"`
	Interval   string                    `json:"interval"`
	Indicators map[string][]IndicatorRow `json:"indicators"`
}

// LinePoint is a single point of a chart line series.
type LinePoint struct {
	TS    string    `json:"ts"`
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// UnixSeconds returns the point time as a Unix second epoch.
func (p LinePoint) UnixSeconds() int64 {
	return p.Time.Unix()
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601-like timestamps emitted by the backend.
// Values without a zone are taken as UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", ts)
}

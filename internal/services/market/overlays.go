package market

import (
	"github.com/bobmcallan/stockview/internal/models"
)

// Overlay series names.
const (
	SMA20   = "sma20"
	SMA50   = "sma50"
	EMA12   = "ema12"
	EMA26   = "ema26"
	BBUpper = "bb_upper"
	BBMid   = "bb_mid"
	BBLower = "bb_lower"
)

// OverlayStyle describes how an overlay is drawn.
type OverlayStyle struct {
	Name  string
	Label string
	Color string
	Width float64
}

// OverlayStyles lists overlays in draw order.
var OverlayStyles = []OverlayStyle{
	{Name: SMA20, Label: "SMA20", Color: "#1d4ed8", Width: 2},
	{Name: SMA50, Label: "SMA50", Color: "#0ea5e9", Width: 2},
	{Name: EMA12, Label: "EMA12", Color: "#22c55e", Width: 2},
	{Name: EMA26, Label: "EMA26", Color: "#f59e0b", Width: 2},
	{Name: BBUpper, Label: "BB upper", Color: "#a855f7", Width: 1},
	{Name: BBMid, Label: "BB mid", Color: "#7c3aed", Width: 1},
	{Name: BBLower, Label: "BB lower", Color: "#a855f7", Width: 1},
}

// RSIColor is the RSI line colour.
const RSIColor = "#6366f1"

// Toggles selects which overlays and panels are shown.
type Toggles struct {
	SMA20  bool `json:"sma20"`
	SMA50  bool `json:"sma50"`
	EMA12  bool `json:"ema12"`
	EMA26  bool `json:"ema26"`
	BB     bool `json:"bb"`
	RSI    bool `json:"rsi"`
	Volume bool `json:"volume"`
}

// DefaultToggles returns the initial toggle state.
func DefaultToggles() Toggles {
	return Toggles{SMA20: true, SMA50: true, RSI: true, Volume: true}
}

// Shows reports whether the named overlay is enabled.
func (t Toggles) Shows(name string) bool {
	switch name {
	case SMA20:
		return t.SMA20
	case SMA50:
		return t.SMA50
	case EMA12:
		return t.EMA12
	case EMA26:
		return t.EMA26
	case BBUpper, BBMid, BBLower:
		return t.BB
	default:
		return false
	}
}

// MapOverlays converts indicator rows into named line series. Rows with an
// unparsable timestamp or a missing value are skipped.
func MapOverlays(ind *models.IndicatorResponse) map[string][]models.LinePoint {
	out := map[string][]models.LinePoint{}
	if ind == nil {
		return out
	}
	for _, key := range []string{SMA20, SMA50, EMA12, EMA26} {
		if rows, ok := ind.Indicators[key]; ok {
			out[key] = toLine(rows, key)
		}
	}
	if rows, ok := ind.Indicators["bb"]; ok {
		out[BBUpper] = toLine(rows, "upper")
		out[BBMid] = toLine(rows, "mid")
		out[BBLower] = toLine(rows, "lower")
	}
	return out
}

// MapRSI returns the 14-period RSI series, accepting either "rsi14" or "rsi".
func MapRSI(ind *models.IndicatorResponse) []models.LinePoint {
	if ind == nil {
		return []models.LinePoint{}
	}
	for _, key := range []string{"rsi14", "rsi"} {
		if rows, ok := ind.Indicators[key]; ok {
			return toLine(rows, key)
		}
	}
	return []models.LinePoint{}
}

func toLine(rows []models.IndicatorRow, key string) []models.LinePoint {
	out := make([]models.LinePoint, 0, len(rows))
	for _, row := range rows {
		v, ok := row.Value(key)
		if !ok {
			continue
		}
		ts := row.TS()
		t, err := models.ParseTimestamp(ts)
		if err != nil {
			continue
		}
		out = append(out, models.LinePoint{TS: ts, Time: t, Value: v})
	}
	return out
}

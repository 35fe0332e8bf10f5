package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/models"
	"github.com/bobmcallan/stockview/internal/services/market"
	"github.com/bobmcallan/stockview/internal/services/portfolio"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("index.html").Funcs(template.FuncMap{
		"usd":    common.FormatUSDPtr,
		"usdv":   common.FormatUSD,
		"num":    common.FormatNumber,
		"pnlCls": pnlClass,
	}).ParseFS(templateFS, "templates/index.html"),
)

func pnlClass(v *float64) string {
	switch {
	case v == nil:
		return ""
	case *v > 0:
		return "pos"
	case *v < 0:
		return "neg"
	}
	return ""
}

// pageData is the model for templates/index.html.
type pageData struct {
	Version    string
	Query      market.Query
	QueryError string
	Toggles    market.Toggles
	ChartQuery template.URL
	Ranges     []models.Range
	Intervals  []models.Interval
	Overlays   []market.OverlayStyle
	Portfolio  portfolio.State
}

func chartQuery(q market.Query, t market.Toggles) string {
	v := url.Values{}
	v.Set("ticker", q.Ticker)
	v.Set("range", string(q.Range))
	v.Set("interval", string(q.Interval))
	v.Set(togglesMarker, "1")
	set := func(key string, on bool) {
		if on {
			v.Set(key, "1")
		}
	}
	set("sma20", t.SMA20)
	set("sma50", t.SMA50)
	set("ema12", t.EMA12)
	set("ema26", t.EMA26)
	set("bb", t.BB)
	set("rsi", t.RSI)
	set("volume", t.Volume)
	return v.Encode()
}

// handleIndex renders the viewer page. Chart images and portfolio
// mutations go through the JSON and PNG endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	data := pageData{
		Version:   common.GetVersion(),
		Toggles:   parseToggles(r.URL.Query()),
		Ranges:    models.AllowedRanges,
		Intervals: models.AllowedIntervals,
		Overlays:  market.OverlayStyles,
		Portfolio: s.app.Portfolio.Snapshot(),
	}

	query, err := s.marketQuery(r)
	if err != nil {
		data.QueryError = err.Error()
		query = market.Query{
			Ticker:   models.NormalizeTicker(r.URL.Query().Get("ticker")),
			Range:    models.DefaultRange,
			Interval: models.DefaultInterval,
		}
	} else {
		data.ChartQuery = template.URL(chartQuery(query, data.Toggles))
	}
	data.Query = query

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render page")
		WriteError(w, http.StatusInternalServerError, "Failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/bobmcallan/stockview/internal/services/chart"
	"github.com/bobmcallan/stockview/internal/services/market"
)

// togglesMarker is sent by the page form so unchecked boxes read as off.
const togglesMarker = "toggles"

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// parseToggles reads overlay toggles from the query. Without the marker
// and without any explicit toggle the defaults apply.
func parseToggles(q url.Values) market.Toggles {
	keys := []string{"sma20", "sma50", "ema12", "ema26", "bb", "rsi", "volume"}
	explicit := q.Has(togglesMarker)
	for _, k := range keys {
		if q.Has(k) {
			explicit = true
		}
	}
	if !explicit {
		return market.DefaultToggles()
	}
	return market.Toggles{
		SMA20:  truthy(q.Get("sma20")),
		SMA50:  truthy(q.Get("sma50")),
		EMA12:  truthy(q.Get("ema12")),
		EMA26:  truthy(q.Get("ema26")),
		BB:     truthy(q.Get("bb")),
		RSI:    truthy(q.Get("rsi")),
		Volume: truthy(q.Get("volume")),
	}
}

// marketQuery builds a market.Query from the request, falling back to the
// configured chart defaults.
func (s *Server) marketQuery(r *http.Request) (market.Query, error) {
	q := r.URL.Query()
	cfg := s.app.Config.Chart

	ticker := q.Get("ticker")
	if strings.TrimSpace(ticker) == "" {
		ticker = cfg.DefaultTicker
	}
	rng := q.Get("range")
	if rng == "" {
		rng = cfg.DefaultRange
	}
	interval := q.Get("interval")
	if interval == "" {
		interval = cfg.DefaultInterval
	}
	return market.ParseQuery(ticker, rng, interval)
}

// handleMarket handles GET /api/market?ticker&range&interval.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query, err := s.marketQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.app.Market.Load(r.Context(), query)
	if err != nil {
		writeOpError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handlePriceChart handles GET /chart/price.png.
func (s *Server) handlePriceChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query, err := s.marketQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.app.Market.Load(r.Context(), query)
	if err != nil {
		writeOpError(w, err)
		return
	}

	cfg := s.app.Config.Chart
	data, err := chart.RenderPrice(view, parseToggles(r.URL.Query()), chart.Options{Width: cfg.Width, Height: cfg.Height})
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writePNG(w, data)
}

// handleRSIChart handles GET /chart/rsi.png.
func (s *Server) handleRSIChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query, err := s.marketQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.app.Market.Load(r.Context(), query)
	if err != nil {
		writeOpError(w, err)
		return
	}

	cfg := s.app.Config.Chart
	data, err := chart.RenderRSI(view.RSI, query.Interval, chart.Options{Width: cfg.Width, Height: cfg.RSIHeight})
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writePNG(w, data)
}

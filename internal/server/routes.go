package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/stockview/internal/common"
)

// registerRoutes sets up all routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Page
	mux.HandleFunc("/", s.handleIndex)

	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Market
	mux.HandleFunc("/api/market", s.handleMarket)
	mux.HandleFunc("/chart/price.png", s.handlePriceChart)
	mux.HandleFunc("/chart/rsi.png", s.handleRSIChart)

	// Portfolio
	mux.HandleFunc("/api/portfolio", s.handlePortfolioRoot)
	mux.HandleFunc("/api/portfolio/load", s.handlePortfolioLoad)
	mux.HandleFunc("/api/portfolio/refresh", s.handlePortfolioRefresh)
	mux.HandleFunc("/api/portfolio/holdings", s.handleHoldingAdd)
	mux.HandleFunc("/api/portfolio/holdings/", s.handleHoldingDelete)
	mux.HandleFunc("/api/portfolio/edit", s.handleEditCancel)
	mux.HandleFunc("/api/portfolio/edit/", s.routeEdit)

	// Notifications
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/notifications/", s.handleNotificationDismiss)
	mux.HandleFunc("/ws", s.handleWS)
}

// routeEdit dispatches /api/portfolio/edit/{hid} by method.
func (s *Server) routeEdit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleEditBegin(w, r)
	case http.MethodPut:
		s.handleEditSave(w, r)
	case http.MethodDelete:
		s.handleEditCancel(w, r)
	default:
		RequireMethod(w, r, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	resp := map[string]interface{}{"status": "ok"}
	if strings.EqualFold(r.URL.Query().Get("backend"), "true") {
		if err := s.app.Backend.Health(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["backend"] = err.Error()
			WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp["backend"] = "ok"
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

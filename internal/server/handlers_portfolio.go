package server

import (
	"net/http"
	"strconv"
	"strings"
)

type createPortfolioRequest struct {
	Name string `json:"name"`
}

type addHoldingRequest struct {
	Ticker   string     `json:"ticker"`
	Qty      FlexString `json:"qty"`
	AvgPrice FlexString `json:"avg_price"`
}

type editInputsRequest struct {
	Qty      FlexString `json:"qty"`
	AvgPrice FlexString `json:"avg_price"`
}

func (s *Server) writeSnapshot(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, s.app.Portfolio.Snapshot())
}

// handlePortfolioRoot handles GET (snapshot), POST (create) and DELETE
// (drop the current portfolio) on /api/portfolio.
func (s *Server) handlePortfolioRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeSnapshot(w)
	case http.MethodPost:
		var req createPortfolioRequest
		if r.ContentLength != 0 {
			if !DecodeJSON(w, r, &req) {
				return
			}
		}
		if err := s.app.Portfolio.Create(r.Context(), req.Name); err != nil {
			writeOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, s.app.Portfolio.Snapshot())
	case http.MethodDelete:
		if err := s.app.Portfolio.DeletePortfolio(r.Context()); err != nil {
			writeOpError(w, err)
			return
		}
		s.writeSnapshot(w)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

// handlePortfolioLoad handles POST /api/portfolio/load?id=N. A missing id
// resolves the remembered portfolio or creates a new one.
func (s *Server) handlePortfolioLoad(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var id int64
	if raw := strings.TrimSpace(r.URL.Query().Get("id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "invalid id: "+raw)
			return
		}
		id = parsed
	}

	if err := s.app.Portfolio.ResolveOrCreate(r.Context(), id, s.app.Config.Portfolio.DefaultName); err != nil {
		writeOpError(w, err)
		return
	}
	s.writeSnapshot(w)
}

// handlePortfolioRefresh handles POST /api/portfolio/refresh.
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.app.Portfolio.Reload(r.Context()); err != nil {
		writeOpError(w, err)
		return
	}
	s.writeSnapshot(w)
}

// handleHoldingAdd handles POST /api/portfolio/holdings.
// Invalid numeric input is ignored and the unchanged snapshot returned.
func (s *Server) handleHoldingAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req addHoldingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := s.app.Portfolio.AddHolding(r.Context(), req.Ticker, string(req.Qty), string(req.AvgPrice)); err != nil {
		writeOpError(w, err)
		return
	}
	s.writeSnapshot(w)
}

// handleHoldingDelete handles DELETE /api/portfolio/holdings/{hid}.
func (s *Server) handleHoldingDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	hid, ok := PathID(w, r, "/api/portfolio/holdings/")
	if !ok {
		return
	}

	if err := s.app.Portfolio.DeleteHolding(r.Context(), hid); err != nil {
		writeOpError(w, err)
		return
	}
	s.writeSnapshot(w)
}

// handleEditBegin handles POST /api/portfolio/edit/{hid}.
func (s *Server) handleEditBegin(w http.ResponseWriter, r *http.Request) {
	hid, ok := PathID(w, r, "/api/portfolio/edit/")
	if !ok {
		return
	}
	if err := s.app.Portfolio.BeginEdit(hid); err != nil {
		writeOpError(w, err)
		return
	}
	s.writeSnapshot(w)
}

// handleEditSave handles PUT /api/portfolio/edit/{hid} with the current
// edit inputs.
func (s *Server) handleEditSave(w http.ResponseWriter, r *http.Request) {
	hid, ok := PathID(w, r, "/api/portfolio/edit/")
	if !ok {
		return
	}

	var req editInputsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := s.app.Portfolio.SetEditInputs(hid, string(req.Qty), string(req.AvgPrice)); err != nil {
		writeOpError(w, err)
		return
	}
	if err := s.app.Portfolio.SaveEdit(r.Context(), hid); err != nil {
		writeOpError(w, err)
		return
	}
	s.writeSnapshot(w)
}

// handleEditCancel handles DELETE /api/portfolio/edit[/{hid}].
func (s *Server) handleEditCancel(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	s.app.Portfolio.CancelEdit()
	s.writeSnapshot(w)
}

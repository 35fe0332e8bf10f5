package server

import (
	"net/http"
	"strings"
)

// handleNotifications handles GET /api/notifications (active toasts).
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.app.Notifier.Active(),
	})
}

// handleNotificationDismiss handles DELETE /api/notifications/{id}.
func (s *Server) handleNotificationDismiss(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := strings.TrimSpace(PathParam(r, "/api/notifications/", ""))
	if id == "" {
		WriteError(w, http.StatusBadRequest, "notification id is required")
		return
	}
	if !s.app.Notifier.Dismiss(id) {
		WriteError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWS upgrades to the toast websocket.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.app.Hub == nil {
		WriteError(w, http.StatusServiceUnavailable, "notifications unavailable")
		return
	}
	s.app.Hub.ServeWS(w, r)
}

package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/seanlongden/asa-student-portal/internal/services"
)

type SyncMetricsResponse struct {
	Success bool `json:"success"`
	services.SyncResult
}

func (s *Server) SyncMetrics(w http.ResponseWriter, r *http.Request) {
	result, err := s.Sync.Sync(r.Context(), *CurrentStudent(r))
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, SyncMetricsResponse{Success: true, SyncResult: result})
}

// SyncSocket streams sync events to admins. Browsers cannot set headers on a
// websocket handshake, so the admin token travels in the query string.
func (s *Server) SyncSocket(w http.ResponseWriter, r *http.Request) {
	if s.SyncHub == nil {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !s.AdminTokens.Enabled() {
		WriteError(w, http.StatusServiceUnavailable, "Admin API is not configured")
		return
	}
	query := r.URL.Query().Get("token")
	if query == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if _, err := s.AdminTokens.Parse(query); err != nil {
		if err == services.ErrNotAdmin {
			WriteError(w, http.StatusForbidden, "Not allowed")
			return
		}
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.SyncHub.Add(conn)
	defer func() {
		s.SyncHub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seanlongden/asa-student-portal/internal/services"
)

type AdminStudentsResponse struct {
	Students []StudentDTO `json:"students"`
}

func (s *Server) AdminListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.Admin.ListStudents(r.Context())
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	items := make([]StudentDTO, 0, len(students))
	for _, student := range students {
		items = append(items, toStudentDTO(student))
	}
	WriteJSON(w, http.StatusOK, AdminStudentsResponse{Students: items})
}

func (s *Server) AdminAddLead(w http.ResponseWriter, r *http.Request) {
	var req services.LeadInput
	if err := decodeJSON(w, r, &req); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	lead, err := s.Admin.AddLead(r.Context(), chi.URLParam(r, "studentId"), req)
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	s.Log.Info("lead added", "admin", CurrentAdmin(r), "studentId", lead.StudentID)
	WriteJSON(w, http.StatusCreated, toLeadDTO(lead))
}

func (s *Server) AdminAddClient(w http.ResponseWriter, r *http.Request) {
	var req services.ClientInput
	if err := decodeJSON(w, r, &req); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	client, err := s.Admin.AddClient(r.Context(), chi.URLParam(r, "studentId"), req)
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	s.Log.Info("client added", "admin", CurrentAdmin(r), "studentId", client.StudentID)
	WriteJSON(w, http.StatusCreated, toClientDTO(client))
}

// AdminSyncAll runs the weekly sweep on demand. Per-student failures are
// counted in the summary rather than failing the request.
func (s *Server) AdminSyncAll(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Sync.SyncAll(r.Context())
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) AdminSystem(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, services.CaptureHost(s.Config.MetricsDiskPath))
}

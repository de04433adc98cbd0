package httpapi

import (
	"net/http"
)

type DashboardResponse struct {
	Student StudentDTO  `json:"student"`
	Leads   []LeadDTO   `json:"leads"`
	Clients []ClientDTO `json:"clients"`
	Metrics []MetricDTO `json:"metrics"`
}

func (s *Server) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := s.Dashboard.Dashboard(r.Context(), *CurrentStudent(r))
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	resp := DashboardResponse{
		Student: toStudentDTO(data.Student),
		Leads:   make([]LeadDTO, 0, len(data.Leads)),
		Clients: make([]ClientDTO, 0, len(data.Clients)),
		Metrics: make([]MetricDTO, 0, len(data.Metrics)),
	}
	for _, lead := range data.Leads {
		resp.Leads = append(resp.Leads, toLeadDTO(lead))
	}
	for _, client := range data.Clients {
		resp.Clients = append(resp.Clients, toClientDTO(client))
	}
	for _, metric := range data.Metrics {
		resp.Metrics = append(resp.Metrics, toMetricDTO(metric))
	}
	WriteJSON(w, http.StatusOK, resp)
}

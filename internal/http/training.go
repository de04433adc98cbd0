package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type CompleteModuleRequest struct {
	ModuleID string `json:"moduleId"`
}

type CompleteModuleResponse struct {
	Success  bool        `json:"success"`
	Progress ProgressDTO `json:"progress"`
}

func (s *Server) TrainingOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.Progress.Overview(r.Context(), CurrentStudent(r).ID)
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, overview)
}

func (s *Server) TrainingModule(w http.ResponseWriter, r *http.Request) {
	detail, err := s.Progress.Module(r.Context(), CurrentStudent(r).ID, chi.URLParam(r, "moduleId"))
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) CompleteModule(w http.ResponseWriter, r *http.Request) {
	var req CompleteModuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	record, err := s.Progress.Complete(r.Context(), CurrentStudent(r).ID, req.ModuleID)
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, CompleteModuleResponse{Success: true, Progress: toProgressDTO(record)})
}

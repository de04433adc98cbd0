package httpapi

import (
	"net/http"

	"github.com/seanlongden/asa-student-portal/internal/services"
)

// UpdateSettingsRequest distinguishes absent fields (nil) from empty ones.
type UpdateSettingsRequest struct {
	EmailTool *string `json:"emailTool"`
	APIKey    *string `json:"apiKey"`
	Company   *string `json:"company"`
}

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.Enrollment.Settings(*CurrentStudent(r)))
}

func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	err := s.Enrollment.UpdateSettings(r.Context(), *CurrentStudent(r), services.SettingsUpdate{
		EmailTool: req.EmailTool,
		APIKey:    req.APIKey,
		Company:   req.Company,
	})
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

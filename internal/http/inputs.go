package httpapi

import (
	"net/http"
)

type SaveInputRequest struct {
	ModuleID    string `json:"moduleId"`
	ModuleOrder int    `json:"moduleOrder"`
	InputKey    string `json:"inputKey"`
	Value       string `json:"value"`
}

type SaveInputResponse struct {
	Success bool     `json:"success"`
	Input   InputDTO `json:"input"`
}

type InputsResponse struct {
	Inputs []InputDTO `json:"inputs"`
}

func (s *Server) ListInputs(w http.ResponseWriter, r *http.Request) {
	inputs, err := s.Inputs.List(r.Context(), CurrentStudent(r).ID, r.URL.Query().Get("moduleId"))
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	items := make([]InputDTO, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, toInputDTO(in))
	}
	WriteJSON(w, http.StatusOK, InputsResponse{Inputs: items})
}

func (s *Server) SaveInput(w http.ResponseWriter, r *http.Request) {
	var req SaveInputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	saved, err := s.Inputs.Save(r.Context(), CurrentStudent(r).ID, req.ModuleID, req.ModuleOrder, req.InputKey, req.Value)
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, SaveInputResponse{Success: true, Input: toInputDTO(saved)})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seanlongden/asa-student-portal/internal/logger"
	"github.com/seanlongden/asa-student-portal/internal/services"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// mapServiceError renders err as its ServiceError status and kind. Anything
// else becomes a bare 500. Upstream causes are logged, never echoed.
func mapServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	var serr services.ServiceError
	if errors.As(err, &serr) {
		if serr.Cause != nil {
			log.Error(serr.Message, "kind", serr.Kind, "error", serr.Cause)
		}
		WriteJSON(w, serr.Status, ErrorResponse{Message: serr.Message, Kind: string(serr.Kind)})
		return
	}
	log.Error("unhandled error", "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return services.ErrInvalidInput("Invalid payload")
	}
	return nil
}

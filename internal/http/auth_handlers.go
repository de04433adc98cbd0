package httpapi

import (
	"net/http"
)

type MagicLinkRequest struct {
	Email string `json:"email"`
}

func (s *Server) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	if err := s.Enrollment.RequestLoginLink(r.Context(), req.Email); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// VerifyMagicLink exchanges a login token for the session cookie and sends
// the browser on to the dashboard, or to reactivation when billing lapsed.
func (s *Server) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, s.Config.PublicURL+"/?error=invalid-link", http.StatusFound)
		return
	}
	result, ok := s.Enrollment.VerifyLogin(r.Context(), token)
	if !ok {
		http.Redirect(w, r, s.Config.PublicURL+"/?error=expired-link", http.StatusFound)
		return
	}
	s.setSession(w, result.Email)
	target := "/reactivate"
	if result.Active {
		target = "/dashboard"
	}
	http.Redirect(w, r, s.Config.PublicURL+target, http.StatusFound)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	http.Redirect(w, r, s.Config.PublicURL+"/", http.StatusFound)
}

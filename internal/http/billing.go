package httpapi

import (
	"io"
	"net/http"
)

type CheckoutRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Reactivate bool   `json:"reactivate"`
}

type URLResponse struct {
	URL string `json:"url"`
}

// Checkout starts a Stripe checkout. Reactivation takes the email from the
// session cookie instead of the body.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	email := req.Email
	if req.Reactivate {
		email = sessionEmail(r)
	}
	url, err := s.Enrollment.Checkout(r.Context(), email, req.Name)
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, URLResponse{URL: url})
}

func (s *Server) BillingPortal(w http.ResponseWriter, r *http.Request) {
	url, err := s.Enrollment.BillingPortal(r.Context(), *CurrentStudent(r))
	if err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, URLResponse{URL: url})
}

// StripeWebhook verifies the signature before touching state; an event that
// fails verification has no effect.
func (s *Server) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	event, err := s.Billing.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		s.Log.Warn("webhook signature verification failed", "error", err)
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid signature", Kind: "invalid_input"})
		return
	}
	if err := s.Enrollment.HandleBillingEvent(r.Context(), event); err != nil {
		mapServiceError(w, s.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/seanlongden/asa-student-portal/internal/models"
	"github.com/seanlongden/asa-student-portal/internal/services"
)

type contextKey string

const (
	ctxStudent contextKey = "student"
	ctxAdmin   contextKey = "admin"
)

const (
	SessionCookie = "student_email"
	sessionMaxAge = 30 * 24 * time.Hour
)

func sessionEmail(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func (s *Server) setSession(w http.ResponseWriter, email string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    email,
		Path:     "/",
		MaxAge:   int(sessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.Config.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Config.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireStudent admits only students with an active subscription.
func RequireStudent(gate *services.Gate) func(http.Handler) http.Handler {
	return withStudent(gate, gate.Authorize)
}

// IdentifyStudent admits any known student, whatever the subscription state.
func IdentifyStudent(gate *services.Gate) func(http.Handler) http.Handler {
	return withStudent(gate, gate.Identify)
}

func withStudent(gate *services.Gate, resolve func(ctx context.Context, email string) (*models.Student, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			student, err := resolve(r.Context(), sessionEmail(r))
			if err != nil {
				mapServiceError(w, gate.Log, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxStudent, student)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentStudent(r *http.Request) *models.Student {
	if value, ok := r.Context().Value(ctxStudent).(*models.Student); ok {
		return value
	}
	return nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// WithAdmin requires a bearer token minted by AdminTokens with the admin role.
// Without a configured secret every request gets 503.
func WithAdmin(tokens services.AdminTokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.Enabled() {
				WriteError(w, http.StatusServiceUnavailable, "Admin API is not configured")
				return
			}
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			claims, err := tokens.Parse(tokenStr)
			if err == services.ErrNotAdmin {
				WriteError(w, http.StatusForbidden, "Not allowed")
				return
			}
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			ctx := context.WithValue(r.Context(), ctxAdmin, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentAdmin(r *http.Request) string {
	if value, ok := r.Context().Value(ctxAdmin).(string); ok {
		return value
	}
	return ""
}

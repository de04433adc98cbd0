package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seanlongden/asa-student-portal/internal/catalog"
	"github.com/seanlongden/asa-student-portal/internal/config"
	"github.com/seanlongden/asa-student-portal/internal/logger"
	"github.com/seanlongden/asa-student-portal/internal/services"
)

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	services.StudentStore
	services.ProgressStore
	services.InputStore
	services.MetricsStore
	services.DashboardStore
	services.AdminStore
	Ping(ctx context.Context) error
}

type Deps struct {
	Store    Store
	Billing  services.Billing
	Notifier services.Notifier
	Throttle services.Throttle
	Fetcher  services.MetricsFetcher
	Catalog  *catalog.Catalog
	Sealer   *services.KeySealer
	Hub      *services.SyncHub
	Log      *logger.Logger
}

type Server struct {
	Config      config.Config
	Log         *logger.Logger
	Store       Store
	Billing     services.Billing
	Gate        *services.Gate
	Enrollment  *services.EnrollmentService
	Progress    *services.ProgressService
	Inputs      *services.InputService
	Dashboard   *services.DashboardService
	Sync        *services.MetricsSync
	Admin       *services.AdminService
	AdminTokens services.AdminTokens
	SyncHub     *services.SyncHub
}

func NewServer(cfg config.Config, deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	tokens := services.MagicTokens{Secret: []byte(cfg.MagicLinkSecret), TTL: cfg.MagicLinkTTL}
	return &Server{
		Config:  cfg,
		Log:     log,
		Store:   deps.Store,
		Billing: deps.Billing,
		Gate:    &services.Gate{Billing: deps.Billing, Students: deps.Store, Log: log},
		Enrollment: &services.EnrollmentService{
			Students:  deps.Store,
			Billing:   deps.Billing,
			Notifier:  deps.Notifier,
			Tokens:    tokens,
			Throttle:  deps.Throttle,
			Sealer:    deps.Sealer,
			PublicURL: cfg.PublicURL,
			Log:       log.With("component", "enrollment"),
		},
		Progress:  services.NewProgressService(deps.Store, deps.Store, deps.Catalog),
		Inputs:    services.NewInputService(deps.Store),
		Dashboard: &services.DashboardService{Store: deps.Store},
		Sync: &services.MetricsSync{
			Store:     deps.Store,
			Fetcher:   deps.Fetcher,
			Sealer:    deps.Sealer,
			Publisher: publisherOrNil(deps.Hub),
			Log:       log.With("component", "metrics-sync"),
		},
		Admin: &services.AdminService{Store: deps.Store},
		AdminTokens: services.AdminTokens{
			Secret: []byte(cfg.AdminJWTSecret),
			Issuer: cfg.AdminJWTIssuer,
		},
		SyncHub: deps.Hub,
	}
}

// publisherOrNil keeps a nil hub from becoming a non-nil interface.
func publisherOrNil(hub *services.SyncHub) services.SyncPublisher {
	if hub == nil {
		return nil
	}
	return hub
}

func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.Log))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/magic-link", s.RequestMagicLink)
		api.Get("/auth/verify", s.VerifyMagicLink)
		api.Get("/auth/logout", s.Logout)

		api.Post("/stripe/checkout", s.Checkout)
		api.Post("/stripe/webhook", s.StripeWebhook)

		api.With(IdentifyStudent(s.Gate)).Get("/settings", s.GetSettings)

		api.Group(func(student chi.Router) {
			student.Use(RequireStudent(s.Gate))
			student.Get("/training", s.TrainingOverview)
			student.Get("/training/{moduleId}", s.TrainingModule)
			student.Post("/training/complete", s.CompleteModule)
			student.Get("/inputs", s.ListInputs)
			student.Post("/inputs", s.SaveInput)
			student.Get("/dashboard", s.StudentDashboard)
			student.Post("/settings", s.UpdateSettings)
			student.Post("/metrics/sync", s.SyncMetrics)
			student.Post("/stripe/portal", s.BillingPortal)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAdmin(s.AdminTokens))
			admin.Get("/students", s.AdminListStudents)
			admin.Post("/students/{studentId}/leads", s.AdminAddLead)
			admin.Post("/students/{studentId}/clients", s.AdminAddClient)
			admin.Post("/metrics/sync", s.AdminSyncAll)
			admin.Get("/system", s.AdminSystem)
		})
	})

	r.Get("/ws/admin/sync", s.SyncSocket)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.Store != nil {
		if err := s.Store.Ping(ctx); err != nil {
			s.Log.Warn("health check failed", "error", err)
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glowgrace/booking-platform/internal/appointments"
	"github.com/glowgrace/booking-platform/internal/catalog"
	httpmiddleware "github.com/glowgrace/booking-platform/internal/http/middleware"
	"github.com/glowgrace/booking-platform/internal/payments"
	"github.com/glowgrace/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	CatalogHandler      *catalog.Handler
	PaymentsHandler     *payments.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.CatalogHandler != nil {
		r.Get("/api/services", cfg.CatalogHandler.ListServices)
	}

	if cfg.PaymentsHandler != nil {
		r.Route("/api/payments", func(pay chi.Router) {
			pay.Post("/create-order", cfg.PaymentsHandler.CreateOrder)
			pay.Post("/verify", cfg.PaymentsHandler.Verify)
		})
	}

	if cfg.AppointmentsHandler != nil {
		admin := httpmiddleware.AdminJWT(cfg.AdminAuthSecret)
		r.Route("/api/appointments", func(appts chi.Router) {
			// Booking is public; management and reporting are admin-only.
			appts.Post("/", cfg.AppointmentsHandler.Create)
			appts.With(admin).Get("/", cfg.AppointmentsHandler.List)
			appts.With(admin).Get("/analytics", cfg.AppointmentsHandler.Analytics)
			appts.With(admin).Get("/{id}", cfg.AppointmentsHandler.Get)
			appts.With(admin).Put("/{id}", cfg.AppointmentsHandler.Update)
		})
	}

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/booking"
)

type RouterConfig struct {
	Service         *booking.Service
	Redis           *redis.Client // optional
	RegisterLimiter *RateLimiter  // optional
	Logger          *zap.Logger
	Env             string
	Version         string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	health := NewHealthHandler(cfg.Service, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	register := registerHandler(cfg.Service)
	appointments := appointmentRoutes(cfg.Service)

	r.With(RateLimit(cfg.RegisterLimiter)).Post("/register", register)
	r.Route("/appointments", appointments)

	// Legacy /api paths kept for existing web clients.
	r.Route("/api", func(r chi.Router) {
		r.With(RateLimit(cfg.RegisterLimiter)).Post("/auth/register", register)
		r.Route("/appointments", appointments)
	})

	return r
}

func appointmentRoutes(svc *booking.Service) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", createAppointmentHandler(svc))
		r.Get("/", listAppointmentsHandler(svc))
		r.Get("/{id}", getAppointmentHandler(svc))
	}
}

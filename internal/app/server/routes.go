package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/banking"
	"workforce/internal/domain/clients"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/payroll"
	"workforce/internal/domain/profiles"
	"workforce/internal/domain/projects"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/rosters"
	"workforce/internal/domain/workhours"
	"workforce/internal/transport/http/api"
	audithandler "workforce/internal/transport/http/handlers/audit"
	authhandler "workforce/internal/transport/http/handlers/auth"
	bankinghandler "workforce/internal/transport/http/handlers/banking"
	clientshandler "workforce/internal/transport/http/handlers/clients"
	notificationshandler "workforce/internal/transport/http/handlers/notifications"
	payrollhandler "workforce/internal/transport/http/handlers/payroll"
	profileshandler "workforce/internal/transport/http/handlers/profiles"
	projectshandler "workforce/internal/transport/http/handlers/projects"
	reportshandler "workforce/internal/transport/http/handlers/reports"
	rostershandler "workforce/internal/transport/http/handlers/rosters"
	workhourshandler "workforce/internal/transport/http/handlers/workhours"
	"workforce/internal/transport/http/middleware"
)

type services struct {
	auth          *auth.Service
	profiles      *profiles.Service
	clients       *clients.Service
	projects      *projects.Service
	hours         *workhours.Service
	rosters       *rosters.Service
	payroll       *payroll.Service
	banking       *banking.Service
	reports       *reports.Service
	notifications *notifications.Service
	audit         *audit.Service
	idempotency   *middleware.IdempotencyStore
}

func (a *App) routes(s services) http.Handler {
	cfg := a.Config
	general := middleware.RateLimitConfig{Requests: cfg.RateLimitPerMinute, Window: time.Minute}
	strict := middleware.RateLimit(general.Strict(cfg.StrictRateRatio), middleware.RoutePrefixKey(middleware.ActorOrIPKey))

	router := chi.NewRouter()
	router.Use(middleware.RequestContext(a.proxies))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.ReadinessPingTimeout)
		defer cancel()
		if err := a.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "api")
		})
		r.Use(middleware.Metrics(a.Metrics))
		r.Use(middleware.Logger)
		r.Use(middleware.SecureHeaders(cfg.IsProduction()))
		r.Use(middleware.CORS(cfg.CORSOrigins))
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		r.Use(middleware.Auth(cfg.JWTSecret, s.auth))
		r.Use(middleware.RateLimit(general, middleware.ActorOrIPKey))

		authHandler := authhandler.NewHandler(s.auth, s.audit)
		r.Group(func(r chi.Router) {
			r.Use(strict)
			authHandler.RegisterPublicRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			authHandler.RegisterRoutes(r)
			profileshandler.NewHandler(s.profiles, s.auth, s.audit).RegisterRoutes(r)
			clientshandler.NewHandler(s.clients, s.auth, s.audit).RegisterRoutes(r)
			projectshandler.NewHandler(s.projects, s.auth, s.audit).RegisterRoutes(r)
			workhourshandler.NewHandler(s.hours, s.auth, s.audit).RegisterRoutes(r)
			rostershandler.NewHandler(s.rosters, s.auth, s.audit).RegisterRoutes(r)
			payrollhandler.NewHandler(s.payroll, s.auth, s.audit, s.idempotency, cfg.PayslipLinkTTL).RegisterRoutes(r, strict)
			bankinghandler.NewHandler(s.banking, s.auth, s.audit).RegisterRoutes(r)
			reportshandler.NewHandler(s.reports, s.auth).RegisterRoutes(r)
			notificationshandler.NewHandler(s.notifications).RegisterRoutes(r)
			audithandler.NewHandler(s.audit, s.auth).RegisterRoutes(r)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
		})
	})
	return router
}

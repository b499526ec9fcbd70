package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/projtrack-notify/internal/application/notification"
	"github.com/projtrack-notify/internal/application/pushtoken"
	"github.com/projtrack-notify/internal/config"
	"github.com/projtrack-notify/internal/domain"
	"github.com/projtrack-notify/internal/transport/http/handler"
	appmiddleware "github.com/projtrack-notify/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// rate limiters' background sweeps.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTVerifier)

	// Device registration: 5 requests/second, burst of 10.
	registrationRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)
	// Producers are trusted backends but a runaway loop should not flood the store.
	producerRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(50), 100)

	notifSvc := notification.NewService(deps.NotificationRepo)
	tokenSvc := pushtoken.NewService(deps.PushTokenRepo)

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(notifSvc)
	tokenH := handler.NewPushTokenHandler(tokenSvc)
	dispatchH := handler.NewDispatchHandler(deps.Dispatcher)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.With(registrationRL.Limit).Post("/push-tokens", tokenH.Register)
			r.Delete("/push-tokens/{token}", tokenH.Unregister)

			// Recipients
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleStudent, domain.RoleFaculty))

				r.Get("/notifications", notifH.List)
				r.Put("/notifications/{id}", notifH.MarkAsRead)
			})

			// Producers
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleService))
				r.Use(producerRL.Limit)

				r.Post("/notifications", dispatchH.Create)
				r.Post("/events/project-assigned", dispatchH.ProjectAssigned)
				r.Post("/events/task-assigned", dispatchH.TaskAssigned)
				r.Post("/events/review-posted", dispatchH.ReviewPosted)
				r.Post("/events/forum-posts", dispatchH.ForumPostCreated)
				r.Post("/events/task-completed", dispatchH.TaskCompleted)
			})
		})
	})

	return r
}

package rest

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/access-management/api"
	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/auth"
	"github.com/frahmantamala/access-management/internal/request"
	"github.com/frahmantamala/access-management/internal/software"
	"github.com/frahmantamala/access-management/internal/transport/middleware"
	"github.com/frahmantamala/access-management/internal/transport/swagger"
	"github.com/frahmantamala/access-management/internal/user"
)

// Dependencies are the handlers and settings the router mounts.
type Dependencies struct {
	DB              *sql.DB
	AuthHandler     *auth.Handler
	RBAC            *auth.RBACAuthorization
	UserHandler     *user.Handler
	SoftwareHandler *software.Handler
	RequestHandler  *request.Handler

	AllowedOrigins        []string
	AuthRequestsPerMinute int
	MetricsEnabled        bool
	MetricsPath           string
}

func NewRouter(deps Dependencies) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, deps)
	return router
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.DB)
	rbac := deps.RBAC

	// Apply global middleware
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CORS(deps.AllowedOrigins))
	if deps.MetricsEnabled {
		router.Use(middleware.Metrics)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get(swagger.DocumentPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Document())
	})
	router.Handle("/swagger/*", swagger.Handler())

	if deps.MetricsEnabled {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.LoggingMiddleware)

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Group(func(pub chi.Router) {
				pub.Use(middleware.RateLimitByIP(deps.AuthRequestsPerMinute))
				pub.Post("/signup", deps.AuthHandler.Signup)
				pub.Post("/login", deps.AuthHandler.Login)
			})
			ar.With(deps.AuthHandler.AuthMiddleware).Get("/me", deps.UserHandler.GetCurrentUser)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			pr.Route("/software", func(sr chi.Router) {
				sr.With(rbac.RequireCapability(internal.CapReadSoftware)).Get("/", deps.SoftwareHandler.ListSoftware)
				sr.With(rbac.RequireCapability(internal.CapReadSoftware)).Get("/{id}", deps.SoftwareHandler.GetSoftware)

				sr.Group(func(ad chi.Router) {
					ad.Use(rbac.RequireCapability(internal.CapManageSoftware))
					ad.Post("/", deps.SoftwareHandler.CreateSoftware)
					ad.Put("/{id}", deps.SoftwareHandler.UpdateSoftware)
					ad.Delete("/{id}", deps.SoftwareHandler.DeleteSoftware)
				})
			})

			pr.Route("/requests", func(rr chi.Router) {
				rr.With(rbac.RequireCapability(internal.CapCreateRequest)).Post("/", deps.RequestHandler.CreateRequest)
				rr.With(rbac.RequireCapability(internal.CapListOwnRequests)).Get("/my-requests", deps.RequestHandler.GetMyRequests)
				rr.With(rbac.RequireCapability(internal.CapListPendingRequests)).Get("/pending", deps.RequestHandler.GetPendingRequests)
				rr.With(rbac.RequireCapability(internal.CapRequestStats)).Get("/stats", deps.RequestHandler.GetRequestStats)
				rr.With(rbac.RequireCapability(internal.CapViewOwnRequest)).Get("/{id}", deps.RequestHandler.GetRequest)
				rr.With(rbac.RequireCapability(internal.CapReviewRequest)).Patch("/{id}/status", deps.RequestHandler.UpdateRequestStatus)
			})

			pr.With(rbac.RequireCapability(internal.CapManageUsers)).Patch("/users/{id}/role", deps.UserHandler.ChangeRole)
		})
	})
}

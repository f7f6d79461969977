package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/users-api/internal/auth"
	"github.com/redmonkez12/users-api/internal/httputil"
	"github.com/redmonkez12/users-api/internal/logging"
	"github.com/redmonkez12/users-api/internal/metrics"
	"github.com/redmonkez12/users-api/internal/telemetry"
	"github.com/redmonkez12/users-api/internal/user"
)

const banner = "The App is Running! 🚀"

// RouterDeps groups everything the router wires together.
type RouterDeps struct {
	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	AuthMiddleware *auth.Middleware
	Metrics        *metrics.Collector
	Logger         *logging.Logger
	TrustedOrigins []string
	EnableSwagger  bool
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(deps.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(telemetry.Middleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(logging.RequestLogger(deps.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, "Route not found!", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, "Method not allowed!", http.StatusMethodNotAllowed)
	})

	// Public routes
	r.Get("/", handleBanner)
	r.Get("/health", handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
	if deps.EnableSwagger {
		deps.Logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Post("/login", deps.AuthHandler.Login)

	// Protected routes (require authentication)
	r.Route("/users", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Get("/", deps.UserHandler.List)
		r.Post("/", deps.UserHandler.Create)
		r.Get("/by-email", deps.UserHandler.GetByEmail)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", deps.UserHandler.GetByID)
			r.Put("/", deps.UserHandler.Update)
			r.Patch("/", deps.UserHandler.UpdatePassword)
			r.Delete("/", deps.UserHandler.Delete)
		})
	})

	return r
}

// handleBanner is the liveness banner
// @Summary      Liveness banner
// @Tags         health
// @Produce      plain
// @Success      200 {string} string
// @Router       / [get]
func handleBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(banner))
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} httputil.SuccessResponse
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondSuccess(w, map[string]string{"status": "api is running"}, http.StatusOK)
}

package router

import (
	"net/http"

	"github.com/gorilla/mux"

	apicontext "github.com/omnistat/platform-server/internal/api/http/context"
	"github.com/omnistat/platform-server/internal/api/http/handler"
	"github.com/omnistat/platform-server/internal/api/http/middleware"
	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/service"
)

// Router wires handlers and middleware into the HTTP route table.
type Router struct {
	authService      *service.Auth
	analyticsService *service.Analytics
	healthService    *service.Health
	tokenService     *service.TokenService
	contextManager   *apicontext.Manager
	logger           *logger.Logger
}

func New(
	authService *service.Auth,
	analyticsService *service.Analytics,
	healthService *service.Health,
	tokenService *service.TokenService,
	contextManager *apicontext.Manager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:      authService,
		analyticsService: analyticsService,
		healthService:    healthService,
		tokenService:     tokenService,
		contextManager:   contextManager,
		logger:           logger,
	}
}

// Register builds the route table. Registration, login and health are
// public; every other route requires a bearer token.
func (r *Router) Register() http.Handler {
	root := mux.NewRouter()

	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, r.logger)

	root.Use(logging.Handle)

	healthHandler := handler.NewHealth(r.healthService)
	root.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	authHandler := handler.NewAuth(r.authService, r.tokenService, r.contextManager, r.logger)
	analyticsHandler := handler.NewAnalytics(r.analyticsService, r.contextManager, r.logger)

	auth := root.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	authProtected := root.PathPrefix("/auth").Subrouter()
	authProtected.Use(authenticate.Handle)
	authProtected.HandleFunc("/verify", authHandler.Verify).Methods(http.MethodGet)
	authProtected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/profile", authHandler.GetProfile).Methods(http.MethodGet)
	authProtected.HandleFunc("/profile", authHandler.UpdateProfile).Methods(http.MethodPatch)
	authProtected.HandleFunc("/users/{id}/deactivate", authHandler.DeactivateUser).Methods(http.MethodPost)
	authProtected.HandleFunc("/users/{id}", authHandler.DeleteUser).Methods(http.MethodDelete)

	analytics := root.PathPrefix("/analytics").Subrouter()
	analytics.Use(authenticate.Handle)
	analytics.HandleFunc("/events", analyticsHandler.RecordEvent).Methods(http.MethodPost)
	analytics.HandleFunc("/metrics", analyticsHandler.RecordMetric).Methods(http.MethodPost)
	analytics.HandleFunc("/metrics", analyticsHandler.GetMetrics).Methods(http.MethodGet)
	analytics.HandleFunc("/metrics/batch", analyticsHandler.RecordMetricsBatch).Methods(http.MethodPost)
	analytics.HandleFunc("/usage/{id}", analyticsHandler.UsageStats).Methods(http.MethodGet)
	analytics.HandleFunc("/costs", analyticsHandler.CostBreakdown).Methods(http.MethodGet)
	analytics.HandleFunc("/dashboard", analyticsHandler.Dashboard).Methods(http.MethodGet)

	return root
}

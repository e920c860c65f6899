package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/transportconnect/marketplace/docs"
	"github.com/transportconnect/marketplace/internal/api/handler"
	"github.com/transportconnect/marketplace/internal/api/middleware"
	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
	healthhandlers "github.com/transportconnect/marketplace/internal/infrastructure/http/handlers"
)

const metricsSubsystem = "transportconnect"

// Dependencies are the services and probes the HTTP layer is built on.
type Dependencies struct {
	JWTSecret     string
	Auth          ports.AuthService
	Demandes      ports.DemandeService
	Annonces      ports.AnnonceService
	Notifications ports.NotificationService
	Stats         ports.StatsService
	Positions     handler.PositionDispatcher
	LoginLimiter  ports.RateLimiter
	Health        *healthhandlers.HealthHandler
	Readiness     *healthhandlers.HealthDependenciesHandler
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddleware(metricsSubsystem))

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", deps.Health.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", deps.Readiness.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Auth)
	demandeHandler := handler.NewDemandeHandler(deps.Demandes)
	positionHandler := handler.NewPositionHandler(deps.Positions)
	annonceHandler := handler.NewAnnonceHandler(deps.Annonces)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	statsHandler := handler.NewStatsHandler(deps.Stats)

	v1 := e.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login, middleware.RateLimit(deps.LoginLimiter, deps.Logger))
	v1.GET("/demandes/suivi/:numeroSuivi", demandeHandler.Track)

	// --- Authenticated routes ---
	authed := v1.Group("", middleware.Auth(deps.JWTSecret))
	can := middleware.RequirePermission

	authed.GET("/auth/me", authHandler.Me)

	authed.POST("/annonces", annonceHandler.Create, can(domain.ActionCreateAnnonce))
	authed.GET("/annonces", annonceHandler.List)
	authed.GET("/annonces/:id", annonceHandler.Get)
	authed.PUT("/annonces/:id/statut", annonceHandler.UpdateStatus, can(domain.ActionManageAnnonce))
	authed.DELETE("/annonces/:id", annonceHandler.Delete, can(domain.ActionDeleteAnnonce))

	authed.POST("/demandes", demandeHandler.Create, can(domain.ActionCreateDemande))
	authed.GET("/demandes", demandeHandler.List)
	authed.GET("/demandes/:id", demandeHandler.Get)
	authed.PUT("/demandes/:id/reponse", demandeHandler.Respond, can(domain.ActionRespondDemande))
	authed.PUT("/demandes/:id/statut", demandeHandler.UpdateStatus, can(domain.ActionUpdateStatus))
	authed.PUT("/demandes/:id/annuler", demandeHandler.Cancel, can(domain.ActionCancelDemande))
	authed.POST("/demandes/:id/messages", demandeHandler.AddMessage, can(domain.ActionSendMessage))
	authed.POST("/demandes/:id/evaluation", demandeHandler.Evaluate, can(domain.ActionEvaluate))
	authed.POST("/demandes/:id/position", positionHandler.Receive, can(domain.ActionReportPosition))

	authed.GET("/notifications", notificationHandler.List)
	authed.PUT("/notifications/:id/lue", notificationHandler.MarkRead)

	authed.GET("/stats/me", statsHandler.Me)
	authed.GET("/admin/stats", statsHandler.Platform, can(domain.ActionViewAdminStats))

	return e
}

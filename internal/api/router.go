package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/admin-api/docs"
	"github.com/99minutos/admin-api/internal/api/handler"
	"github.com/99minutos/admin-api/internal/api/middleware"
	"github.com/99minutos/admin-api/internal/core/ports"
)

const metricsSubsystem = "admin"

// Dependencies are the collaborators the HTTP surface is built from. Every
// one is created once per process by the caller.
type Dependencies struct {
	AuthService ports.AuthService
	UserService ports.UserService
	RoleService ports.RoleService
	Codec       ports.TokenCodec
	Users       ports.UserReader
	Checks      map[string]handler.DependencyCheck
	Logger      zerolog.Logger
	BasePath    string
	ServiceName string
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
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
	e.Use(middleware.Tracing(deps.ServiceName))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	roleHandler := handler.NewRoleHandler(deps.RoleService)
	authMiddleware := middleware.Auth(deps.Codec, deps.Users)

	basePath := deps.BasePath
	if basePath == "/" {
		basePath = ""
	}
	g := e.Group(basePath)

	// --- Auth routes ---
	g.POST("/login", authHandler.Login)
	g.POST("/login/request", authHandler.RequestLink)
	g.POST("/refresh", authHandler.Refresh)

	// --- User routes ---
	users := g.Group("/users", authMiddleware)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/me", userHandler.Me)
	users.GET("/:userId", userHandler.Get)
	users.PUT("/:userId", userHandler.Update)
	users.DELETE("/:userId", userHandler.Delete)

	// --- Role routes ---
	g.GET("/roles", roleHandler.List, authMiddleware)

	return e
}

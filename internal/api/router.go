package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/studioshot/backdrop-system/docs"
	"github.com/studioshot/backdrop-system/internal/api/handler"
	"github.com/studioshot/backdrop-system/internal/api/middleware"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// Deps carries everything the router needs. Services are constructed in
// main so the pipeline dispatcher and the HTTP layer share one wiring.
type Deps struct {
	Mongo       *mongo.Database
	Redis       *redis.Client
	JWTSecret   string
	Generations ports.GenerationService
	Credits     ports.CreditService
	Auth        ports.AuthService
	Users       ports.UserRepository
	Styles      ports.StyleRepository
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("backdrop"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	generationHandler := handler.NewGenerationHandler(deps.Generations)
	userHandler := handler.NewUserHandler(deps.Users, deps.Credits)
	styleHandler := handler.NewStyleHandler(deps.Styles)
	authRequired := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Generation routes ---
	gen := e.Group("/v1/generations", authRequired)
	gen.POST("", generationHandler.Submit)
	gen.GET("", generationHandler.List)
	gen.GET("/:id", generationHandler.Get)
	gen.DELETE("/:id", generationHandler.Delete)

	// --- User routes ---
	users := e.Group("/v1/users/me", authRequired)
	users.GET("", userHandler.Profile)
	users.GET("/credits", userHandler.CreditHistory)
	users.POST("/credits", userHandler.AddCredits)

	// --- Style catalog (public) ---
	e.GET("/v1/styles", styleHandler.List)
	e.GET("/v1/styles/:slug", styleHandler.Get)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}

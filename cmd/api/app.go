package main

import (
	"log/slog"

	"medi-forecast/internal/config"
	"medi-forecast/internal/forecast"

	"github.com/gin-gonic/gin"

	_ "medi-forecast/docs" // Ensure docs are imported
)

// App encapsulates application dependencies
type App struct {
	router          *gin.Engine
	logger          *slog.Logger
	forecastService forecast.Service
	cfg             *config.Config
}

// NewApp creates a new application with injected dependencies
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return NewAppWithService(cfg, logger, forecast.NewForecastService(cfg, logger))
}

// NewAppWithService creates an application around an existing forecast service
func NewAppWithService(cfg *config.Config, logger *slog.Logger, svc forecast.Service) *App {
	// Set Gin mode from configuration
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(logger))

	app := &App{
		router:          router,
		logger:          logger,
		forecastService: svc,
		cfg:             cfg,
	}

	// Register routes
	app.registerRoutes()

	logger.Info("application initialized")

	return app
}

// Run starts the HTTP server
func (app *App) Run(addr string) error {
	return app.router.Run(addr)
}

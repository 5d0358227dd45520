package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/api"
	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"
	"finance-tracker/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger := utils.NewLogger()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to set up database: %v", err)
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	svc := service.NewDefaultService(repo)

	// Pick the auth strategy; one per deployment, never both
	var strategy auth.Strategy
	switch cfg.Auth.Strategy {
	case config.StrategySession:
		sessions := auth.NewSessionStrategy(repo, cfg.Auth.ProofTTL, cfg.Auth.CookieSecure)
		strategy = sessions

		// Expired session records get purged in the background
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sessions.StartSweeper(ctx, cfg.Auth.SweepInterval, logger)
	case config.StrategyToken:
		strategy = auth.NewTokenStrategy(cfg.Auth.JWTSecret, cfg.Auth.ProofTTL)
	default:
		logger.Fatal("Unknown auth strategy: %q", cfg.Auth.Strategy)
	}

	// Create API handler
	handler := api.NewHandler(svc, strategy, logger, cfg.Server.Environment, cfg.Auth.Strategy)

	// Set up Gin router
	router := gin.Default()
	router.Use(api.CORSMiddleware(cfg.Server.CORSOrigins))

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting server on %s (auth strategy: %s)", serverAddr, cfg.Auth.Strategy)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

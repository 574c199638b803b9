package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"archplan/internal/common/config"
	"archplan/internal/common/health"
	"archplan/internal/common/middleware"
	"archplan/internal/gateway/handlers"
	"archplan/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planner Gateway",
	})

	planner := proxy.New(cfg.PlannerURL)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(context.Background())

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger("gateway", cfg.IsProduction()))
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	health.Register(app, map[string]health.Check{"planner": planner.Ping})

	// ============================================================
	// Docs
	// ============================================================

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	app.Get("/test", planner.Handler())
	api := app.Group("/api", limiter.Handler())
	api.All("/*", planner.Handler())

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Planner Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Proxying /api and /test to %s", cfg.PlannerURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archplan/internal/common/config"
	"archplan/internal/common/health"
	"archplan/internal/common/middleware"
	"archplan/internal/common/telemetry"
	"archplan/internal/planner/cache"
	"archplan/internal/planner/estimate"
	"archplan/internal/planner/handlers"
	"archplan/internal/planner/repository"
	"archplan/internal/planner/rules"
	"archplan/internal/planner/service"
	"archplan/internal/planner/validate"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Planner Service
// ============================================================

const version = "1.0.0"

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    "planner",
		ServiceVersion: version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}

	db, err := repository.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db, cfg.DBDriver)
	if err := repo.Init(ctx); err != nil {
		log.Fatalf("init db: %v", err)
	}

	registry, err := loadRules(cfg.RulesDir)
	if err != nil {
		log.Fatalf("load rules: %v", err)
	}

	rates, err := loadRates(cfg.RatesFile)
	if err != nil {
		log.Fatalf("load rates: %v", err)
	}

	checks := map[string]health.Check{"db": repo.Ping}
	var artifacts cache.ArtifactCache
	if cfg.RedisURL != "" {
		redisCache := cache.NewRedis(cfg.RedisURL, cache.DefaultTTL)
		defer redisCache.Close()
		artifacts = redisCache
		checks["cache"] = redisCache.Ping
	} else {
		memory := cache.NewMemory(cache.DefaultTTL)
		memory.StartCleanup(ctx, 5*time.Minute)
		artifacts = memory
	}

	svc, err := service.New(service.Deps{
		Store:           repo,
		Registry:        registry,
		Rates:           rates,
		Cache:           artifacts,
		Storage:         service.NewFileStorage(cfg.ArtifactDir),
		MaxAlternatives: cfg.MaxAlternatives,
	})
	if err != nil {
		log.Fatalf("init service: %v", err)
	}

	validator, err := validate.New()
	if err != nil {
		log.Fatalf("init validator: %v", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(ctx)

	appConfig := fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planner Service",
	}
	// за шлюзом лимит считается по IP клиента из X-Forwarded-For
	middleware.TrustForwarded(&appConfig, cfg.TrustedProxies)
	app := fiber.New(appConfig)

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger("planner", cfg.IsProduction()))
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use("/api", limiter.Handler())

	// ============================================================
	// Routes
	// ============================================================

	health.Register(app, checks)
	handlers.NewPlannerHandler(svc, validator).Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Planner Service on %s (env: %s, db: %s)", addr, cfg.Environment, cfg.DBDriver)
	log.Printf("Rule packs: municipal %v, cultural %v", registry.MunicipalNames(), registry.CulturalNames())

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down Planner Service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
}

func loadRules(dir string) (*rules.Registry, error) {
	engine, err := rules.NewEngine()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		return rules.LoadDir(engine, dir)
	}
	return rules.LoadEmbedded(engine)
}

func loadRates(path string) (*estimate.RateTable, error) {
	if path != "" {
		return estimate.LoadRates(path)
	}
	return estimate.DefaultRates()
}

package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/blockseats/internal/aggregator"
	"github.com/dharmasatrya/blockseats/internal/cache"
	"github.com/dharmasatrya/blockseats/internal/config"
	"github.com/dharmasatrya/blockseats/internal/dataaccess"
	"github.com/dharmasatrya/blockseats/internal/handler"
	"github.com/dharmasatrya/blockseats/internal/ratelimit"
	"github.com/dharmasatrya/blockseats/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	limiter := ratelimit.NewEndpointLimiter(cfg.RateLimit.Default, cfg.RateLimit.Endpoints)

	dacfg := dataaccess.DefaultConfig()
	dacfg.BaseURL = cfg.Backend.URL
	dacfg.Token = cfg.Backend.Token
	dacfg.Timeout = cfg.Backend.Timeout
	dacfg.MaxRetries = cfg.Backend.MaxRetries
	dacfg.Limiter = limiter
	dacfg.Logger = logger
	client := dataaccess.NewClient(dacfg)

	var ticketCache cache.TicketCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.Cache.RedisHost,
			Port:     cfg.Cache.RedisPort,
			Password: cfg.Cache.RedisPassword,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		ticketCache = redisCache
		log.Printf("Redis cache enabled (host: %s:%s, TTL: %v)", cfg.Cache.RedisHost, cfg.Cache.RedisPort, cfg.Cache.TTL)
	} else {
		ticketCache = cache.NewNoOpCache()
		log.Println("Cache disabled")
	}
	defer ticketCache.Close()

	agg := aggregator.NewAggregator(client, aggregator.Config{
		Timeout: 2 * cfg.Backend.Timeout,
		Cache:   ticketCache,
		Logger:  logger,
	})

	handler.RegisterRoutes(e,
		handler.NewSearchHandler(agg, validation.Validator{}, logger),
		handler.NewAdminHandler(client, cfg.Search.PageSize),
	)

	log.Printf("Starting block-seat portal API on port %s (backend %s)", cfg.Port, cfg.Backend.URL)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env file loader
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/davitp/timesheet-tracker/internal/config"     // Internal config loader
	"github.com/davitp/timesheet-tracker/internal/database"   // MySQL connection
	"github.com/davitp/timesheet-tracker/internal/handler"    // HTTP handlers
	"github.com/davitp/timesheet-tracker/internal/middleware" // auth guard, rate limit, cache
	"github.com/davitp/timesheet-tracker/internal/queue"      // activity event consumer
	"github.com/davitp/timesheet-tracker/internal/repository" // data access layer
	"github.com/davitp/timesheet-tracker/internal/router"     // route registration
)

func main() {
	_ = godotenv.Load() // best effort; real env vars win over .env

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	timesheets := repository.NewTimesheetRepo(db)

	// Redis is optional: when unreachable, rate limiting and caching degrade
	// to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	guard := middleware.BearerAuth(cfg.JWTSecret, users)
	cache := middleware.NewUserCache(cacheCfg, rdb)
	invalidator := middleware.NewCacheInvalidator(cacheCfg, rdb)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterUser(e, handler.NewAuthHandler(cfg, users), guard)
	router.RegisterTimesheet(e, handler.NewTimesheetHandler(timesheets, invalidator), guard, cache)

	// Consume task.recorded events in the background; the consumer keeps its
	// own reconnect loop.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

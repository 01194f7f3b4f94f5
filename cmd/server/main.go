package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/clock"
    "github.com/iliyamo/library-seat-reservation/internal/config"
    "github.com/iliyamo/library-seat-reservation/internal/database"
    "github.com/iliyamo/library-seat-reservation/internal/handler"
    "github.com/iliyamo/library-seat-reservation/internal/middleware"
    "github.com/iliyamo/library-seat-reservation/internal/queue"
    "github.com/iliyamo/library-seat-reservation/internal/repository"
    "github.com/iliyamo/library-seat-reservation/internal/router"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    clk, err := clock.New(cfg.Timezone)
    if err != nil {
        log.Fatalf("init clock: %v", err)
    }

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("connect database: %v", err)
    }
    defer db.Close()

    // Repositories
    userRepo := repository.NewUserRepo(db)
    zoneRepo := repository.NewZoneRepo(db)
    seatRepo := repository.NewSeatRepo(db)
    reservationRepo := repository.NewReservationRepo(db)

    // Core services
    cache := service.NewStatusCache(cfg.StatusCacheMaxKey, cfg.StatusCacheTTL)
    publisher := queue.NewPublisher()
    sweeper := service.NewSweeper(reservationRepo, cache, publisher, clk, cfg.Policy)
    resolver := service.NewStatusResolver(seatRepo, reservationRepo, cache, sweeper, clk, cfg.Policy)
    admission := service.NewAdmissionController(seatRepo, zoneRepo, reservationRepo, resolver, cache, publisher, clk, cfg.Policy)
    lifecycle := service.NewLifecycleService(seatRepo, reservationRepo, cache, publisher, clk, cfg.Policy)

    // Background workers: the periodic expiry sweep and the queue
    // consumer that turns lifecycle events into the audit log.
    sweeper.Start(context.Background())
    go func() {
        if err := queue.StartReservationConsumer(); err != nil {
            log.Printf("reservation consumer stopped: %v", err)
        }
    }()

    // Rate limiting is optional: with Redis down the limiter fails open.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable, rate limiting disabled")
    }
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    // Handlers
    authHandler := handler.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost)
    seatHandler := handler.NewSeatHandler(resolver)
    reservationHandler := handler.NewReservationHandler(admission, lifecycle, reservationRepo)
    adminHandler := handler.NewAdminHandler(zoneRepo, seatRepo, cache)

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterSeats(e, seatHandler)
    router.RegisterReservations(e, reservationHandler, cfg.JWTSecret, limiter)
    router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s, tz=%s)", addr, cfg.Env, cfg.Timezone)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

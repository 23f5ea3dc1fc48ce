package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/config"
	"github.com/ekarslan/event-seat-reservation/internal/database"
	"github.com/ekarslan/event-seat-reservation/internal/handler"
	"github.com/ekarslan/event-seat-reservation/internal/middleware"
	"github.com/ekarslan/event-seat-reservation/internal/queue"
	"github.com/ekarslan/event-seat-reservation/internal/repository"
	"github.com/ekarslan/event-seat-reservation/internal/router"
	"github.com/ekarslan/event-seat-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	// Redis is optional. When it is down the cache and rate limiter
	// degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	locations := repository.NewLocationRepo(db)
	seats := repository.NewSeatRepo(db)
	events := repository.NewEventRepo(db)
	allocs := repository.NewAllocationRepo(db)

	alloc := service.NewAllocationService(allocs, queue.Notifier{})

	authH := handler.NewAuthHandler(cfg, users, tokens)
	managerH := handler.NewManagerHandler(locations, seats, events)
	allowanceH := handler.NewAllowanceHandler(alloc)
	reservationH := handler.NewReservationAdminHandler(alloc)
	customerH := handler.NewCustomerHandler(alloc)
	publicH := handler.NewPublicHandler(events, seats, allocs)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterManager(e, managerH, allowanceH, reservationH, cfg.JWTSecret)
	router.RegisterCustomer(e, customerH, allowanceH, cfg.JWTSecret)

	// Background consumer writes reservation notices to logs/.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-platform/internal/config"
	"github.com/iliyamo/booking-platform/internal/database"
	"github.com/iliyamo/booking-platform/internal/handler"
	"github.com/iliyamo/booking-platform/internal/middleware"
	"github.com/iliyamo/booking-platform/internal/queue"
	"github.com/iliyamo/booking-platform/internal/repository"
	"github.com/iliyamo/booking-platform/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	services := repository.NewServiceRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	userH := handler.NewUserHandler(users)
	serviceH := handler.NewServiceHandler(services, reviews)
	bookingH := handler.NewBookingHandler(bookings, services)
	reviewH := handler.NewReviewHandler(reviews, bookings)

	e := echo.New()
	e.HideBanner = true

	// Redis backs both the rate limiter and the response cache.  A nil
	// client disables both middlewares, so the API stays up when Redis
	// is absent.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, userH, cfg.JWTSecret)
	router.RegisterCatalog(e, serviceH, cfg.JWTSecret)
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)
	router.RegisterReviews(e, reviewH, cfg.JWTSecret)

	// The consumer reconnects on its own; a startup failure only costs
	// the audit log, never the API.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/iliyamo/cinema-ticketing/internal/config"
	"github.com/iliyamo/cinema-ticketing/internal/database"
	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
	"github.com/iliyamo/cinema-ticketing/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	movieRepo := repository.NewMovieRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)
	availabilityRepo := repository.NewAvailabilityRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	promotionRepo := repository.NewPromotionRepo(db)

	h := router.Handlers{
		Health:       handler.Health(db),
		Auth:         handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Reservations: handler.NewReservationHandler(reservationRepo),
		Movies:       handler.NewMovieHandler(movieRepo),
		Rooms:        handler.NewRoomHandler(roomRepo, seatRepo),
		Showtimes:    handler.NewShowtimeHandler(showtimeRepo, movieRepo, roomRepo, seatRepo, availabilityRepo),
		Purchases:    handler.NewPurchaseHandler(purchaseRepo),
		Promotions:   handler.NewPromotionHandler(promotionRepo),
	}
	mw := router.Middleware{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}

	// Drains reservation events into logs/reservation.log; reconnects on
	// broker failure and never takes the API down with it.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := router.New(h, mw)
	log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

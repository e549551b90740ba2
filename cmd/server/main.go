package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/wadhahbr/room-reservation/internal/booking"
	"github.com/wadhahbr/room-reservation/internal/config"
	"github.com/wadhahbr/room-reservation/internal/database"
	"github.com/wadhahbr/room-reservation/internal/handler"
	"github.com/wadhahbr/room-reservation/internal/notify"
	"github.com/wadhahbr/room-reservation/internal/queue"
	"github.com/wadhahbr/room-reservation/internal/repository"
	"github.com/wadhahbr/room-reservation/internal/router"
	"github.com/wadhahbr/room-reservation/internal/service"
	"github.com/wadhahbr/room-reservation/internal/storage"
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

	rdb := config.NewRedisClient() // nil disables rate limiting and caching

	rooms := repository.NewRoomRepo(db)
	slots := repository.NewSlotRepo(db)
	resvs := repository.NewReservationRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resets := repository.NewResetRepo(db)

	publisher := service.NewQueuePublisher()
	ledger := booking.NewLedger(db, rooms, slots, resvs, publisher)

	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("image store: %v", err)
	}

	// Background expiry of stale PENDING reservations.
	sweeper := booking.NewSweeper(ledger, cfg.SweepInterval, cfg.PendingTTL)
	go sweeper.Run(context.Background())

	// Queue consumer: audit log plus email notifications.
	mailer := notify.NewMailerFromEnv()
	go func() {
		if err := queue.StartEventConsumer(mailer.SendEvent); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Rooms:        handler.NewRoomHandler(rooms, ledger, images),
		Slots:        handler.NewSlotHandler(db, slots, rooms),
		Reservations: handler.NewReservationHandler(ledger),
		Users:        handler.NewUserHandler(users),
		Reset:        handler.NewPasswordResetHandler(cfg, users, resets, tokens, publisher),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

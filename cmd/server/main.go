package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"kpark/internal/api"
	"kpark/internal/auth"
	"kpark/internal/config"
	"kpark/internal/notification"
	"kpark/internal/repository"
	"kpark/internal/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	slotRepo := repository.NewSlotRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	waitlistRepo := repository.NewWaitlistRepository(database)
	userRepo := repository.NewUserRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := notification.NewQueue(
		cfg.NotifyQueueSize,
		cfg.NotifyWorkers,
		notificationRepo,
		notification.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber),
		notification.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName),
	)
	queue.Start(ctx)

	waitlistSvc := service.NewWaitlistService(waitlistRepo, slotRepo, bookingRepo, userRepo, queue, cfg.GraceMinutes, cfg.ConfirmMinutes)
	bookingSvc := service.NewBookingService(slotRepo, bookingRepo, queue, waitlistSvc, cfg.GraceMinutes)
	slotSvc := service.NewSlotService(slotRepo)
	authSvc := service.NewAuthService(userRepo, []byte(cfg.JWTSecret))
	adminSvc := service.NewAdminService(analyticsRepo, userRepo, bookingSvc)
	sweeper := service.NewSweeperService(bookingRepo, waitlistRepo, slotRepo, userRepo, queue, notificationRepo, waitlistSvc)

	scheduler := cron.New()
	if err := sweeper.Register(scheduler); err != nil {
		log.Fatalf("Failed to register sweeper jobs: %v", err)
	}
	scheduler.Start()

	router := api.NewRouter(api.Handlers{
		Auth:     api.NewAuthHandler(authSvc),
		Slots:    api.NewSlotHandler(slotSvc),
		Bookings: api.NewBookingHandler(bookingSvc),
		Waitlist: api.NewWaitlistHandler(waitlistSvc),
		Admin:    api.NewAdminHandler(adminSvc),
		Guard:    auth.NewMiddleware(userRepo, []byte(cfg.JWTSecret)),
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.LoggingHandler(os.Stdout, cors(router)),
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	<-scheduler.Stop().Done()
	cancel()
	if err := database.Close(); err != nil {
		log.Printf("DB close error: %v", err)
	}
}

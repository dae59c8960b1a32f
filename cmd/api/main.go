package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mentorhub/internal/bank"
	"mentorhub/internal/cache"
	"mentorhub/internal/config"
	"mentorhub/internal/cron"
	"mentorhub/internal/database"
	"mentorhub/internal/meeting"
	"mentorhub/internal/middleware"
	"mentorhub/internal/modules/auth"
	"mentorhub/internal/modules/availability"
	"mentorhub/internal/modules/booking"
	"mentorhub/internal/modules/payment"
	"mentorhub/internal/notify"
	jwtsvc "mentorhub/internal/pkg/jwt"
	"mentorhub/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	var slotCache availability.SlotCache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.SlotCacheTTL)
		if err := rc.Ping(context.Background()); err != nil {
			log.Printf("redis unavailable, slot caching disabled: %v", err)
		} else {
			slotCache = rc
		}
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}
	notifier := notify.NewBookingNotifier(mailer)

	meetings := meeting.NewHTTPProvider(cfg.MeetingAPIURL, cfg.MeetingAPIKey, cfg.MeetingTimeout)
	bankFeed := bank.NewHTTPFeed(cfg.BankFeedURL, cfg.BankFeedKey, cfg.BankTimeout)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	availabilityService := availability.NewService(availabilityRepo, appointmentRepo, userRepo, slotCache)
	availabilityHandler := availability.NewHandler(availabilityService)

	bookingService := booking.NewService(
		appointmentRepo,
		availabilityRepo,
		userRepo,
		meetings,
		notifier,
		availabilityService,
		cfg.MeetingTimeout,
	)
	bookingHandler := booking.NewHandler(bookingService)

	paymentService := payment.NewService(appointmentRepo, userRepo, bankFeed, log.Printf)
	paymentHandler := payment.NewHandler(paymentService)

	scheduler := cron.NewScheduler(appointmentRepo, userRepo, paymentService, notifier)
	if err := scheduler.Start(); err != nil {
		log.Fatal(err)
	}
	defer scheduler.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		availabilityHandler.RegisterRoutes(v1)

		// any authenticated user
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
		}

		// mentee only
		menteeOnly := v1.Group("/")
		menteeOnly.Use(middleware.JWTAuth(j), middleware.MenteeOnly())
		{
			bookingHandler.RegisterMenteeRoutes(menteeOnly)
		}

		// mentor only
		mentorOnly := v1.Group("/")
		mentorOnly.Use(middleware.JWTAuth(j), middleware.MentorOnly())
		{
			availabilityHandler.RegisterMentorRoutes(mentorOnly)
			paymentHandler.RegisterMentorRoutes(mentorOnly)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

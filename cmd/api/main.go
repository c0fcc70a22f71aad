package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/flightline/rsvp-backend/internal/config"
	"github.com/flightline/rsvp-backend/internal/handlers"
	"github.com/flightline/rsvp-backend/internal/logger"
	"github.com/flightline/rsvp-backend/internal/middleware"
	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/phone"
	"github.com/flightline/rsvp-backend/internal/ratelimit"
	"github.com/flightline/rsvp-backend/internal/services"
	"github.com/flightline/rsvp-backend/internal/store"
)

func main() {
	// Load environment variables; .env is optional and real env vars win.
	_ = godotenv.Load()

	cfg := config.New()
	log := logger.Init(cfg.LogMode, cfg.LogDir)
	defer log.Sync()

	// Select the storage backend once at startup.
	var st store.Store
	if cfg.StoreBackend == "memory" {
		log.Warn("using in-memory store, data will not survive restarts")
		st = store.NewMemoryStore()
	} else {
		db, err := models.InitDB(cfg)
		if err != nil {
			log.Fatal("failed to initialize database", zap.Error(err))
		}
		if err := models.Migrate(db); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		st = store.NewGormStore(db)
	}

	// Redis backs the rate limiters.
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	smsLimiter := ratelimit.NewLimiter(redisClient, "rl:sms", cfg.SMSRateLimit, cfg.SMSRateWindow)
	authLimiter := ratelimit.NewLimiter(redisClient, "rl:auth", cfg.AuthRateLimit, cfg.AuthRateWindow)

	// Initialize services
	normalizer := phone.NewNormalizer(cfg.PhoneDefaultRegion, cfg.PhonePermissiveFallback)
	verificationService := services.NewVerificationService(st, cfg.CodeTTL, cfg.CodeMaxAttempts)
	gateway := services.NewChallengeGateway(cfg, verificationService)
	authService := services.NewAuthService(st, gateway, normalizer, smsLimiter, cfg)
	guestService := services.NewGuestService(st, normalizer)
	eventService := services.NewEventService(st)
	rsvpService := services.NewRsvpService(st)
	settingService := services.NewSettingService(st)
	adminService := services.NewAdminService(cfg)
	auditService := services.NewAuditService(st, cfg.IPHashSecret)

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, guestService)
	guestHandler := handlers.NewGuestHandler(authService, guestService)
	rsvpHandler := handlers.NewRsvpHandler(rsvpService)
	publicHandler := handlers.NewPublicHandler(eventService, settingService)
	adminHandler := handlers.NewAdminHandler(adminService, guestService, eventService, rsvpService, settingService, auditService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Public routes
		api.GET("/settings", publicHandler.GetSettings)
		api.GET("/events", publicHandler.GetSchedule)
		api.POST("/guests", middleware.AuthRateLimit(authLimiter, cfg), guestHandler.Register)
		api.GET("/guests/:id", guestHandler.GetGuest)
		api.PUT("/guests/:id/description", middleware.EditAuth(cfg), guestHandler.UpdateDescription)

		// Auth routes; the general limiter guards the whole group. The SMS
		// limiter is enforced inside the start-verification flow where the
		// target phone is known.
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit(authLimiter, cfg))
		{
			auth.POST("/phone-login", authHandler.PhoneLogin)
			auth.POST("/start-verification", authHandler.StartVerification)
			auth.POST("/verify-code", authHandler.VerifyCode)
			auth.GET("/verify-session", authHandler.VerifySession)
			auth.PUT("/update-profile", middleware.EditAuth(cfg), authHandler.UpdateProfile)
		}

		// RSVP routes
		api.POST("/rsvp", middleware.EditAuth(cfg), rsvpHandler.Upsert)
		api.GET("/rsvp/guest/:guestId", rsvpHandler.ByGuest)

		// Admin routes
		admin := api.Group("/admin")
		{
			admin.POST("/login", middleware.AuthRateLimit(authLimiter, cfg), adminHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.AdminAuth(cfg))
			{
				protected.GET("/guests", adminHandler.ListGuests)
				protected.GET("/rsvps", adminHandler.Roster)
				protected.POST("/events", adminHandler.CreateEvent)
				protected.PUT("/events/:id", adminHandler.UpdateEvent)
				protected.DELETE("/events/:id", adminHandler.DeleteEvent)
				protected.POST("/events/reorder", adminHandler.ReorderEvents)
				protected.POST("/settings", adminHandler.UpdateSettings)
				protected.GET("/audit", adminHandler.ListAudit)
			}
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

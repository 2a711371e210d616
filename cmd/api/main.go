package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ridepool/ridepool-backend/internal/config"
	"github.com/ridepool/ridepool-backend/internal/database"
	"github.com/ridepool/ridepool-backend/internal/handlers"
	"github.com/ridepool/ridepool-backend/internal/logging"
	"github.com/ridepool/ridepool-backend/internal/middleware"
	"github.com/ridepool/ridepool-backend/internal/services"
	"github.com/ridepool/ridepool-backend/internal/store"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Every lifecycle event goes to connected WebSocket clients; with Redis
	// configured it is also published on a channel for other processes.
	notifier := services.FanoutNotifier{hub}
	var cache *services.SearchCache
	if cfg.RedisURL != "" {
		redisClient, err := services.InitRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		notifier = append(notifier, &services.RedisNotifier{
			Client:  redisClient,
			Channel: cfg.EventChannel,
			Log:     logger,
		})
		cache = &services.SearchCache{Client: redisClient, TTL: cfg.CacheTTL}
	}

	gormStore := store.NewGormStore(db)
	rides := gormStore.Rides()
	bookings := gormStore.Bookings()

	matcher := services.NewMatcher(rides, cache, logger)
	bookingSvc := services.NewBookingService(rides, bookings, notifier, logger)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			ridesGroup := protected.Group("/rides")
			{
				ridesGroup.GET("/search", handlers.SearchRides(matcher))
				ridesGroup.GET("/mine", handlers.GetMyRides(rides))
				ridesGroup.POST("", handlers.CreateRide(rides, notifier))
				ridesGroup.PUT("/:id", handlers.UpdateRide(rides, notifier))
				ridesGroup.DELETE("/:id", handlers.DeleteRide(rides, notifier))
			}

			bookingsGroup := protected.Group("/bookings")
			{
				bookingsGroup.POST("", handlers.RequestBooking(bookingSvc))
				bookingsGroup.PATCH("/:id", handlers.DecideBooking(bookingSvc))
				bookingsGroup.GET("/mine", handlers.GetMyBookings(bookingSvc))
				bookingsGroup.GET("/driver", handlers.GetDriverBookings(bookingSvc))
			}
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

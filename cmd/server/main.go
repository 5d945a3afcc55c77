package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripstack/travel-backend/internal/config"
	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/docstore"
	"github.com/tripstack/travel-backend/internal/events"
	"github.com/tripstack/travel-backend/internal/handlers"
	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/services"
	"github.com/tripstack/travel-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TripStack Travel Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Connect the relational store
	logger.Info("Connecting to relational store...")
	db, err := database.NewConnection(cfg.Relational)
	if err != nil {
		logger.Fatalf("Failed to connect to relational store: %v", err)
	}
	defer db.Close()
	logger.Info("Relational store connection established")

	// Connect the document store
	logger.Info("Connecting to document store...")
	store, err := docstore.Connect(context.Background(), cfg.Document)
	if err != nil {
		logger.Fatalf("Failed to connect to document store: %v", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Errorf("Failed to close document store: %v", err)
		}
	}()
	logger.Info("Document store connection established")

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = store.EnsureIndexes(indexCtx)
	indexCancel()
	if err != nil {
		logger.Fatalf("Failed to ensure document store indexes: %v", err)
	}

	// Start the booking event publisher. Without brokers configured the
	// events go to the log instead, which keeps local development honest.
	var publisher events.Publisher
	if len(cfg.EventBus.Brokers) == 0 {
		logger.Info("No event bus brokers configured, publishing booking events to the log")
		publisher = events.NewLogPublisher(logger)
	} else {
		kafkaCtx, kafkaCancel := context.WithTimeout(context.Background(), 10*time.Second)
		kafkaPublisher, err := events.NewKafkaPublisher(kafkaCtx, cfg.EventBus, logger)
		kafkaCancel()
		if err != nil {
			logger.Fatalf("Failed to start event publisher: %v", err)
		}
		publisher = kafkaPublisher
	}
	defer publisher.Close()

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	searchRepository := database.NewSearchRepository(db)
	inventoryRepository := database.NewInventoryRepository()
	bookingRepository := database.NewBookingRepository(db)
	analyticsRepository := database.NewAnalyticsRepository(db)
	reviewRepository := docstore.NewReviewRepository(store)
	clickstreamRepository := docstore.NewClickstreamRepository(store)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	authService := services.NewAuthService(userRepository, jwtService, logger)
	userService := services.NewUserService(userRepository, logger)
	searchService := services.NewSearchService(searchRepository, logger)
	bookingService := services.NewBookingService(
		db,
		inventoryRepository,
		bookingRepository,
		services.NewPaymentSimulator(),
		publisher,
		cfg.Booking,
		logger,
	)
	reviewService := services.NewReviewService(reviewRepository, logger)
	clickstreamService := services.NewClickstreamService(clickstreamRepository, cfg.Clickstream, logger)
	analyticsService := services.NewAnalyticsService(analyticsRepository, userRepository, clickstreamRepository, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	searchHandler := handlers.NewSearchHandler(searchService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)
	clickstreamHandler := handlers.NewClickstreamHandler(clickstreamService, logger)
	adminHandler := handlers.NewAdminHandler(userService, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, logger)
	healthHandler := handlers.NewHealthHandler(db, store, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthHandler.Check)

	// API routes
	api := router.Group("/api")
	{
		// Registration is public; the rest of the account surface needs a token
		api.POST("/users", authHandler.Register)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("")
			authProtected.Use(middleware.RequireAuth(jwtService, logger))
			{
				authProtected.GET("/me", authHandler.Me)
			}
		}

		// Profile routes (self-or-admin, enforced in the service)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(jwtService, logger))
		{
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateProfile)
		}

		// Search routes (public)
		search := api.Group("/search")
		{
			search.GET("/flights", searchHandler.SearchFlights)
			search.GET("/hotels", searchHandler.SearchHotels)
			search.GET("/cars", searchHandler.SearchCars)
		}

		// Booking routes (all protected)
		bookings := api.Group("/bookings")
		bookings.Use(middleware.RequireAuth(jwtService, logger))
		{
			bookings.POST("/flight", bookingHandler.BookFlight)
			bookings.POST("/hotel", bookingHandler.BookHotel)
			bookings.POST("/car", bookingHandler.BookCar)
			bookings.GET("", bookingHandler.ListMyBookings)
			bookings.GET("/my", bookingHandler.ListMyBookings) // Alias for mobile clients
			bookings.GET("/:id", bookingHandler.GetBooking)
		}

		// Review routes. Listing works without a token but honors one for
		// the mine=true filter, so it runs behind OptionalAuth.
		reviews := api.Group("/reviews")
		{
			reviews.GET("", middleware.OptionalAuth(jwtService, logger), reviewHandler.ListReviews)
			reviews.GET("/distribution", reviewHandler.Distribution)

			reviewsProtected := reviews.Group("")
			reviewsProtected.Use(middleware.RequireAuth(jwtService, logger))
			{
				reviewsProtected.POST("", reviewHandler.CreateReview)
			}
		}

		// Clickstream routes. Tracking accepts anonymous traffic so the
		// funnel includes visitors who never sign in.
		analytics := api.Group("/analytics")
		{
			track := analytics.Group("/track")
			track.Use(middleware.OptionalAuth(jwtService, logger))
			{
				track.POST("", clickstreamHandler.Track)
				track.POST("/batch", clickstreamHandler.TrackBatch)
			}

			session := analytics.Group("/session")
			session.Use(middleware.RequireAuth(jwtService, logger))
			{
				session.GET("/:sessionId", clickstreamHandler.Session)
			}
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(jwtService, logger))
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", userHandler.GetUser)
			admin.PATCH("/users/:id/deactivate", adminHandler.DeactivateUser)

			adminAnalytics := admin.Group("/analytics")
			{
				adminAnalytics.GET("/revenue/properties", analyticsHandler.TopProperties)
				adminAnalytics.GET("/revenue/city", analyticsHandler.RevenueByCity)
				adminAnalytics.GET("/providers/top", analyticsHandler.TopProviders)
				adminAnalytics.GET("/clicks/pages", analyticsHandler.PageClicks)
				adminAnalytics.GET("/clicks/listings", analyticsHandler.ListingClicks)
				adminAnalytics.GET("/users/:userId/trace", analyticsHandler.UserTrace)
				adminAnalytics.GET("/cohort/trace", analyticsHandler.CohortTrace)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// Drain buffered clickstream events before the stores close
	logger.Info("Draining clickstream pipeline...")
	clickstreamService.Close()

	logger.Info("Server exited successfully")
}

// requestLogger logs every request on completion, leveled by outcome
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if principal, ok := middleware.GetPrincipal(c); ok {
			fields["user_id"] = principal.UserID
			fields["role"] = principal.Role
		}

		entry := logger.WithFields(fields)

		for i, err := range c.Errors {
			entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
		}

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0 || status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}

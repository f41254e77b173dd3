package app

import (
	"log"
	"time"

	"ridelink/internal/config"
	"ridelink/internal/middleware"
	"ridelink/internal/model"
	"ridelink/internal/repository"
	"ridelink/internal/service"
	"ridelink/internal/util"
	"ridelink/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	// Set Gin mode
	if cfg.ServerPort == "5000" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware(cfg.ClientURL))

	// Rate limiting middleware (if enabled)
	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Offer{},
		&model.Demand{},
		&model.Booking{},
		&model.DemandResponse{},
		&model.Message{},
		&model.Notification{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// Initialize Redis with retry logic
	redisClient := initRedisWithRetry(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	demandRepo := repository.NewDemandRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	responseRepo := repository.NewDemandResponseRepository(db)
	messageRepo := repository.NewMessageRepository(db, redisClient)
	notificationRepo := repository.NewNotificationRepository(db, redisClient)

	// Initialize RabbitMQ with retry logic
	rabbitMQ := initRabbitMQWithRetry(cfg)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("WebSocket hub started")

	// Initialize Cloudinary client
	var cloudinaryClient *util.CloudinaryClient
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		var err error
		cloudinaryClient, err = util.NewCloudinaryClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v. Image uploads will be disabled.", err)
		} else {
			log.Println("Cloudinary initialized successfully")
		}
	} else {
		log.Println("Cloudinary credentials not configured. Image uploads will be disabled.")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	notificationService := service.NewNotificationService(notificationRepo)
	rideResolver := service.NewRideResolver(offerRepo, demandRepo, bookingRepo, responseRepo)
	accessService := service.NewAccessService(rideResolver, messageRepo)
	deliveryNotifier := service.NewDeliveryNotifier(rabbitMQ, wsHub, notificationService)
	messageService := service.NewMessageService(messageRepo, accessService, deliveryNotifier, cfg.MaxMessageLength)
	conversationService := service.NewConversationService(messageRepo, userRepo, rideResolver)
	offerService := service.NewOfferService(offerRepo)
	demandService := service.NewDemandService(demandRepo, responseRepo, userRepo, notificationService)
	bookingService := service.NewBookingService(bookingRepo, offerRepo, userRepo, notificationService)

	// Initialize delivery worker if RabbitMQ is available
	if rabbitMQ != nil {
		deliveryWorker := service.NewDeliveryWorker(rabbitMQ, wsHub)
		if err := deliveryWorker.Start(); err != nil {
			log.Printf("Warning: Failed to start delivery worker: %v", err)
		} else {
			log.Println("Delivery worker started successfully")
		}
	}

	// Initialize handlers
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userRepo, cloudinaryClient)
	messageHandler := NewMessageHandler(messageService, conversationService)
	offerHandler := NewOfferHandler(offerService)
	demandHandler := NewDemandHandler(demandService)
	bookingHandler := NewBookingHandler(bookingService)
	notificationHandler := NewNotificationHandler(notificationService)

	authRequired := middleware.Auth(cfg.JWTSecret)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			// Protected routes
			auth.GET("/me", authRequired, authHandler.GetMe)
		}

		// User routes
		users := api.Group("/users")
		{
			users.Use(authRequired)
			{
				users.GET("/search", userHandler.SearchUsers)
				users.GET("/:id", userHandler.GetUser)
				users.POST("/me/avatar", userHandler.UploadAvatar)
			}
		}

		// Offer routes
		offers := api.Group("/offers")
		{
			offers.Use(authRequired)
			{
				// IMPORTANT: More specific routes must be registered before wildcard routes
				offers.GET("/mine", offerHandler.ListMyOffers)
				offers.POST("", offerHandler.CreateOffer)
				offers.GET("", offerHandler.ListOffers)
				offers.GET("/:id/bookings", bookingHandler.ListOfferBookings)
				offers.GET("/:id", offerHandler.GetOffer)
				offers.POST("/:id/cancel", offerHandler.CancelOffer)
			}
		}

		// Demand routes
		demands := api.Group("/demands")
		{
			demands.Use(authRequired)
			{
				demands.GET("/mine", demandHandler.ListMyDemands)
				demands.POST("", demandHandler.CreateDemand)
				demands.GET("", demandHandler.ListDemands)
				demands.POST("/:id/responses", demandHandler.RespondToDemand)
				demands.GET("/:id/responses", demandHandler.ListResponses)
				demands.GET("/:id", demandHandler.GetDemand)
				demands.POST("/:id/cancel", demandHandler.CancelDemand)
			}
		}

		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.Use(authRequired)
			{
				bookings.GET("/mine", bookingHandler.ListMyBookings)
				bookings.POST("", bookingHandler.CreateBooking)
				bookings.GET("/:id", bookingHandler.GetBooking)
				bookings.POST("/:id/confirm", bookingHandler.ConfirmBooking)
				bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			}
		}

		// Ride-scoped messaging routes
		rides := api.Group("/rides/:rideType/:rideId")
		{
			rides.Use(authRequired)
			{
				rides.POST("/messages", messageHandler.SendMessage)
				rides.GET("/messages", messageHandler.GetRideMessages)
				rides.PUT("/messages/read", messageHandler.MarkConversationRead)
				rides.DELETE("/messages", messageHandler.DeleteConversation)
			}
		}

		// Conversation and message routes
		api.GET("/conversations", authRequired, messageHandler.GetConversationList)

		messages := api.Group("/messages")
		{
			messages.Use(authRequired)
			{
				messages.GET("/unread/count", messageHandler.GetUnreadCount)
				messages.PUT("/:id/read", messageHandler.MarkMessageRead)
				messages.PUT("/:id", messageHandler.EditMessage)
				messages.DELETE("/:id", messageHandler.DeleteMessage)
			}
		}

		// Retired global chat endpoints kept for old clients
		chat := api.Group("/chat")
		chat.Use(authRequired)
		{
			chat.POST("/messages", messageHandler.LegacyChatMessages)
			chat.GET("/messages", messageHandler.LegacyChatMessages)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.Use(authRequired)
			{
				notifications.GET("", notificationHandler.GetNotifications)
				notifications.GET("/unread/count", notificationHandler.GetUnreadCount)
				notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
				notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
				notifications.DELETE("/:id", notificationHandler.DeleteNotification)
			}
		}
	}

	// WebSocket route
	r.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(wsHub, cfg.JWTSecret).ServeHTTP(c.Writer, c.Request)
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "host=" + cfg.PostgresHost +
			" port=" + cfg.PostgresPort +
			" user=" + cfg.PostgresUser +
			" password=" + cfg.PostgresPassword +
			" dbname=" + cfg.PostgresDB +
			" sslmode=" + cfg.PostgresSSLMode
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// initRabbitMQWithRetry attempts to connect to RabbitMQ with exponential backoff retry
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg)
		if err == nil {
			log.Printf("RabbitMQ connected successfully on attempt %d", attempt)
			return rabbitMQ
		}

		if attempt < maxRetries {
			// Calculate delay with exponential backoff
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to RabbitMQ after %d attempts: %v. Message delivery will fall back to direct pushes.", maxRetries, err)
		}
	}

	return nil
}

// initRedisWithRetry attempts to connect to Redis with exponential backoff retry
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			log.Printf("Redis connected successfully on attempt %d", attempt)
			return redisClient
		}

		if attempt < maxRetries {
			// Calculate delay with exponential backoff
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to Redis (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to Redis after %d attempts: %v. Caching will be disabled.", maxRetries, err)
			log.Println("Note: Application will continue without Redis caching")
		}
	}

	return nil
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	// Allowed origins (whitelist)
	allowedOrigins := []string{
		clientURL, // Default from config
		"http://localhost:3000",
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is in whitelist
		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		// If origin is allowed, set it; otherwise, use default
		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JamesDimonaco/trek-together-sub000/internal/auth"
	"github.com/JamesDimonaco/trek-together-sub000/internal/blocks"
	"github.com/JamesDimonaco/trek-together-sub000/internal/cache"
	"github.com/JamesDimonaco/trek-together-sub000/internal/chat"
	"github.com/JamesDimonaco/trek-together-sub000/internal/database"
	"github.com/JamesDimonaco/trek-together-sub000/internal/handlers"
	"github.com/JamesDimonaco/trek-together-sub000/internal/identity"
	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/messages"
	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/middleware"
	"github.com/JamesDimonaco/trek-together-sub000/internal/posts"
	"github.com/JamesDimonaco/trek-together-sub000/internal/presence"
	"github.com/JamesDimonaco/trek-together-sub000/internal/reports"
	"github.com/JamesDimonaco/trek-together-sub000/internal/requests"
	"github.com/JamesDimonaco/trek-together-sub000/internal/storage"
	"github.com/JamesDimonaco/trek-together-sub000/internal/telemetry"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Structured logging
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; rate limiting degrades to pass-through without it
	if _, err := cache.NewRedisClient(
		getEnvOrDefault("REDIS_HOST", "localhost"),
		getEnvOrDefault("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
	); err != nil {
		log.Printf("Warning: Redis unavailable: %v", err)
		log.Println("Continuing without Redis - rate limiting disabled")
	}

	// Prometheus metrics
	metrics.Initialize()

	// OpenTelemetry tracing (disabled unless configured)
	samplingRate := 1.0
	if v := os.Getenv("OTEL_SAMPLING_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			samplingRate = parsed
		}
	}
	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "trek-together-api",
		Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Enabled:      os.Getenv("OTEL_ENABLED") == "true",
		SamplingRate: samplingRate,
	})
	if err != nil {
		log.Printf("Warning: tracing init failed: %v", err)
	}

	// JWT secret is required for session tokens
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatalf("JWT_SECRET environment variable is required")
	}

	// Initialize S3 image store
	var imageStore *storage.ImageStore
	if os.Getenv("AWS_BUCKET") != "" {
		imageStore, err = storage.NewImageStore(
			os.Getenv("AWS_REGION"),
			os.Getenv("AWS_BUCKET"),
			os.Getenv("CDN_BASE_URL"),
		)
		if err != nil {
			log.Fatalf("Failed to initialize S3 image store: %v", err)
		}
		if err := imageStore.CheckBucketAccess(context.Background()); err != nil {
			log.Printf("Warning: S3 bucket access failed: %v", err)
			log.Println("Continuing without S3 - image uploads will fail")
		}
	} else {
		log.Println("AWS_BUCKET not set - image uploads disabled")
	}

	// Core services
	db := database.DB
	identityService := identity.NewService(db)
	blockRegistry := blocks.NewRegistry(db)
	typingTracker := presence.NewTracker(db)
	authService := auth.NewService(db, jwtSecret, identityService)

	var fileDeleter storage.FileDeleter
	if imageStore != nil {
		fileDeleter = imageStore
	}
	postService := posts.NewService(db, blockRegistry, fileDeleter)
	requestService := requests.NewService(db, blockRegistry)
	chatService := chat.NewService(db, blockRegistry)
	messageService := messages.NewService(db, blockRegistry)
	reportService := reports.NewService(db)

	// Expired typing indicators are swept every minute
	typingSweep := presence.NewSweepService(typingTracker, 1*time.Minute)
	typingSweep.Start()
	defer typingSweep.Stop()

	// Initialize handlers
	h := handlers.NewHandlers(
		authService,
		identityService,
		blockRegistry,
		typingTracker,
		postService,
		requestService,
		chatService,
		messageService,
		reportService,
	)
	if imageStore != nil {
		h.SetImageStore(imageStore)
	}

	// Setup Gin router
	if getEnvOrDefault("ENVIRONMENT", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TracingMiddleware("trek-together-api"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS middleware
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"} // Configure properly for production
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Guest-Token"}
	r.Use(cors.New(config))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "trek-together-api",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authService))
	{
		// Session routes
		session := api.Group("/session")
		{
			session.POST("/sync", middleware.RedisRateLimitMiddleware(30, time.Minute), h.SyncSession)
			session.POST("/heartbeat", middleware.RequireUser(), h.Heartbeat)
		}

		// City routes (public reads)
		cities := api.Group("/cities")
		{
			cities.GET("", h.ListCities)
			cities.GET("/:id", h.GetCity)
			cities.GET("/:id/travelers", h.ListCityTravelers)
			cities.GET("/:id/posts", h.ListPostsByCity)
			cities.GET("/:id/requests", h.ListRequestsByCity)

			// Creating content requires a full account
			cities.POST("/:id/posts", middleware.RequireAuthenticated(), h.CreatePost)
			cities.POST("/:id/requests", middleware.RequireAuthenticated(), h.CreateRequest)
		}

		// Trail report routes
		postGroup := api.Group("/posts")
		{
			postGroup.GET("/:id", h.GetPost)
			postGroup.GET("/:id/comments", h.ListPostComments)
			postGroup.POST("/:id/like", middleware.RequireAuthenticated(), h.ToggleLike)
			postGroup.POST("/:id/comments", middleware.RequireAuthenticated(), h.AddPostComment)
			postGroup.DELETE("/:id", middleware.RequireAuthenticated(), h.DeletePost)
			postGroup.DELETE("/comments/:commentId", middleware.RequireAuthenticated(), h.DeletePostComment)
		}

		// Trek buddy request routes
		requestGroup := api.Group("/requests")
		{
			requestGroup.GET("/:id", h.GetRequest)
			requestGroup.GET("/:id/comments", h.ListRequestComments)
			requestGroup.GET("/:id/interested", middleware.RequireAuthenticated(), h.ListInterested)
			requestGroup.POST("/:id/interest", middleware.RequireAuthenticated(), h.ToggleInterest)
			requestGroup.POST("/:id/comments", middleware.RequireAuthenticated(), h.AddRequestComment)
			requestGroup.PATCH("/:id/status", middleware.RequireAuthenticated(), h.SetRequestStatus)
			requestGroup.DELETE("/:id", middleware.RequireAuthenticated(), h.DeleteRequest)
			requestGroup.DELETE("/comments/:commentId", middleware.RequireAuthenticated(), h.DeleteRequestComment)
		}

		// Room chat routes (guests may read and write)
		chatGroup := api.Group("/chat")
		{
			chatGroup.GET("/:roomType/:roomId/messages", h.ListRoomMessages)
			chatGroup.POST("/:roomType/:roomId/messages", middleware.RequireUser(), middleware.RedisRateLimitMiddleware(60, time.Minute), h.SendRoomMessage)
		}

		// Direct message routes
		dm := api.Group("/messages")
		{
			dm.Use(middleware.RequireAuthenticated())
			dm.GET("/conversations", h.ListConversations)
			dm.GET("/conversations/:userId", h.GetConversation)
			dm.POST("/:userId", middleware.RedisRateLimitMiddleware(60, time.Minute), h.SendDirectMessage)
		}

		// Typing indicator routes
		typing := api.Group("/typing")
		{
			typing.Use(middleware.RequireUser())
			typing.POST("", h.SignalTyping)
			typing.DELETE("/:conversationId", h.ClearTyping)
			typing.GET("/:conversationId", h.ListTyping)
		}

		// User routes
		users := api.Group("/users")
		{
			users.GET("/me", middleware.RequireUser(), h.GetMe)
			users.PUT("/me", middleware.RequireUser(), h.UpdateProfile)
			users.POST("/me/cities/:id", middleware.RequireUser(), h.JoinCity)
			users.DELETE("/me", middleware.RequireAuthenticated(), h.DeleteAccount)
			users.GET("/:id", h.GetUser)
			users.POST("/:id/block", middleware.RequireAuthenticated(), h.BlockUser)
			users.DELETE("/:id/block", middleware.RequireAuthenticated(), h.UnblockUser)
			users.POST("/:id/report", middleware.RequireAuthenticated(), h.ReportUser)
		}
		api.GET("/blocks", middleware.RequireAuthenticated(), h.ListBlocked)

		// Image upload
		api.POST("/uploads/image", middleware.RequireAuthenticated(), middleware.RedisRateLimitMiddleware(10, time.Minute), h.UploadImage)
	}

	// Server configuration
	port := os.Getenv("PORT")
	if port == "" {
		port = "8787"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Trek Together API starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Tracer shutdown warning: %v", err)
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

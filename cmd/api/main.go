package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"listing-studio/internal/blob"
	"listing-studio/internal/config"
	"listing-studio/internal/copywriter"
	"listing-studio/internal/flyer"
	"listing-studio/internal/handlers"
	"listing-studio/internal/ratelimit"
	"listing-studio/internal/render"
	"listing-studio/internal/scheduler"
	"listing-studio/internal/store"
)

var (
	appConfig   *config.Config
	rateLimiter *ratelimit.Limiter
)

func main() {
	// .env first so the config loader can see env overrides
	if err := godotenv.Load(); err == nil {
		logrus.Info("Loaded environment from .env")
	}

	log := logrus.New()

	configPath := getEnv("CONFIG_PATH", "config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.WithError(err).Warnf("Failed to load config from %s, using defaults", configPath)
		appConfig = config.DefaultConfig()
	} else {
		log.Infof("Loaded configuration from %s", configPath)
	}

	if level, parseErr := logrus.ParseLevel(appConfig.Logging.Level); parseErr == nil {
		log.SetLevel(level)
	}

	// Listing store
	listingStore := store.New(appConfig.Store.Path, log)
	if err := listingStore.Initialize(); err != nil {
		log.WithError(err).Fatal("Failed to initialize listing store")
	}
	log.Infof("Listing store ready at %s", listingStore.Path())

	// Blob store for uploaded images
	blobStore := blob.New(appConfig.Uploads.Dir, appConfig.Uploads.MaxBytes(), log)
	if err := blobStore.Initialize(); err != nil {
		log.WithError(err).Fatal("Failed to initialize upload directory")
	}

	// Template and PDF renderers
	flyerRenderer, err := flyer.NewRenderer(blobStore.Dir())
	if err != nil {
		log.WithError(err).Fatal("Failed to parse document templates")
	}
	pdfRenderer := render.NewPDFRenderer(
		appConfig.Render.ChromePath,
		appConfig.Render.GetTimeout(),
		appConfig.Render.Workers,
		log,
	)

	// Copywriter (degrades to 503 on its endpoint when no key is set)
	copyClient := copywriter.NewClient(
		appConfig.Copywriter.APIKey,
		appConfig.Copywriter.BaseURL,
		appConfig.Copywriter.Model,
		appConfig.Copywriter.GetTimeout(),
		log,
	)
	if !copyClient.Enabled() {
		log.Warn("OPENAI_API_KEY not configured, copy generation endpoint will return 503")
	}

	// Rate limiter for the generation endpoint
	rateLimiter = ratelimit.New(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	// Daily store backups
	backupScheduler := scheduler.NewScheduler(listingStore, &appConfig.Store, log)
	if err := backupScheduler.Start(); err != nil {
		log.WithError(err).Warn("Failed to start backup scheduler")
	}
	defer backupScheduler.Stop()

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	listingHandler := handlers.NewListingHandler(listingStore, copyClient, log)
	documentHandler := handlers.NewDocumentHandler(listingStore, flyerRenderer, pdfRenderer, log)
	uploadHandler := handlers.NewUploadHandler(blobStore, log)

	// Routes
	r.GET("/health", healthCheck)

	r.POST("/api/listings/generate", rateLimitMiddleware(), listingHandler.Generate)
	r.POST("/api/listings", listingHandler.Save)
	r.GET("/api/listings", listingHandler.List)
	r.GET("/api/listings/:id", listingHandler.Get)
	r.DELETE("/api/listings/:id", listingHandler.Delete)

	r.POST("/api/documents/pdf", documentHandler.RenderFromBody)
	r.GET("/api/documents/pdf/:id", documentHandler.RenderByID)

	r.POST("/api/uploads", uploadHandler.Upload)
	r.Static("/uploads", blobStore.Dir())

	r.GET("/share/:id", documentHandler.SharePage)

	// Rate limiter stats endpoint
	r.GET("/api/ratelimit/stats", getRateLimitStats)

	port := appConfig.Server.Port
	log.Infof("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// rateLimitMiddleware returns a Gin middleware that enforces the
// copy-generation rate limits
func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimiter.Allow() {
			stats := rateLimiter.GetStats()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many generation requests. Please try again later.",
				"stats":   stats,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getRateLimitStats returns current rate limiter statistics
func getRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, rateLimiter.GetStats())
}

package main

import (
	"context"                          // context package is needed for Redis operations
	"karma_ledger/internal/api"        // Custom package for API handlers
	"karma_ledger/internal/config"     // Custom package for configuration
	"karma_ledger/internal/middleware" // Custom package for middleware
	"log"                              // log package is needed for logging
	"net/http"                         // HTTP status codes

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Tokens cannot be issued or verified without a secret
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}
	// A missing receiving wallet is a per-request skip, not a startup failure
	if cfg.ReceivingWallet == "" {
		logrus.Warn("RECEIVING_WALLET not set; all webhook deliveries will be skipped")
	}

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Liveness route
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Backend server is running!")
	})

	// Auth routes
	r.POST("/api/auth/signup", api.SignupHandler(db))    // Registration endpoint
	r.POST("/api/auth/login", api.LoginHandler(db, cfg)) // Login endpoint

	// User routes (protected by JWT)
	userGroup := r.Group("/api/user")
	userGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userGroup.GET("/credits", api.CreditsHandler(db, redisClient))               // Karma balance endpoint
	userGroup.GET("/credits/history", api.CreditHistoryHandler(db, redisClient)) // Credit history endpoint
	userGroup.POST("/wallet", api.LinkWalletHandler(db))                         // Wallet linking endpoint

	// Payment-notification webhook and its manual fallback (unauthenticated:
	// the provider cannot carry our tokens)
	r.POST("/api/webhook", api.WebhookHandler(db, redisClient, cfg))             // Reconciliation endpoint
	r.POST("/api/manual-karma-credit", api.ManualCreditHandler(db, redisClient)) // Manual credit endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}

package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For normalizing configured values

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort         string // Application port
	DBUser          string // Database user
	DBPassword      string // Database password
	DBHost          string // Database host
	DBPort          string // Database port
	DBName          string // Database name
	JWTSecret       string // JWT secret key
	RedisAddr       string // Redis server address
	RedisPass       string // Redis password
	RedisDB         int    // Redis database number
	ReceivingWallet string // Address that must receive a transfer for it to be creditable
	Network         string // Supported network identifier
	Asset           string // Supported native asset symbol
	IsProd          bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:         os.Getenv("APP_PORT"),                            // Application port
		DBUser:          os.Getenv("DB_USER"),                             // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),                         // Database password
		DBHost:          os.Getenv("DB_HOST"),                             // Database host
		DBPort:          os.Getenv("DB_PORT"),                             // Database port
		DBName:          os.Getenv("DB_NAME"),                             // Database name
		JWTSecret:       os.Getenv("JWT_SECRET"),                          // JWT secret key
		RedisAddr:       os.Getenv("REDIS_ADDR"),                          // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),                          // Redis password
		RedisDB:         redisDB,                                          // Redis database number
		ReceivingWallet: strings.TrimSpace(os.Getenv("RECEIVING_WALLET")), // May be empty; the webhook path skips instead of crashing
		Network:         getEnv("SUPPORTED_NETWORK", "ETH_SEPOLIA"),       // Supported network identifier
		Asset:           getEnv("SUPPORTED_ASSET", "ETH"),                 // Supported native asset symbol
		IsProd:          os.Getenv("IS_PROD") == "true",                   // Is production environment
	}
}

// getEnv returns the environment variable value, or def if it is unset or empty
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Package config loads server configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server.
type Config struct {
	// Server
	Port               string
	Env                string
	CORSAllowedOrigins []string

	// Logging
	LogLevel string

	// Auth
	JWTSecret string

	// AWS
	AWSRegion                string
	S3BucketName             string
	S3PublicBaseURL          string
	DynamoUsersTable         string
	DynamoConversationsTable string

	// Backends: "dynamo" or "memory" for stores, "memory" or "redis" for session keys
	StoreBackend        string
	KeyDirectoryBackend string
	RedisURL            string

	// User cache
	UserCacheTTL       time.Duration
	UserCacheEvictSpec string
	PeerCheckMaxAge    time.Duration

	// Chat
	DisconnectOnViolation bool
}

// Load reads .env in development and then the process environment.
func Load() *Config {
	env := os.Getenv("ENV")
	if env == "" || env == "development" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, relying on environment variables")
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		AWSRegion:                getEnv("AWS_REGION", "us-east-1"),
		S3BucketName:             getEnv("S3_BUCKET_NAME", ""),
		S3PublicBaseURL:          getEnv("S3_PUBLIC_BASE_URL", ""),
		DynamoUsersTable:         getEnv("DYNAMO_USERS_TABLE", "Users"),
		DynamoConversationsTable: getEnv("DYNAMO_CONVERSATIONS_TABLE", "Conversations"),

		StoreBackend:        getEnv("STORE_BACKEND", "dynamo"),
		KeyDirectoryBackend: getEnv("KEY_DIRECTORY_BACKEND", "memory"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),

		UserCacheTTL:       getDurationEnv("USER_CACHE_TTL", 10*time.Minute),
		UserCacheEvictSpec: getEnv("USER_CACHE_EVICT_SPEC", "*/10 * * * *"),
		PeerCheckMaxAge:    getDurationEnv("USER_PEER_CHECK_MAX_AGE", 30*time.Second),

		DisconnectOnViolation: getBoolEnv("CHAT_DISCONNECT_ON_VIOLATION", true),
	}
}

// CORSAllowCredentials reports whether credentialed CORS can be enabled.
// Browsers refuse credentials on a wildcard origin.
func (c *Config) CORSAllowCredentials() bool {
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			return false
		}
	}
	return true
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	FrontendURL string

	// Storage backend: "postgres" | "sqlite" | "memory"
	StoreBackend string

	// Database (postgres)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// SQLite (dev)
	SQLitePath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Tokens
	JWTSecret          string
	EditTokenDuration  time.Duration
	AdminTokenDuration time.Duration

	// Admin
	AdminPassword string

	// Phone handling
	PhoneDefaultRegion      string
	PhonePermissiveFallback bool

	// Verification codes
	CodeTTL         time.Duration
	CodeMaxAttempts int

	// Rate limiting
	IPHashSecret   string
	SMSRateLimit   int
	SMSRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// SMS / verification gateway: "twilio" | "twilio-verify" | "log"
	SMSProvider           string
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioFromNumber      string
	TwilioVerifyServiceID string

	// Logging
	LogMode string
	LogDir  string

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Storage
		StoreBackend: getEnv("STORE_BACKEND", "postgres"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "rsvp"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "rsvp_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		// SQLite
		SQLitePath: getEnv("SQLITE_PATH", "rsvp.db"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Tokens
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		EditTokenDuration:  getEnvAsDuration("EDIT_TOKEN_DURATION", "24h"),
		AdminTokenDuration: getEnvAsDuration("ADMIN_TOKEN_DURATION", "24h"),

		// Admin
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		// Phone handling
		PhoneDefaultRegion:      getEnv("PHONE_DEFAULT_REGION", "US"),
		PhonePermissiveFallback: getEnv("PHONE_PERMISSIVE_FALLBACK", "false") == "true",

		// Verification codes
		CodeTTL:         getEnvAsDuration("CODE_TTL", "10m"),
		CodeMaxAttempts: getEnvAsInt("CODE_MAX_ATTEMPTS", 5),

		// Rate limiting
		IPHashSecret:   getEnv("IP_HASH_SECRET", "default-secret"),
		SMSRateLimit:   getEnvAsInt("SMS_RATE_LIMIT", 5),
		SMSRateWindow:  getEnvAsDuration("SMS_RATE_WINDOW", "1h"),
		AuthRateLimit:  getEnvAsInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getEnvAsDuration("AUTH_RATE_WINDOW", "15m"),

		// SMS
		SMSProvider:           getEnv("SMS_PROVIDER", "twilio"),
		TwilioAccountSID:      getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:       getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:      getEnv("TWILIO_FROM_NUMBER", ""),
		TwilioVerifyServiceID: getEnv("TWILIO_VERIFY_SERVICE_SID", ""),

		// Logging
		LogMode: getEnv("LOG_MODE", "debug"),
		LogDir:  getEnv("LOG_DIR", "logs"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}

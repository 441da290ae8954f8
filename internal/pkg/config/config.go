package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "rapidaid")
	configs.App.Environment = GetEnv("APP_ENV", "")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", true)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 4000)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 0)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 0)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30)

	// Database config
	configs.Database.Host = GetEnv("DB_HOST", "")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 5432)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "disable")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 0)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 0)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 0)

	// NSQ config
	configs.NSQ.NSQDAddress = GetEnv("NSQD_ADDRESS", "localhost:4150")
	configs.NSQ.LookupdAddresses = GetEnvAsSlice("NSQ_LOOKUPD_ADDRESSES", nil)
	configs.NSQ.MaxAttempts = GetEnvAsInt("NSQ_MAX_ATTEMPTS", 5)
	configs.NSQ.Concurrency = GetEnvAsInt("NSQ_CONCURRENCY", 3)

	// JWT config
	configs.JWT.Secret = GetEnv("JWT_SECRET", "")
	configs.JWT.Expiration = GetEnvAsInt("JWT_EXPIRATION", 0)
	configs.JWT.Issuer = GetEnv("JWT_ISSUER", "")

	// Emergency dispatch config
	configs.Emergency.MaxResponders = GetEnvAsInt("EMERGENCY_MAX_RESPONDERS", 6)
	configs.Emergency.RateLimitSeconds = GetEnvAsInt("EMERGENCY_RATE_LIMIT_SECONDS", 40)
	configs.Emergency.UrbanRadiusKm = GetEnvAsFloat("EMERGENCY_URBAN_RADIUS_KM", 6)
	configs.Emergency.SemiUrbanRadiusKm = GetEnvAsFloat("EMERGENCY_SEMI_URBAN_RADIUS_KM", 10)
	configs.Emergency.RuralRadiusKm = GetEnvAsFloat("EMERGENCY_RURAL_RADIUS_KM", 15)
	configs.Emergency.AvgSpeedKmh = GetEnvAsFloat("EMERGENCY_AVG_SPEED_KMH", 30)
	configs.Emergency.AdminPhones = GetEnvAsSlice("ADMIN_PHONES", nil)

	// SMTP config
	configs.SMTP.Host = GetEnv("MAIL_HOST", "")
	configs.SMTP.Port = GetEnvAsInt("MAIL_PORT", 465)
	configs.SMTP.Username = GetEnv("MAIL_USER", "")
	configs.SMTP.Password = GetEnv("MAIL_PASS", "")
	configs.SMTP.From = GetEnv("MAIL_FROM", "")

	// Termii config
	configs.Termii.BaseURL = GetEnv("TERMII_BASE_URL", "https://api.ng.termii.com")
	configs.Termii.APIKey = GetEnv("TERMII_API_KEY", "")
	configs.Termii.SenderID = GetEnv("TERMII_SENDER_ID", "")

	// Twilio config
	configs.Twilio.AccountSID = GetEnv("TWILIO_ACCOUNT_SID", "")
	configs.Twilio.AuthToken = GetEnv("TWILIO_AUTH_TOKEN", "")
	configs.Twilio.SenderPhone = GetEnv("TWILIO_SENDER_PHONE", "")
	configs.Twilio.WhatsAppNumber = GetEnv("TWILIO_WHATSAPP_NUMBER", "")

	// FCM config
	configs.FCM.CredentialsFile = GetEnv("FCM_CREDENTIALS_FILE", "")

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")

	return configs
}

// Helper functions to get environment variables with different types
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

// GetEnvAsSlice parses a comma separated environment variable
func GetEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

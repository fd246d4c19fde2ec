package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv                 string
	AppName                string
	AppPort                string
	LogLevel               string
	LogFormat              string
	CORSAllowOrigins       []string
	JWTSecret              string
	JWTAlgorithm           string
	JWTAudience            string
	JWTIssuer              string
	OpenAIAPIKey           string
	OpenAIModel            string
	OpenAIBaseURL          string
	AIMaxOutputTokens      int
	AITimeoutSeconds       int
	PlacesAPIKey           string
	PlacesBaseURL          string
	PlacesRadiusMeters     int
	VisionAPIKey           string
	VisionEndpoint         string
	StorageURL             string
	StorageServiceKey      string
	StorageHistoryTable    string
	UpstreamTimeoutSeconds int
	DatabaseURL            string
	DBConnectRetries       int
	DBRetryBackoffMS       int
	RedisURL               string
	RateLimitPerMinute     int
	EnableSwagger          bool
}

func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		AppEnv:    getEnv("APP_ENV", "local"),
		AppName:   getEnv("APP_NAME", "CareCompass API"),
		AppPort:   getEnv("APP_PORT", "8000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		CORSAllowOrigins: getEnvCSV(
			"CORS_ALLOW_ORIGINS",
			[]string{"*"},
		),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTAlgorithm:           getEnv("JWT_ALGORITHM", "HS256"),
		JWTAudience:            getEnv("JWT_AUDIENCE", ""),
		JWTIssuer:              getEnv("JWT_ISSUER", ""),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AIMaxOutputTokens:      getEnvInt("AI_MAX_OUTPUT_TOKENS", 1200),
		AITimeoutSeconds:       getEnvInt("AI_TIMEOUT_SECONDS", 30),
		PlacesAPIKey:           getEnv("GOOGLE_PLACES_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		PlacesBaseURL:          getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesRadiusMeters:     getEnvInt("PLACES_RADIUS_METERS", 5000),
		VisionAPIKey:           getEnv("GOOGLE_VISION_API_KEY", ""),
		VisionEndpoint:         getEnv("VISION_ENDPOINT", ""),
		StorageURL:             getEnv("STORAGE_URL", ""),
		StorageServiceKey:      getEnv("STORAGE_SERVICE_KEY", ""),
		StorageHistoryTable:    getEnv("STORAGE_HISTORY_TABLE", "analysis_history"),
		UpstreamTimeoutSeconds: getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 15),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		DBConnectRetries:       getEnvInt("DB_CONNECT_RETRIES", 3),
		DBRetryBackoffMS:       getEnvInt("DB_RETRY_BACKOFF_MS", 500),
		RedisURL:               getEnv("REDIS_URL", ""),
		RateLimitPerMinute:     getEnvInt("RATE_LIMIT_PER_MINUTE", 0),
		EnableSwagger:          getEnvBool("ENABLE_SWAGGER", false),
	}
}

func (c Config) Validate() error {
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if secret == "change-me-in-production" {
		return errors.New("JWT_SECRET must not use insecure default value")
	}
	if len(secret) < 16 {
		return errors.New("JWT_SECRET is too short; use at least 16 characters")
	}
	if strings.TrimSpace(c.JWTAlgorithm) == "" {
		return errors.New("JWT_ALGORITHM is required")
	}
	return nil
}

// MissingCredentials names the external credentials that are not set. The
// process still starts; handlers depending on them answer 500.
func (c Config) MissingCredentials() []string {
	required := []struct {
		name  string
		value string
	}{
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
		{name: "GOOGLE_PLACES_API_KEY", value: c.PlacesAPIKey},
		{name: "GOOGLE_VISION_API_KEY", value: c.VisionAPIKey},
		{name: "STORAGE_URL", value: c.StorageURL},
		{name: "STORAGE_SERVICE_KEY", value: c.StorageServiceKey},
		{name: "DATABASE_URL", value: c.DatabaseURL},
	}
	missing := make([]string, 0)
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			missing = append(missing, item.name)
		}
	}
	return missing
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Catalog   CatalogConfig
	Ranking   RankingConfig
	Assistant AssistantConfig
	MQTT      MQTTConfig
	Speech    SpeechConfig
	Geo       GeoConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// DatabaseConfig selects the booking store and, for the sql catalog, the spot table.
// An empty DSN keeps bookings in memory.
type DatabaseConfig struct {
	Driver             string // postgres, pgx or sqlite
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// CatalogConfig selects where parking spots come from
type CatalogConfig struct {
	Source string // static, file or sql
	File   string
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightDistance     float64
	WeightAvailability float64
	WeightPrice        float64
	WeightRating       float64
}

// AssistantConfig holds chat assistant configuration
type AssistantConfig struct {
	TypingDelayMinMs int
	TypingDelayMaxMs int
	DefaultLanguage  string
}

// MQTTConfig holds the booking confirmation broker settings. Empty BrokerURL disables publishing.
type MQTTConfig struct {
	BrokerURL string
	Topic     string
	ClientID  string
}

// SpeechConfig holds the OpenAI-compatible transcription API settings used for voice input
type SpeechConfig struct {
	APIKey  string
	APIBase string
	Model   string
	Timeout int
	Enabled bool
}

// GeoConfig holds the fallback reference location used when the client sends none
type GeoConfig struct {
	DefaultLat float64
	DefaultLng float64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", "postgres"),
			DSN:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 2),
		},
		Catalog: CatalogConfig{
			Source: getEnv("CATALOG_SOURCE", "static"),
			File:   getEnv("CATALOG_FILE", ""),
		},
		Ranking: RankingConfig{
			WeightDistance:     getEnvAsFloat("RANK_WEIGHT_DISTANCE", 0.35),
			WeightAvailability: getEnvAsFloat("RANK_WEIGHT_AVAILABILITY", 0.30),
			WeightPrice:        getEnvAsFloat("RANK_WEIGHT_PRICE", 0.20),
			WeightRating:       getEnvAsFloat("RANK_WEIGHT_RATING", 0.15),
		},
		Assistant: AssistantConfig{
			TypingDelayMinMs: getEnvAsInt("ASSISTANT_DELAY_MIN_MS", 1000),
			TypingDelayMaxMs: getEnvAsInt("ASSISTANT_DELAY_MAX_MS", 2000),
			DefaultLanguage:  getEnv("ASSISTANT_DEFAULT_LANGUAGE", "en"),
		},
		MQTT: MQTTConfig{
			BrokerURL: getEnv("MQTT_BROKER_URL", ""),
			Topic:     getEnv("MQTT_TOPIC", "parksmart/bookings"),
			ClientID:  getEnv("MQTT_CLIENT_ID", "parksmart-api"),
		},
		Speech: SpeechConfig{
			APIKey:  getEnv("SPEECH_API_KEY", ""),
			APIBase: getEnv("SPEECH_API_BASE", "https://api.openai.com/v1"),
			Model:   getEnv("SPEECH_MODEL", "whisper-1"),
			Timeout: getEnvAsInt("SPEECH_TIMEOUT", 30),
		},
		Geo: GeoConfig{
			// Casablanca city center
			DefaultLat: getEnvAsFloat("GEO_DEFAULT_LAT", 33.5731),
			DefaultLng: getEnvAsFloat("GEO_DEFAULT_LNG", -7.5898),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	// Voice input is only offered when an API key is present
	cfg.Speech.Enabled = cfg.Speech.APIKey != ""

	if cfg.Assistant.TypingDelayMaxMs < cfg.Assistant.TypingDelayMinMs {
		log.Printf("Warning: ASSISTANT_DELAY_MAX_MS < ASSISTANT_DELAY_MIN_MS, using %d for both", cfg.Assistant.TypingDelayMinMs)
		cfg.Assistant.TypingDelayMaxMs = cfg.Assistant.TypingDelayMinMs
	}

	return cfg, nil
}

// Debug reports whether debug logging is on
func (c *Config) Debug() bool {
	return c.Logging.Level == "debug"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

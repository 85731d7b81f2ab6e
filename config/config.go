package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the grievance processor service
type Config struct {
	// Server configuration
	Port string

	// Storage configuration
	DBPath    string
	UploadDir string

	// Image classification service configuration
	DetectorBaseURL       string
	DetectorAPIKey        string
	DetectorModelID       string
	DetectorModelVersion  string
	DetectorMinConfidence int
	DetectorTimeout       time.Duration

	// Translation service configuration
	TranslateURL     string
	TranslateTarget  string
	TranslateTimeout time.Duration

	// RabbitMQ configuration (optional, eventing disabled when AMQPURL is empty)
	AMQPURL            string
	RabbitMQExchange   string
	RabbitMQRoutingKey string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables. An optional .env
// file in the working directory is applied first; real environment
// variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{
		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Storage defaults
		DBPath:    getEnv("DB_PATH", "grievance.db"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		// Classifier defaults
		DetectorBaseURL:       getEnv("DETECTOR_BASE_URL", "https://detect.roboflow.com"),
		DetectorAPIKey:        getEnv("DETECTOR_API_KEY", ""),
		DetectorModelID:       getEnv("DETECTOR_MODEL_ID", "govt_ai_compliant"),
		DetectorModelVersion:  getEnv("DETECTOR_MODEL_VERSION", "1"),
		DetectorMinConfidence: getIntEnv("DETECTOR_MIN_CONFIDENCE", 40),
		DetectorTimeout:       getDurationEnv("DETECTOR_TIMEOUT", 60*time.Second),

		// Translation defaults
		TranslateURL:     getEnv("TRANSLATE_URL", ""),
		TranslateTarget:  getEnv("TRANSLATE_TARGET", "en"),
		TranslateTimeout: getDurationEnv("TRANSLATE_TIMEOUT", 15*time.Second),

		// RabbitMQ defaults
		AMQPURL:            getEnv("AMQP_URL", ""),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "grievance"),
		RabbitMQRoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "complaint.verified"),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// Validate checks that configuration values are sensible.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR cannot be empty")
	}
	if c.DetectorMinConfidence < 0 || c.DetectorMinConfidence > 100 {
		return fmt.Errorf("DETECTOR_MIN_CONFIDENCE must be in [0,100], got %d", c.DetectorMinConfidence)
	}
	if c.DetectorTimeout <= 0 {
		return fmt.Errorf("DETECTOR_TIMEOUT must be positive, got %v", c.DetectorTimeout)
	}
	if c.TranslateTimeout <= 0 {
		return fmt.Errorf("TRANSLATE_TIMEOUT must be positive, got %v", c.TranslateTimeout)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

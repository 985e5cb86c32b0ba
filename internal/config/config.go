package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"exam-service/internal/models"
)

// Config is built once at startup and passed into constructors. Nothing else
// in the service reads the environment.
type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	MinIO    MinIOConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig

	// DefaultTier is assigned to content created without an explicit tier.
	DefaultTier models.Tier
}

type ServerConfig struct {
	Port         string
	AllowOrigins []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	Bucket          string
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type AuthConfig struct {
	JWTSecret string
}

// Load reads the configuration from environment variables and validates it.
// An unknown default tier or a missing required setting is fatal to the
// caller; it never degrades into a runtime silent pass.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			AllowOrigins: strings.Split(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"), ","),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getEnv("MONGO_DB", "exam_service"),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "minio:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:          getEnvAsBool("MINIO_USE_SSL", false),
			Region:          getEnv("MINIO_REGION", "us-east-1"),
			Bucket:          getEnv("MINIO_QUESTION_BUCKET", "question-images"),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      os.Getenv("RABBITMQ_URI"),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "exam.events"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
	}

	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	tier, err := models.ParseTier(getEnv("DEFAULT_CONTENT_TIER", string(models.TierFree)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_CONTENT_TIER: %w", err)
	}
	cfg.DefaultTier = tier

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Error converting %s to bool: %v", key, err)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("Error converting %s to duration: %v", key, err)
			return defaultValue
		}
		return time.Duration(intVal) * time.Second
	}
	return defaultValue
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type EvaluationServiceConfig struct {
	Port        string
	LogDir      string
	SchemaPath  string
	PostgresCfg PostgresConfig
	RabbitMQCfg RabbitMQConfig
	RedisCfg    RedisConfig
	MinioCfg    MinioConfig
	CacheCfg    CacheConfig
	WorkerCfg   WorkerConfig
}

type MinioConfig struct {
	MinioURL        string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioLocation   string
	MinioSecure     string
	ReportURLExpiry time.Duration
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Host     string
	Username string
	Password string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CacheConfig struct {
	EvaluationTTL time.Duration
}

// WorkerConfig sizes the pool that archives report workbooks.
type WorkerConfig struct {
	NumWorkers int
	QueueSize  int
}

func New() *EvaluationServiceConfig {
	return &EvaluationServiceConfig{
		Port:       getEnvOrDefault("EVALUATION_SERVICE_PORT", "8089"),
		LogDir:     getEnvOrDefault("LOG_DIR", "/agrisa/log/evaluation_service"),
		SchemaPath: getEnvOrDefault("SCHEMA_PATH", ""),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "evaluation"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Host:     getEnvOrDefault("RABBITMQ_HOST", "rabbitmq"),
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		MinioCfg: MinioConfig{
			MinioURL:        getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey:  getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey:  getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:   getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:     getEnvOrDefault("MINIO_SECURE", ""),
			ReportURLExpiry: getEnvAsDuration("REPORT_URL_EXPIRY", 15*time.Minute),
		},
		CacheCfg: CacheConfig{
			EvaluationTTL: getEnvAsDuration("EVALUATION_CACHE_TTL", 10*time.Minute),
		},
		WorkerCfg: WorkerConfig{
			NumWorkers: getEnvAsInt("REPORT_WORKERS", 2),
			QueueSize:  getEnvAsInt("REPORT_QUEUE_SIZE", 64),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid value for %s: %v. Defaulting to %d.", key, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s", "10m").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		log.Printf("Invalid value for %s: %q. Defaulting to %s.", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

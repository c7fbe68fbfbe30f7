package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки приложения
// Загружается один раз при старте и далее не изменяется
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	App     AppConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// MongoDBConfig - настройки подключения к MongoDB
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig - настройки подключения к Redis (кеш каталога)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka producer для событий отзывов
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// JWTConfig - настройки сессионных токенов
// Secret используется и для подписи JWT, и для внешней подписи cookie
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	APIVersion        string
	Env               string // development, production
	ReconcileSchedule string // cron-выражение фонового пересчёта рейтингов
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	expiresIn, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "8h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8000"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "hazelmart"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			ExpiresIn: expiresIn,
		},
		App: AppConfig{
			APIVersion:        getEnv("API_VERSION", "v1"),
			Env:               getEnv("APP_ENV", "development"),
			ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 10m"),
		},
	}, nil
}

// IsProduction сообщает, работает ли сервис в production окружении
// Управляет флагом secure у сессионной cookie
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

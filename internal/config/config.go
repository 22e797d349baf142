package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

type BookingConfig struct {
	TaxRate    float64
	SessionTTL time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPortStr := os.Getenv("POSTGRES_PORT")
	if postgresPortStr == "" {
		postgresPortStr = "5432"
	}

	postgresPort, err := strconv.Atoi(postgresPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	}

	catalogBaseURL := os.Getenv("CATALOG_BASE_URL")
	if catalogBaseURL == "" {
		return nil, fmt.Errorf("%s: missing CATALOG_BASE_URL", op)
	}

	catalogTimeoutStr := os.Getenv("CATALOG_TIMEOUT_SECONDS")
	if catalogTimeoutStr == "" {
		catalogTimeoutStr = "10"
	}

	catalogTimeout, err := strconv.Atoi(catalogTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid CATALOG_TIMEOUT_SECONDS: %w", op, err)
	}

	catalogCfg := CatalogConfig{
		BaseURL: catalogBaseURL,
		Timeout: time.Duration(catalogTimeout) * time.Second,
	}

	taxRateStr := os.Getenv("TAX_RATE")
	if taxRateStr == "" {
		taxRateStr = "0.06"
	}

	taxRate, err := strconv.ParseFloat(taxRateStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid TAX_RATE: %w", op, err)
	}
	if taxRate < 0 || taxRate >= 1 {
		return nil, fmt.Errorf("%s: TAX_RATE must be a fraction in [0, 1)", op)
	}

	sessionTTLStr := os.Getenv("SESSION_TTL_MINUTES")
	if sessionTTLStr == "" {
		sessionTTLStr = "120"
	}

	sessionTTL, err := strconv.Atoi(sessionTTLStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SESSION_TTL_MINUTES: %w", op, err)
	}

	bookingCfg := BookingConfig{
		TaxRate:    taxRate,
		SessionTTL: time.Duration(sessionTTL) * time.Minute,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Catalog:  catalogCfg,
		Booking:  bookingCfg,
	}, nil
}

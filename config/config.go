package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Eursukkul/table-booking/internal/ledger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	ServerPort string
	LogLevel   string

	StorageDriver string
	SQLitePath    string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// RabbitURL is optional; an empty value disables event publishing.
	RabbitURL string

	Capacity int
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/ledger.db"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "table_booking_db"),
		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		Capacity:      ledger.DefaultCapacity,
	}

	if v := os.Getenv("LEDGER_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("LEDGER_CAPACITY must be a positive integer, got %q", v)
		}
		cfg.Capacity = n
	}

	switch cfg.StorageDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.StorageDriver)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

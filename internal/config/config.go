package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa la configuración necesaria para correr la aplicación.
type Config struct {
	Port            string
	DatabaseURL     string
	LogLevel        slog.Level
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ServerTiming    bool
	Telemetry       bool
}

// Load lee variables de entorno (y un .env opcional) y valida lo mínimo indispensable.
func Load() (Config, error) {
	// El .env es opcional: en producción las variables vienen del entorno.
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	// Normalizamos por si alguien manda ":8080"
	port = strings.TrimPrefix(port, ":")

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return Config{}, fmt.Errorf("missing required env var: DATABASE_URL")
	}

	logLevel, err := parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Config{}, err
	}

	requestTimeout, err := durationOrDefault("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	shutdownTimeout, err := durationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	serverTiming, err := boolOrFalse("SERVER_TIMING")
	if err != nil {
		return Config{}, err
	}

	telemetry, err := boolOrFalse("TELEMETRY")
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:            port,
		DatabaseURL:     databaseURL,
		LogLevel:        logLevel,
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: shutdownTimeout,
		ServerTiming:    serverTiming,
		Telemetry:       telemetry,
	}, nil
}

func parseLevel(value string) (slog.Level, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid env var LOG_LEVEL=%q: %w", value, err)
	}
	return level, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid env var %s=%q: %w", key, value, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid env var %s=%q: must be positive", key, value)
	}
	return duration, nil
}

func boolOrFalse(key string) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return false, nil
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid env var %s=%q: %w", key, value, err)
	}
	return enabled, nil
}

// Package config содержит логику чтения конфигурации сервиса Waste2Wealth.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const defaultRunAddress = "localhost:8080"

// Config содержит параметры конфигурации сервиса Waste2Wealth.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	JWTSecret   string `env:"JWT_SECRET"`

	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	GeocodeCacheTTL time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"720h"`

	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	RouteAITimeout time.Duration `env:"ROUTE_AI_TIMEOUT" envDefault:"8s"`

	GoogleMapsAPIKey string        `env:"GOOGLE_MAPS_API_KEY"`
	GoogleMapsRegion string        `env:"GOOGLE_MAPS_REGION" envDefault:"in"`
	NominatimURL     string        `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org"`
	GeocodeRegion    string        `env:"GEOCODE_REGION" envDefault:"Mysuru, Karnataka, India"`
	GeocodeTimeout   time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"3s"`
	GeocodeRate      float64       `env:"GEOCODE_RATE" envDefault:"1"`
	DefaultLat       float64       `env:"DEFAULT_LAT" envDefault:"12.2958"`
	DefaultLon       float64       `env:"DEFAULT_LON" envDefault:"76.6394"`

	AllowReopenCompleted bool `env:"PICKUP_ALLOW_REOPEN_COMPLETED" envDefault:"true"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg, err := ParseEnv()
	if err != nil {
		return nil, err
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envJWTSecret := cfg.JWTSecret

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.JWTSecret, "s", "", "JWT signing secret")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envJWTSecret != "" {
		cfg.JWTSecret = envJWTSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}

	return cfg, nil
}

// ParseEnv считывает конфигурацию только из переменных окружения. Используется
// утилитами, которые разбирают аргументы командной строки самостоятельно.
func ParseEnv() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.GeocodeRate <= 0 {
		return nil, fmt.Errorf("geocode rate must be positive, got %v", cfg.GeocodeRate)
	}

	return cfg, nil
}

// Package app собирает зависимости сервиса Waste2Wealth из конфигурации.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/config"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/geocode"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/metrics"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/middleware"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/repository"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/route"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/service"
)

// App содержит собранные компоненты и освобождает их в Close.
type App struct {
	Service *service.Service
	Auth    *middleware.AuthMiddleware
	Metrics *metrics.Metrics

	closers []func() error
}

// New подключается к БД, Redis и внешним провайдерам согласно cfg.
// Необязательные провайдеры без ключей не создаются.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*App, error) {
	a := &App{Metrics: m}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("database initialization: %w", err)
	}
	a.closers = append(a.closers, repo.Close)

	cache, err := a.newCache(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	geocoder, err := newGeocoder(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	resolver := geocode.NewResolver(geocoder, cache, geocode.Options{
		Region:  cfg.GeocodeRegion,
		Timeout: cfg.GeocodeTimeout,
		Center:  model.GeoPoint{Lat: cfg.DefaultLat, Lon: cfg.DefaultLon},
	}, logger, m)

	var planner route.Planner
	if cfg.GeminiAPIKey != "" {
		gp, err := route.NewGeminiPlanner(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeocodeRegion)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		a.closers = append(a.closers, gp.Close)
		planner = gp
	} else {
		logger.Info("GEMINI_API_KEY not set, route optimization uses nearest neighbour only")
	}

	a.Auth = middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, tokens will not survive a restart")
	}

	a.Service = service.NewService(repo, service.Deps{
		Tokens:       a.Auth,
		Geocoder:     resolver,
		Routes:       route.NewOptimizer(planner, cfg.RouteAITimeout, logger, m),
		Policy:       lifecycle.PickupPolicy{AllowReopenCompleted: cfg.AllowReopenCompleted},
		BackfillRate: cfg.GeocodeRate,
		Logger:       logger,
		Metrics:      m,
	})

	return a, nil
}

func (a *App) newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (geocode.Cache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	logger.Info("geocode cache enabled", zap.String("addr", cfg.RedisAddr))
	return geocode.NewRedisCache(client, cfg.GeocodeCacheTTL), nil
}

func newGeocoder(cfg *config.Config) (geocode.Geocoder, error) {
	if cfg.GoogleMapsAPIKey != "" {
		gc, err := geocode.NewGoogleClient(cfg.GoogleMapsAPIKey, cfg.GoogleMapsRegion)
		if err != nil {
			return nil, fmt.Errorf("google maps client: %w", err)
		}
		return gc, nil
	}
	return geocode.NewNominatimClient(cfg.NominatimURL), nil
}

// Close освобождает ресурсы в порядке, обратном созданию.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Package geocode переводит адреса в координаты. Resolver опрашивает кэш и
// внешний геокодер под жёстким таймаутом и при любой неудаче возвращает
// детерминированную точку рядом с центром города.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/metrics"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// NotProvided обозначает адрес доставки по умолчанию, для которого координаты не ищутся.
const NotProvided = "Not provided"

// ErrNotFound возвращается, если геокодер не нашёл адрес.
var ErrNotFound = errors.New("address not found")

// Result содержит найденную точку и её описание от геокодера.
type Result struct {
	Point       model.GeoPoint `json:"point"`
	DisplayName string         `json:"displayName,omitempty"`
}

// Geocoder ищет координаты по строке запроса.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

// Cache хранит ранее найденные результаты.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, res Result) error
}

// Options настраивает Resolver.
type Options struct {
	Region  string
	Timeout time.Duration
	Center  model.GeoPoint
}

// Resolver объединяет кэш, внешний геокодер и запасной расчёт координат.
type Resolver struct {
	geocoder Geocoder
	cache    Cache
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewResolver создаёт Resolver. geocoder и cache могут быть nil.
func NewResolver(geocoder Geocoder, cache Cache, opts Options, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
}

var spaces = regexp.MustCompile(`\s+`)

// Query нормализует адрес и дописывает к нему регион.
func (r *Resolver) Query(address string) string {
	clean := spaces.ReplaceAllString(strings.TrimSpace(address), " ")
	if r.opts.Region == "" {
		return clean
	}
	return clean + ", " + r.opts.Region
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(query)
}

// Lookup ищет адрес в кэше, затем у геокодера. Ошибки кэша не прерывают поиск.
func (r *Resolver) Lookup(ctx context.Context, address string) (Result, error) {
	if strings.TrimSpace(address) == "" {
		return Result{}, ErrNotFound
	}

	query := r.Query(address)
	key := cacheKey(query)

	if r.cache != nil {
		res, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("geocode cache read failed", zap.Error(err))
		}
		r.metrics.CacheLookup(ok)
		if ok {
			r.metrics.Geocode("cache")
			return res, nil
		}
	}

	if r.geocoder == nil {
		return Result{}, fmt.Errorf("geocoder not configured")
	}

	lookupCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	res, err := r.geocoder.Geocode(lookupCtx, query)
	if err != nil {
		return Result{}, err
	}
	r.metrics.Geocode("provider")

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, res); err != nil {
			r.logger.Warn("geocode cache write failed", zap.Error(err))
		}
	}

	return res, nil
}

// Resolve всегда возвращает координаты: при неудаче поиска используется Fallback.
func (r *Resolver) Resolve(ctx context.Context, address string) model.GeoPoint {
	res, err := r.Lookup(ctx, address)
	if err == nil {
		return res.Point
	}

	point := Fallback(r.opts.Center, address)
	r.metrics.Geocode("fallback")
	r.logger.Warn("geocoding failed, using fallback coordinates",
		zap.String("address", address),
		zap.Float64("lat", point.Lat),
		zap.Float64("lon", point.Lon),
		zap.Error(err),
	)
	return point
}

// ResolveDelivery возвращает координаты адреса доставки заказа или nil,
// если адрес не указан.
func (r *Resolver) ResolveDelivery(ctx context.Context, address string) *model.GeoPoint {
	if strings.TrimSpace(address) == "" || address == NotProvided {
		return nil
	}
	p := r.Resolve(ctx, address)
	return &p
}

// Fallback возвращает точку, смещённую от center на ((сумма кодов UTF-16 mod 100) - 50) / 1000
// градуса по обеим осям. Символы вне BMP считаются двумя суррогатными единицами.
// Один и тот же адрес всегда даёт одну и ту же точку.
func Fallback(center model.GeoPoint, address string) model.GeoPoint {
	var sum int
	for _, unit := range utf16.Encode([]rune(address)) {
		sum += int(unit)
	}
	offset := float64(sum%100-50) / 1000

	return model.GeoPoint{
		Lat: center.Lat + offset,
		Lon: center.Lon + offset,
	}
}

// Package route строит порядок объезда точек вывоза. Порядок запрашивается у
// внешнего планировщика под жёстким таймаутом, а при любой его ошибке
// рассчитывается жадным алгоритмом ближайшего соседа.
package route

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/metrics"
)

// Способ, которым построен маршрут.
const (
	// MethodAI означает, что порядок точек предложила модель.
	MethodAI = "gemini"
	// MethodFallback означает расчёт методом ближайшего соседа.
	MethodFallback = "fallback"

	earthRadiusKm   = 6371.0
	averageSpeedKmh = 30.0
	minutesPerStop  = 5
	savedPerStop    = 2
)

var (
	// ErrTooFewLocations возвращается, если точек меньше двух.
	ErrTooFewLocations = errors.New("at least 2 locations required")
	// ErrInvalidLocation возвращается, если у точки нет имени или координат.
	ErrInvalidLocation = errors.New("location must have name, lat and lon")
)

// Location описывает точку маршрута. Первая точка считается депо.
type Location struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
}

// Stop описывает точку с порядковым номером в маршруте, начиная с 1.
type Stop struct {
	Location
	StopNumber int `json:"stopNumber"`
}

// Summary содержит оценку маршрута.
type Summary struct {
	TotalStops    int     `json:"totalStops"`
	TotalDistance float64 `json:"totalDistance"`
	EstimatedTime int     `json:"estimatedTime"`
	TimeSaved     int     `json:"timeSaved"`
}

// Plan содержит результат оптимизации.
type Plan struct {
	Method    string  `json:"method"`
	Stops     []Stop  `json:"optimizedOrder"`
	Summary   Summary `json:"metrics"`
	Reasoning string  `json:"-"`
}

// Planner предлагает порядок обхода в виде перестановки индексов.
type Planner interface {
	Plan(ctx context.Context, locations []Location) (order []int, reasoning string, err error)
}

// Optimizer строит маршрут.
type Optimizer struct {
	planner Planner
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewOptimizer создаёт Optimizer. Если planner равен nil, всегда используется
// алгоритм ближайшего соседа.
func NewOptimizer(planner Planner, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{planner: planner, timeout: timeout, logger: logger, metrics: m}
}

// Validate проверяет входные точки.
func Validate(locations []Location) error {
	if len(locations) < 2 {
		return ErrTooFewLocations
	}
	for _, loc := range locations {
		if strings.TrimSpace(loc.Name) == "" ||
			loc.Lat < -90 || loc.Lat > 90 ||
			loc.Lon < -180 || loc.Lon > 180 {
			return ErrInvalidLocation
		}
	}
	return nil
}

// Optimize возвращает маршрут через все точки, начиная с locations[0].
func (o *Optimizer) Optimize(ctx context.Context, locations []Location) (Plan, error) {
	if err := Validate(locations); err != nil {
		return Plan{}, err
	}

	method := MethodAI
	order, reasoning, err := o.askPlanner(ctx, locations)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Plan{}, ctxErr
		}
		o.logger.Warn("route planner failed, using nearest neighbour",
			zap.Int("locations", len(locations)),
			zap.Error(err),
		)
		method = MethodFallback
		order = NearestNeighbour(locations)
		reasoning = ""
	}
	o.metrics.RoutePlan(method)

	stops := make([]Stop, len(order))
	for i, idx := range order {
		stops[i] = Stop{Location: locations[idx], StopNumber: i + 1}
	}

	return Plan{
		Method:    method,
		Stops:     stops,
		Summary:   Summarize(stops),
		Reasoning: reasoning,
	}, nil
}

func (o *Optimizer) askPlanner(ctx context.Context, locations []Location) ([]int, string, error) {
	if o.planner == nil {
		return nil, "", errors.New("route planner not configured")
	}

	planCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		planCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	order, reasoning, err := o.planner.Plan(planCtx, locations)
	if err != nil {
		return nil, "", err
	}
	if err := checkPermutation(order, len(locations)); err != nil {
		return nil, "", err
	}
	return order, reasoning, nil
}

// checkPermutation требует, чтобы order содержал каждый индекс 0..n-1 ровно
// один раз и начинался с 0.
func checkPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("planner returned %d stops, want %d", len(order), n)
	}
	if order[0] != 0 {
		return fmt.Errorf("planner route starts at %d, want 0", order[0])
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n {
			return fmt.Errorf("planner returned index %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("planner returned index %d twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

// NearestNeighbour строит порядок обхода жадно: из текущей точки в ближайшую
// непосещённую. При равных расстояниях выбирается точка с меньшим индексом.
func NearestNeighbour(locations []Location) []int {
	n := len(locations)
	if n == 0 {
		return nil
	}

	order := make([]int, 0, n)
	visited := make([]bool, n)
	current := 0
	order = append(order, current)
	visited[current] = true

	for len(order) < n {
		next := -1
		best := math.Inf(1)
		for i := range locations {
			if visited[i] {
				continue
			}
			d := Haversine(locations[current], locations[i])
			if d < best {
				best = d
				next = i
			}
		}
		visited[next] = true
		order = append(order, next)
		current = next
	}

	return order
}

// Haversine возвращает расстояние между точками по большому кругу в километрах.
func Haversine(a, b Location) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Summarize считает длину маршрута (км, два знака), время в пути при средней
// скорости 30 км/ч плюс 5 минут на остановку и условную экономию времени.
func Summarize(stops []Stop) Summary {
	var km float64
	for i := 0; i+1 < len(stops); i++ {
		km += Haversine(stops[i].Location, stops[i+1].Location)
	}

	n := len(stops)
	return Summary{
		TotalStops:    n,
		TotalDistance: math.Round(km*100) / 100,
		EstimatedTime: int(math.Round(km/averageSpeedKmh*60 + float64(n*minutesPerStop))),
		TimeSaved:     n * savedPerStop,
	}
}

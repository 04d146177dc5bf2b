// Package metrics содержит Prometheus-метрики сервиса Waste2Wealth.
// Все методы Metrics допускают nil-получатель и в этом случае ничего не делают.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waste2wealth"

// Metrics объединяет метрики HTTP-слоя и доменных операций.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	inFlight        prometheus.Gauge

	transitions    *prometheus.CounterVec
	pointsCredited prometheus.Counter
	pointsRedeemed prometheus.Counter
	stockAvailable prometheus.Gauge
	geocodes       *prometheus.CounterVec
	routePlans     *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// New создаёт метрики в собственном реестре вместе с метриками рантайма Go и процесса.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Status transitions by aggregate, target status and result.",
		}, []string{"aggregate", "to", "result"}),
		pointsCredited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "points_credited_total",
			Help:      "Reward points credited for completed pickups.",
		}),
		pointsRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "points_redeemed_total",
			Help:      "Reward points spent on redemptions.",
		}),
		stockAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "compost",
			Name:      "available_kg",
			Help:      "Compost available for sale, kg.",
		}),
		geocodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "resolutions_total",
			Help:      "Address resolutions by source.",
		}, []string{"source"}),
		routePlans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "route",
			Name:      "plans_total",
			Help:      "Route plans by method.",
		}, []string{"method"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.inFlight,
		m.transitions,
		m.pointsCredited,
		m.pointsRedeemed,
		m.stockAvailable,
		m.geocodes,
		m.routePlans,
		m.cacheLookups,
	)

	return m
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт страницу метрик для GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware считает запросы и их длительность. В метку route попадает шаблон
// маршрута chi, а не сырой путь, чтобы идентификаторы не раздували кардинальность.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(rec.status)

		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

// Transition учитывает применённый или отклонённый переход статуса.
func (m *Metrics) Transition(aggregate, to, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(aggregate, to, result).Inc()
}

// PointsCredited учитывает начисленные баллы.
func (m *Metrics) PointsCredited(points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsCredited.Add(float64(points))
}

// PointsRedeemed учитывает списанные при обмене баллы.
func (m *Metrics) PointsRedeemed(points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsRedeemed.Add(float64(points))
}

// StockAvailable выставляет текущий остаток компоста.
func (m *Metrics) StockAvailable(kg float64) {
	if m == nil {
		return
	}
	m.stockAvailable.Set(kg)
}

// Geocode учитывает разрешение адреса указанным источником.
func (m *Metrics) Geocode(source string) {
	if m == nil {
		return
	}
	m.geocodes.WithLabelValues(source).Inc()
}

// RoutePlan учитывает построенный маршрут указанным методом.
func (m *Metrics) RoutePlan(method string) {
	if m == nil {
		return
	}
	m.routePlans.WithLabelValues(method).Inc()
}

// CacheLookup учитывает обращение к кэшу геокодирования.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

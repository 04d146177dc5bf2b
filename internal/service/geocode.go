package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/geocode"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/route"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

// Geocode ищет координаты адреса без запасного расчёта.
// Неизвестный адрес возвращается как geocode.ErrNotFound.
func (s *Service) Geocode(ctx context.Context, address string) (geocode.Result, error) {
	if err := validation.Required("address", address); err != nil {
		return geocode.Result{}, err
	}
	return s.geocoder.Lookup(ctx, address)
}

// OptimizeRoute строит маршрут объезда точек вывоза.
func (s *Service) OptimizeRoute(ctx context.Context, locations []route.Location) (route.Plan, error) {
	plan, err := s.routes.Optimize(ctx, locations)
	if err != nil {
		return route.Plan{}, err
	}

	s.logger.Info("route optimized",
		zap.String("method", plan.Method),
		zap.Int("stops", plan.Summary.TotalStops),
		zap.Float64("distance_km", plan.Summary.TotalDistance),
	)
	return plan, nil
}

// BackfillItem описывает заказ, которому проставлены координаты.
type BackfillItem struct {
	OrderID string
	Number  string
	Address string
	Point   model.GeoPoint
}

// BackfillReport содержит итог заполнения координат заказов.
type BackfillReport struct {
	Total   int
	Updated int
	Items   []BackfillItem
}

// BackfillOrderCoordinates геокодирует адреса заказов без координат с ограничением
// частоты запросов. Заказы без адреса доставки пропускаются.
func (s *Service) BackfillOrderCoordinates(ctx context.Context) (BackfillReport, error) {
	orders, err := s.repo.ListOrdersWithoutCoordinates(ctx)
	if err != nil {
		return BackfillReport{}, err
	}

	report := BackfillReport{Total: len(orders), Items: make([]BackfillItem, 0, len(orders))}
	limiter := rate.NewLimiter(rate.Limit(s.backfillRate), 1)

	for _, o := range orders {
		if o.DeliveryAddress == "" || o.DeliveryAddress == geocode.NotProvided {
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("wait for geocode slot: %w", err)
		}

		point := s.geocoder.Resolve(ctx, o.DeliveryAddress)
		ok, err := s.repo.SetOrderCoordinates(ctx, o.ID, point)
		if err != nil {
			return report, err
		}
		if !ok {
			continue
		}

		report.Updated++
		report.Items = append(report.Items, BackfillItem{
			OrderID: o.ID,
			Number:  o.Number(),
			Address: o.DeliveryAddress,
			Point:   point,
		})
	}

	s.logger.Info("order coordinates backfilled", zap.Int("total", report.Total), zap.Int("updated", report.Updated))
	return report, nil
}

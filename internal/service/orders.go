package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/geocode"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

// OrderInput содержит данные заказа компоста.
type OrderInput struct {
	CompostName     string
	Quantity        decimal.Decimal
	DeliveryAddress string
	Lat             *float64
	Lon             *float64
}

// PlaceOrder создаёт заказ фермера в статусе pending. Цена и сумма остаются
// нулевыми до подтверждения.
func (s *Service) PlaceOrder(ctx context.Context, farmerID string, in OrderInput) (*model.Order, error) {
	err := validation.First(
		validation.Required("compostName", in.CompostName),
		validation.MaxLength("compostName", in.CompostName, 200),
		validation.Quantity("quantity", in.Quantity),
		validation.MaxLength("deliveryAddress", in.DeliveryAddress, 500),
	)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(in.DeliveryAddress)
	if address == "" {
		address = geocode.NotProvided
	}

	var point *model.GeoPoint
	if in.Lat != nil && in.Lon != nil {
		if err := validation.First(
			validation.Latitude("lat", *in.Lat),
			validation.Longitude("lon", *in.Lon),
		); err != nil {
			return nil, err
		}
		point = &model.GeoPoint{Lat: *in.Lat, Lon: *in.Lon}
	} else {
		point = s.geocoder.ResolveDelivery(ctx, address)
	}

	o, err := s.repo.CreateOrder(ctx, model.Order{
		FarmerID:        farmerID,
		CompostName:     strings.TrimSpace(in.CompostName),
		Quantity:        in.Quantity,
		DeliveryAddress: address,
		Coordinates:     point,
		Status:          model.OrderStatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("farmer_id", farmerID),
		zap.String("quantity", o.Quantity.String()),
	)
	return o, nil
}

// MyOrders возвращает заказы фермера, новые первыми.
func (s *Service) MyOrders(ctx context.Context, farmerID string) ([]model.Order, error) {
	return s.repo.ListOrdersByFarmer(ctx, farmerID)
}

// AllOrders возвращает все заказы с данными фермеров.
func (s *Service) AllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListOrders(ctx)
}

// UpdateOrderStatus применяет к заказу целевой статус.
func (s *Service) UpdateOrderStatus(ctx context.Context, actorID, orderID string, target model.OrderStatus) (lifecycle.OrderOutcome, error) {
	meta := s.meta(actorID)
	out, err := s.repo.TransitionOrder(ctx, orderID, func(o model.Order, stock model.CompostStock) (lifecycle.OrderOutcome, error) {
		return lifecycle.TransitionOrder(o, target, stock, meta)
	})
	if err != nil {
		s.metrics.Transition(string(model.AggregateOrder), string(target), "rejected")
		s.logger.Info("order transition rejected",
			zap.String("order_id", orderID),
			zap.String("target", string(target)),
			zap.Error(err),
		)
		return lifecycle.OrderOutcome{}, err
	}

	if out.NoOp {
		s.metrics.Transition(string(model.AggregateOrder), string(target), "noop")
		return out, nil
	}

	s.metrics.Transition(string(model.AggregateOrder), string(target), "applied")
	if out.StockChanged {
		s.metrics.StockAvailable(out.Stock.Available.InexactFloat64())
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(out.Order.Status)),
		zap.Bool("stock_changed", out.StockChanged),
	)
	return out, nil
}

// OrderEvents возвращает журнал переходов заказа.
func (s *Service) OrderEvents(ctx context.Context, orderID string) ([]model.StatusEvent, error) {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListStatusEvents(ctx, model.AggregateOrder, orderID)
}

package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

// PickupInput содержит данные заявки на вывоз. Координаты необязательны: если они не
// заданы, адрес геокодируется.
type PickupInput struct {
	Quantity     decimal.Decimal
	Address      string
	WasteType    string
	Phone        string
	PickupDate   string
	PickupTime   string
	Instructions string
	Lat          *float64
	Lon          *float64
}

// RequestPickup создаёт заявку домохозяйства в статусе pending.
func (s *Service) RequestPickup(ctx context.Context, ownerID string, in PickupInput) (*model.Pickup, error) {
	err := validation.First(
		validation.Quantity("quantity", in.Quantity),
		validation.Required("address", in.Address),
		validation.MaxLength("address", in.Address, 500),
		validation.MaxLength("instructions", in.Instructions, 1000),
	)
	if err != nil {
		return nil, err
	}

	var point model.GeoPoint
	if in.Lat != nil && in.Lon != nil {
		if err := validation.First(
			validation.Latitude("lat", *in.Lat),
			validation.Longitude("lon", *in.Lon),
		); err != nil {
			return nil, err
		}
		point = model.GeoPoint{Lat: *in.Lat, Lon: *in.Lon}
	} else {
		point = s.geocoder.Resolve(ctx, in.Address)
	}

	p, err := s.repo.CreatePickup(ctx, model.Pickup{
		OwnerID:      ownerID,
		Quantity:     in.Quantity,
		Address:      strings.TrimSpace(in.Address),
		Coordinates:  &point,
		WasteType:    in.WasteType,
		Phone:        in.Phone,
		PickupDate:   in.PickupDate,
		PickupTime:   in.PickupTime,
		Instructions: in.Instructions,
		Status:       model.PickupStatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pickup requested",
		zap.String("pickup_id", p.ID),
		zap.String("owner_id", ownerID),
		zap.String("quantity", p.Quantity.String()),
	)
	return p, nil
}

// MyPickups возвращает заявки пользователя, новые первыми.
func (s *Service) MyPickups(ctx context.Context, ownerID string) ([]model.Pickup, error) {
	return s.repo.ListPickupsByOwner(ctx, ownerID)
}

// AllPickups возвращает все заявки с данными владельцев.
func (s *Service) AllPickups(ctx context.Context) ([]model.Pickup, error) {
	return s.repo.ListPickups(ctx)
}

// UpdatePickupStatus применяет к заявке целевой статус.
func (s *Service) UpdatePickupStatus(ctx context.Context, actorID, pickupID string, target model.PickupStatus) (lifecycle.PickupOutcome, error) {
	meta := s.meta(actorID)
	out, err := s.repo.TransitionPickup(ctx, pickupID, func(p model.Pickup, stock model.CompostStock, owner *model.User) (lifecycle.PickupOutcome, error) {
		return lifecycle.TransitionPickup(p, target, stock, owner, s.policy, meta)
	})
	return s.observePickup(pickupID, string(target), out, err)
}

// CompletePickup отмечает заявку выполненной. Повторное выполнение запрещено.
func (s *Service) CompletePickup(ctx context.Context, actorID, pickupID string) (lifecycle.PickupOutcome, error) {
	meta := s.meta(actorID)
	out, err := s.repo.TransitionPickup(ctx, pickupID, func(p model.Pickup, stock model.CompostStock, owner *model.User) (lifecycle.PickupOutcome, error) {
		return lifecycle.CompletePickup(p, stock, owner, s.policy, meta)
	})
	return s.observePickup(pickupID, string(model.PickupStatusCompleted), out, err)
}

func (s *Service) observePickup(pickupID, target string, out lifecycle.PickupOutcome, err error) (lifecycle.PickupOutcome, error) {
	if err != nil {
		s.metrics.Transition(string(model.AggregatePickup), target, "rejected")
		s.logger.Info("pickup transition rejected",
			zap.String("pickup_id", pickupID),
			zap.String("target", target),
			zap.Error(err),
		)
		return lifecycle.PickupOutcome{}, err
	}

	if out.NoOp {
		s.metrics.Transition(string(model.AggregatePickup), target, "noop")
		return out, nil
	}

	s.metrics.Transition(string(model.AggregatePickup), target, "applied")
	s.metrics.PointsCredited(out.PointsCredited)
	if out.StockChanged {
		s.metrics.StockAvailable(out.Stock.Available.InexactFloat64())
	}

	if out.OwnerMissing {
		s.logger.Warn("pickup owner not found, reward points not credited",
			zap.String("pickup_id", pickupID),
			zap.String("owner_id", out.Pickup.OwnerID),
			zap.Int64("points", out.Pickup.PointsAwarded),
		)
	}

	s.logger.Info("pickup status updated",
		zap.String("pickup_id", pickupID),
		zap.String("status", string(out.Pickup.Status)),
		zap.Int64("points_credited", out.PointsCredited),
		zap.Bool("stock_changed", out.StockChanged),
	)
	return out, nil
}

// PickupEvents возвращает журнал переходов заявки.
func (s *Service) PickupEvents(ctx context.Context, pickupID string) ([]model.StatusEvent, error) {
	if _, err := s.repo.GetPickup(ctx, pickupID); err != nil {
		return nil, err
	}
	return s.repo.ListStatusEvents(ctx, model.AggregatePickup, pickupID)
}

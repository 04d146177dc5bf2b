package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

// Stock возвращает текущий остаток компоста. Строка остатка создаётся при первом чтении.
func (s *Service) Stock(ctx context.Context) (model.CompostStock, error) {
	return s.repo.GetStock(ctx)
}

// StockPatch описывает частичное обновление остатка. Пустые поля не меняются.
type StockPatch struct {
	Available  *decimal.Decimal
	PricePerKg *decimal.Decimal
}

// UpdateStock задаёт остаток и/или цену компоста.
func (s *Service) UpdateStock(ctx context.Context, patch StockPatch) (model.CompostStock, error) {
	if patch.Available != nil {
		if err := validation.StockAmount("available", *patch.Available); err != nil {
			return model.CompostStock{}, err
		}
	}
	if patch.PricePerKg != nil {
		if err := validation.Price("pricePerKg", *patch.PricePerKg); err != nil {
			return model.CompostStock{}, err
		}
	}

	stock, err := s.repo.UpdateStock(ctx, func(cur model.CompostStock) (model.CompostStock, error) {
		if patch.Available != nil {
			cur.Available = *patch.Available
		}
		if patch.PricePerKg != nil {
			cur.PricePerKg = *patch.PricePerKg
		}
		return cur, nil
	})
	if err != nil {
		return model.CompostStock{}, err
	}

	s.metrics.StockAvailable(stock.Available.InexactFloat64())
	s.logger.Info("compost stock updated",
		zap.String("available", stock.Available.String()),
		zap.String("price_per_kg", stock.PricePerKg.String()),
	)
	return stock, nil
}

// InventoryInput содержит данные новой позиции каталога.
type InventoryInput struct {
	Name       string
	Category   string
	PricePerKg decimal.Decimal
	Stock      decimal.Decimal
	Image      string
}

// InventoryPatch описывает частичное обновление позиции каталога.
type InventoryPatch struct {
	Name       *string
	Category   *string
	PricePerKg *decimal.Decimal
	Stock      *decimal.Decimal
	Image      *string
}

// Inventory возвращает каталог продукции.
func (s *Service) Inventory(ctx context.Context) ([]model.InventoryItem, error) {
	return s.repo.ListInventory(ctx)
}

// CreateInventoryItem добавляет позицию в каталог.
func (s *Service) CreateInventoryItem(ctx context.Context, in InventoryInput) (*model.InventoryItem, error) {
	err := validation.First(
		validation.Required("name", in.Name),
		validation.MaxLength("name", in.Name, 200),
		validation.Price("pricePerKg", in.PricePerKg),
		validation.StockAmount("stock", in.Stock),
	)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateInventoryItem(ctx, model.InventoryItem{
		Name:       strings.TrimSpace(in.Name),
		Category:   in.Category,
		PricePerKg: in.PricePerKg,
		Stock:      in.Stock,
		Image:      in.Image,
	})
}

// UpdateInventoryItem обновляет переданные поля позиции.
func (s *Service) UpdateInventoryItem(ctx context.Context, id string, patch InventoryPatch) (*model.InventoryItem, error) {
	return s.repo.UpdateInventoryItem(ctx, id, func(it *model.InventoryItem) error {
		if patch.Name != nil {
			if err := validation.Required("name", *patch.Name); err != nil {
				return err
			}
			it.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Category != nil {
			it.Category = *patch.Category
		}
		if patch.PricePerKg != nil {
			if err := validation.Price("pricePerKg", *patch.PricePerKg); err != nil {
				return err
			}
			it.PricePerKg = *patch.PricePerKg
		}
		if patch.Stock != nil {
			if err := validation.StockAmount("stock", *patch.Stock); err != nil {
				return err
			}
			it.Stock = *patch.Stock
		}
		if patch.Image != nil {
			it.Image = *patch.Image
		}
		return nil
	})
}

// DeleteInventoryItem удаляет позицию каталога.
func (s *Service) DeleteInventoryItem(ctx context.Context, id string) error {
	return s.repo.DeleteInventoryItem(ctx, id)
}

// RewardInput содержит данные новой награды.
type RewardInput struct {
	Title       string
	Points      int64
	Description string
	Image       string
}

// RewardPatch описывает частичное обновление награды.
type RewardPatch struct {
	Title       *string
	Points      *int64
	Description *string
	Image       *string
}

// Rewards возвращает каталог наград.
func (s *Service) Rewards(ctx context.Context) ([]model.Reward, error) {
	return s.repo.ListRewards(ctx)
}

// CreateReward добавляет награду.
func (s *Service) CreateReward(ctx context.Context, in RewardInput) (*model.Reward, error) {
	err := validation.First(
		validation.Required("title", in.Title),
		validation.MaxLength("title", in.Title, 200),
		validation.NonNegativeInt("points", in.Points),
	)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateReward(ctx, model.Reward{
		Title:       strings.TrimSpace(in.Title),
		Points:      in.Points,
		Description: in.Description,
		Image:       in.Image,
	})
}

// UpdateReward обновляет переданные поля награды.
func (s *Service) UpdateReward(ctx context.Context, id string, patch RewardPatch) (*model.Reward, error) {
	return s.repo.UpdateReward(ctx, id, func(rw *model.Reward) error {
		if patch.Title != nil {
			if err := validation.Required("title", *patch.Title); err != nil {
				return err
			}
			rw.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Points != nil {
			if err := validation.NonNegativeInt("points", *patch.Points); err != nil {
				return err
			}
			rw.Points = *patch.Points
		}
		if patch.Description != nil {
			rw.Description = *patch.Description
		}
		if patch.Image != nil {
			rw.Image = *patch.Image
		}
		return nil
	})
}

// DeleteReward удаляет награду. История обменов сохраняет её название.
func (s *Service) DeleteReward(ctx context.Context, id string) error {
	return s.repo.DeleteReward(ctx, id)
}

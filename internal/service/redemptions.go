package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

// Redeem обменивает баллы пользователя на награду.
func (s *Service) Redeem(ctx context.Context, userID, rewardID string) (lifecycle.RedemptionOutcome, error) {
	if err := validation.Required("rewardId", rewardID); err != nil {
		return lifecycle.RedemptionOutcome{}, err
	}

	meta := s.meta(userID)
	out, err := s.repo.Redeem(ctx, userID, rewardID, func(u model.User, rw model.Reward) (lifecycle.RedemptionOutcome, error) {
		return lifecycle.Redeem(u, rw, meta)
	})
	if err != nil {
		return lifecycle.RedemptionOutcome{}, err
	}

	s.metrics.PointsRedeemed(out.Redemption.PointsSpent)
	s.logger.Info("reward redeemed",
		zap.String("user_id", userID),
		zap.String("reward_id", rewardID),
		zap.Int64("points", out.Redemption.PointsSpent),
		zap.Int64("remaining", out.User.RewardPoints),
	)
	return out, nil
}

// MyRedemptions возвращает историю обменов пользователя.
func (s *Service) MyRedemptions(ctx context.Context, userID string) ([]model.Redemption, error) {
	return s.repo.ListRedemptionsByUser(ctx, userID)
}

// AllRedemptions возвращает все обмены с данными пользователей.
func (s *Service) AllRedemptions(ctx context.Context) ([]model.Redemption, error) {
	return s.repo.ListRedemptions(ctx)
}

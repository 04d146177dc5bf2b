package lifecycle

import (
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// RedemptionOutcome содержит результат обмена баллов на награду.
type RedemptionOutcome struct {
	Redemption model.Redemption
	User       model.User
}

// Redeem списывает стоимость награды с баланса пользователя и формирует запись
// об обмене. При нехватке баллов баланс не меняется.
func Redeem(user model.User, reward model.Reward, meta Meta) (RedemptionOutcome, error) {
	if !pointsCover(user, reward.Points) {
		return RedemptionOutcome{}, ErrInsufficientPoints
	}

	user.RewardPoints -= reward.Points

	return RedemptionOutcome{
		Redemption: model.Redemption{
			UserID:      user.ID,
			RewardID:    reward.ID,
			RewardTitle: reward.Title,
			PointsSpent: reward.Points,
			RedeemedAt:  meta.Now,
		},
		User: user,
	}, nil
}

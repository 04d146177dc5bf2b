package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// RedeemFunc вычисляет результат обмена по заблокированному пользователю и награде.
type RedeemFunc func(user model.User, reward model.Reward) (lifecycle.RedemptionOutcome, error)

const redemptionSelect = `SELECT r.id, r.user_id, r.reward_id, r.reward_title, r.points_spent, r.redeemed_at,
	u.id, u.name, u.email, u.phone
	FROM redemptions r LEFT JOIN users u ON u.id = r.user_id`

func scanRedemption(row scanner) (*model.Redemption, error) {
	var (
		rd                                 model.Redemption
		userID, userName, userEmail, phone *string
	)
	err := row.Scan(&rd.ID, &rd.UserID, &rd.RewardID, &rd.RewardTitle, &rd.PointsSpent, &rd.RedeemedAt,
		&userID, &userName, &userEmail, &phone)
	if err != nil {
		return nil, err
	}
	rd.User = userSummary(userID, userName, userEmail, phone)
	return &rd, nil
}

// Redeem блокирует пользователя, читает награду, применяет fn, сохраняет запись
// об обмене и новый баланс одной транзакцией.
func (r *PostgresRepository) Redeem(ctx context.Context, userID, rewardID string, fn RedeemFunc) (lifecycle.RedemptionOutcome, error) {
	if uuid.Validate(rewardID) != nil {
		return lifecycle.RedemptionOutcome{}, ErrRewardNotFound
	}
	if uuid.Validate(userID) != nil {
		return lifecycle.RedemptionOutcome{}, ErrUserNotFound
	}

	var out lifecycle.RedemptionOutcome

	err := withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			reward, err := scanReward(tx.QueryRow(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, rewardID))
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrRewardNotFound
				}
				return fmt.Errorf("get reward: %w", err)
			}

			user, err := lockUser(ctx, tx, userID)
			if err != nil {
				return err
			}
			if user == nil {
				return ErrUserNotFound
			}

			out, err = fn(*user, *reward)
			if err != nil {
				return err
			}

			if err := updateUserPoints(ctx, tx, user.ID, out.User.RewardPoints); err != nil {
				return err
			}

			rd := &out.Redemption
			if rd.ID == "" {
				rd.ID = uuid.NewString()
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO redemptions (id, user_id, reward_id, reward_title, points_spent, redeemed_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				rd.ID, rd.UserID, rd.RewardID, rd.RewardTitle, rd.PointsSpent, rd.RedeemedAt,
			)
			if err != nil {
				return fmt.Errorf("insert redemption: %w", err)
			}
			rd.User = summaryOf(user)

			return nil
		})
	})
	if err != nil {
		return lifecycle.RedemptionOutcome{}, err
	}

	return out, nil
}

// ListRedemptionsByUser возвращает историю обменов пользователя, новые первыми.
func (r *PostgresRepository) ListRedemptionsByUser(ctx context.Context, userID string) ([]model.Redemption, error) {
	return r.listRedemptions(ctx, redemptionSelect+` WHERE r.user_id = $1 ORDER BY r.redeemed_at DESC`, userID)
}

// ListRedemptions возвращает все обмены с данными пользователей, новые первыми.
func (r *PostgresRepository) ListRedemptions(ctx context.Context) ([]model.Redemption, error) {
	return r.listRedemptions(ctx, redemptionSelect+` ORDER BY r.redeemed_at DESC`)
}

func (r *PostgresRepository) listRedemptions(ctx context.Context, query string, args ...any) ([]model.Redemption, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select redemptions: %w", err)
	}
	defer rows.Close()

	res := make([]model.Redemption, 0)
	for rows.Next() {
		rd, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		res = append(res, *rd)
	}

	return res, rowsErr(rows)
}

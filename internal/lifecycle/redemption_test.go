package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

func TestRedeem(t *testing.T) {
	user := model.User{ID: "u-1", RewardPoints: 100}
	reward := model.Reward{ID: "r-1", Title: "Seed kit", Points: 60}

	out, err := Redeem(user, reward, testMeta())
	require.NoError(t, err)
	assert.Equal(t, int64(40), out.User.RewardPoints)
	assert.Equal(t, "Seed kit", out.Redemption.RewardTitle)
	assert.Equal(t, int64(60), out.Redemption.PointsSpent)
	assert.Equal(t, "u-1", out.Redemption.UserID)
	assert.Equal(t, "r-1", out.Redemption.RewardID)
	assert.Equal(t, testMeta().Now, out.Redemption.RedeemedAt)
	assert.Empty(t, out.Redemption.ID)

	_, err = Redeem(out.User, reward, testMeta())
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestRedeem_ExactBalance(t *testing.T) {
	user := model.User{ID: "u-1", RewardPoints: 60}
	reward := model.Reward{ID: "r-1", Title: "Seed kit", Points: 60}

	out, err := Redeem(user, reward, testMeta())
	require.NoError(t, err)
	assert.Zero(t, out.User.RewardPoints)
}

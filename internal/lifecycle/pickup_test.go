package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

func TestPickupTransitionTableIsExhaustive(t *testing.T) {
	for _, from := range model.PickupStatuses {
		for _, to := range model.PickupStatuses {
			r, ok := pickupTransitions[from][to]
			require.Truef(t, ok, "missing rule %s -> %s", from, to)
			assert.Truef(t, r.allowed, "rule %s -> %s must be allowed", from, to)

			switch {
			case from == to:
				assert.Equal(t, effectNoop, r.effect)
			case to == model.PickupStatusCompleted:
				assert.Equal(t, effectComplete, r.effect)
			case from == model.PickupStatusCompleted:
				assert.Equal(t, effectReopen, r.effect)
			default:
				assert.Equal(t, effectOverwrite, r.effect)
			}
		}
	}
}

func TestTransitionPickup_CompleteFromPending(t *testing.T) {
	pickup := model.Pickup{ID: "p-1", OwnerID: "u-1", Quantity: dec("5"), Status: model.PickupStatusPending}
	owner := &model.User{ID: "u-1", RewardPoints: 7}
	stock := model.CompostStock{Available: dec("20"), PricePerKg: dec("12")}
	meta := testMeta()

	out, err := TransitionPickup(pickup, model.PickupStatusCompleted, stock, owner, DefaultPickupPolicy, meta)
	require.NoError(t, err)

	assert.Equal(t, model.PickupStatusCompleted, out.Pickup.Status)
	assert.Equal(t, int64(50), out.Pickup.PointsAwarded)
	require.NotNil(t, out.Pickup.CompletedDate)
	assert.Equal(t, meta.Now, *out.Pickup.CompletedDate)
	require.NotNil(t, out.Owner)
	assert.Equal(t, int64(57), out.Owner.RewardPoints)
	assert.Equal(t, int64(50), out.PointsCredited)
	assert.Equal(t, "25", out.Stock.Available.String())
	assert.True(t, out.StockChanged)
	assert.True(t, out.Completed)
	assert.Equal(t, "Pickup marked as completed", out.Message)

	// Исходный владелец не должен меняться.
	assert.Equal(t, int64(7), owner.RewardPoints)
}

func TestTransitionPickup_PointsRounding(t *testing.T) {
	tests := []struct {
		quantity string
		points   int64
	}{
		{"3.5", 35},
		{"0.04", 0},
		{"0.05", 1},
		{"1.26", 13},
		{"12", 120},
	}

	for _, tt := range tests {
		t.Run(tt.quantity, func(t *testing.T) {
			assert.Equal(t, tt.points, PointsForQuantity(dec(tt.quantity)))
		})
	}
}

func TestTransitionPickup_KeepsPresetPoints(t *testing.T) {
	pickup := model.Pickup{ID: "p-1", Quantity: dec("5"), Status: model.PickupStatusPicked, PointsAwarded: 12}
	owner := &model.User{ID: "u-1"}

	out, err := TransitionPickup(pickup, model.PickupStatusCompleted, model.CompostStock{}, owner, DefaultPickupPolicy, testMeta())
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.Pickup.PointsAwarded)
	assert.Equal(t, int64(12), out.Owner.RewardPoints)
}

func TestTransitionPickup_CompleteTwiceCreditsOnce(t *testing.T) {
	pickup := model.Pickup{ID: "p-1", Quantity: dec("2"), Status: model.PickupStatusProcessing}
	owner := &model.User{ID: "u-1"}
	stock := model.CompostStock{Available: dec("0")}

	first, err := TransitionPickup(pickup, model.PickupStatusCompleted, stock, owner, DefaultPickupPolicy, testMeta())
	require.NoError(t, err)

	second, err := TransitionPickup(first.Pickup, model.PickupStatusCompleted, first.Stock, first.Owner, DefaultPickupPolicy, testMeta())
	require.NoError(t, err)

	assert.True(t, second.NoOp)
	assert.False(t, second.StockChanged)
	assert.Zero(t, second.PointsCredited)
	assert.Equal(t, int64(20), second.Owner.RewardPoints)
	assert.Equal(t, "2", second.Stock.Available.String())
	assert.Empty(t, second.Events)
}

func TestTransitionPickup_MissingOwner(t *testing.T) {
	pickup := model.Pickup{ID: "p-1", Quantity: dec("1.5"), Status: model.PickupStatusPending}

	out, err := TransitionPickup(pickup, model.PickupStatusCompleted, model.CompostStock{Available: dec("1")}, nil, DefaultPickupPolicy, testMeta())
	require.NoError(t, err)

	assert.True(t, out.OwnerMissing)
	assert.Nil(t, out.Owner)
	assert.Zero(t, out.PointsCredited)
	assert.Equal(t, int64(15), out.Pickup.PointsAwarded)
	assert.Equal(t, "2.5", out.Stock.Available.String())
}

func TestTransitionPickup_ReopenCompleted(t *testing.T) {
	done := testMeta().Now
	pickup := model.Pickup{
		ID:            "p-1",
		Quantity:      dec("4"),
		Status:        model.PickupStatusCompleted,
		PointsAwarded: 40,
		CompletedDate: &done,
	}
	owner := &model.User{ID: "u-1", RewardPoints: 40}

	out, err := TransitionPickup(pickup, model.PickupStatusProcessing, model.CompostStock{Available: dec("4")}, owner, DefaultPickupPolicy, testMeta())
	require.NoError(t, err)

	assert.Equal(t, model.PickupStatusProcessing, out.Pickup.Status)
	assert.Nil(t, out.Pickup.CompletedDate)
	assert.Equal(t, int64(40), out.Pickup.PointsAwarded)
	assert.Equal(t, int64(40), out.Owner.RewardPoints)
	assert.False(t, out.StockChanged)
	assert.Equal(t, "4", out.Stock.Available.String())
}

func TestTransitionPickup_ReopenDisabled(t *testing.T) {
	pickup := model.Pickup{ID: "p-1", Quantity: dec("4"), Status: model.PickupStatusCompleted, PointsAwarded: 40}

	_, err := TransitionPickup(pickup, model.PickupStatusPending, model.CompostStock{}, nil, PickupPolicy{}, testMeta())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionPickup_InvalidStatus(t *testing.T) {
	pickup := model.Pickup{ID: "p-1", Quantity: dec("4"), Status: model.PickupStatusPending}

	_, err := TransitionPickup(pickup, model.PickupStatus("lost"), model.CompostStock{}, nil, DefaultPickupPolicy, testMeta())
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCompletePickup_AlreadyCompleted(t *testing.T) {
	pickup := model.Pickup{ID: "p-1", Quantity: dec("4"), Status: model.PickupStatusCompleted}

	_, err := CompletePickup(pickup, model.CompostStock{}, nil, DefaultPickupPolicy, testMeta())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.EqualError(t, err, "Pickup already completed")
}

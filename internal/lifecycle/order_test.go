package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testMeta() Meta {
	return Meta{ActorID: "admin-1", Now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func TestOrderTransitionTableIsExhaustive(t *testing.T) {
	for _, from := range model.OrderStatuses {
		for _, to := range model.OrderStatuses {
			_, ok := orderTransitions[from][to]
			assert.Truef(t, ok, "missing rule %s -> %s", from, to)
		}
	}
}

func TestCanTransitionOrder(t *testing.T) {
	allowed := map[[2]model.OrderStatus]bool{
		{model.OrderStatusPending, model.OrderStatusInTransit}:   false,
		{model.OrderStatusPending, model.OrderStatusDelivered}:   false,
		{model.OrderStatusRejected, model.OrderStatusInTransit}:  false,
		{model.OrderStatusRejected, model.OrderStatusDelivered}:  false,
		{model.OrderStatusDelivered, model.OrderStatusInTransit}: false,
	}

	for _, from := range model.OrderStatuses {
		for _, to := range model.OrderStatuses {
			want, listed := allowed[[2]model.OrderStatus{from, to}]
			if !listed {
				want = true
			}
			assert.Equalf(t, want, CanTransitionOrder(from, to), "CanTransitionOrder(%s, %s)", from, to)
		}
	}
}

func TestTransitionOrder(t *testing.T) {
	stock := model.CompostStock{Available: dec("100"), PricePerKg: dec("10"), Version: 3}

	tests := []struct {
		name         string
		from         model.OrderStatus
		to           model.OrderStatus
		quantity     string
		wantErr      error
		wantStatus   model.OrderStatus
		wantNoOp     bool
		wantStock    string
		wantTotal    string
		stockChanged bool
	}{
		{
			name:         "confirm deducts stock and prices order",
			from:         model.OrderStatusPending,
			to:           model.OrderStatusConfirmed,
			quantity:     "30",
			wantStatus:   model.OrderStatusConfirmed,
			wantStock:    "70",
			wantTotal:    "300",
			stockChanged: true,
		},
		{
			name:         "confirm exact remaining stock",
			from:         model.OrderStatusPending,
			to:           model.OrderStatusConfirmed,
			quantity:     "100",
			wantStatus:   model.OrderStatusConfirmed,
			wantStock:    "0",
			wantTotal:    "1000",
			stockChanged: true,
		},
		{
			name:     "confirm more than available",
			from:     model.OrderStatusPending,
			to:       model.OrderStatusConfirmed,
			quantity: "100.5",
			wantErr:  ErrInsufficientStock,
		},
		{
			name:       "reject pending zeroes pricing",
			from:       model.OrderStatusPending,
			to:         model.OrderStatusRejected,
			quantity:   "10",
			wantStatus: model.OrderStatusRejected,
			wantStock:  "100",
			wantTotal:  "0",
		},
		{
			name:       "same status is a no-op",
			from:       model.OrderStatusConfirmed,
			to:         model.OrderStatusConfirmed,
			quantity:   "10",
			wantStatus: model.OrderStatusConfirmed,
			wantNoOp:   true,
			wantStock:  "100",
			wantTotal:  "50",
		},
		{
			name:     "in-transit from pending",
			from:     model.OrderStatusPending,
			to:       model.OrderStatusInTransit,
			quantity: "10",
			wantErr:  ErrInvalidTransition,
		},
		{
			name:       "in-transit from confirmed",
			from:       model.OrderStatusConfirmed,
			to:         model.OrderStatusInTransit,
			quantity:   "10",
			wantStatus: model.OrderStatusInTransit,
			wantStock:  "100",
			wantTotal:  "50",
		},
		{
			name:     "delivered from rejected",
			from:     model.OrderStatusRejected,
			to:       model.OrderStatusDelivered,
			quantity: "10",
			wantErr:  ErrInvalidTransition,
		},
		{
			name:       "delivered from in-transit",
			from:       model.OrderStatusInTransit,
			to:         model.OrderStatusDelivered,
			quantity:   "10",
			wantStatus: model.OrderStatusDelivered,
			wantStock:  "100",
			wantTotal:  "50",
		},
		{
			name:       "reopen rejected order",
			from:       model.OrderStatusRejected,
			to:         model.OrderStatusPending,
			quantity:   "10",
			wantStatus: model.OrderStatusPending,
			wantStock:  "100",
			wantTotal:  "50",
		},
		{
			name:       "confirm from rejected overwrites without stock change",
			from:       model.OrderStatusRejected,
			to:         model.OrderStatusConfirmed,
			quantity:   "10",
			wantStatus: model.OrderStatusConfirmed,
			wantStock:  "100",
			wantTotal:  "50",
		},
		{
			name:     "unknown status",
			from:     model.OrderStatusPending,
			to:       model.OrderStatus("shipped"),
			quantity: "10",
			wantErr:  ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := model.Order{
				ID:          "o-1",
				Status:      tt.from,
				Quantity:    dec(tt.quantity),
				PricePerKg:  dec("5"),
				TotalAmount: dec("50"),
			}

			out, err := TransitionOrder(order, tt.to, stock, testMeta())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, out.Order.Status)
			assert.Equal(t, tt.wantNoOp, out.NoOp)
			assert.Equal(t, tt.stockChanged, out.StockChanged)
			assert.True(t, dec(tt.wantStock).Equal(out.Stock.Available), "stock = %s, want %s", out.Stock.Available, tt.wantStock)
			assert.True(t, dec(tt.wantTotal).Equal(out.Order.TotalAmount), "total = %s, want %s", out.Order.TotalAmount, tt.wantTotal)
			assert.Equal(t, stock.Version, out.Stock.Version)

			if tt.wantNoOp {
				assert.Empty(t, out.Events)
			} else {
				require.Len(t, out.Events, 1)
				assert.Equal(t, string(tt.from), out.Events[0].FromStatus)
				assert.Equal(t, string(tt.to), out.Events[0].ToStatus)
				assert.Equal(t, "admin-1", out.Events[0].ActorID)
			}
		})
	}
}

func TestTransitionOrder_TransitionErrorMessage(t *testing.T) {
	order := model.Order{ID: "o-1", Status: model.OrderStatusPending, Quantity: dec("1")}

	_, err := TransitionOrder(order, model.OrderStatusInTransit, model.CompostStock{}, testMeta())

	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "Only confirmed orders can move to in-transit", terr.Error())
	assert.Equal(t, model.AggregateOrder, terr.Aggregate)
}

func TestStockScenario(t *testing.T) {
	stock := model.CompostStock{Available: dec("100"), PricePerKg: dec("10")}

	first := model.Order{ID: "o-1", Status: model.OrderStatusPending, Quantity: dec("30")}
	out, err := TransitionOrder(first, model.OrderStatusConfirmed, stock, testMeta())
	require.NoError(t, err)
	assert.Equal(t, "70", out.Stock.Available.String())
	assert.Equal(t, "300", out.Order.TotalAmount.String())
	assert.Equal(t, "10", out.Order.PricePerKg.String())

	stock = out.Stock
	second := model.Order{ID: "o-2", Status: model.OrderStatusPending, Quantity: dec("80")}
	_, err = TransitionOrder(second, model.OrderStatusConfirmed, stock, testMeta())
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "70", stock.Available.String())
}

func TestOrderNumber(t *testing.T) {
	o := model.Order{ID: "3f2c1d9e-0b7a-4c55-9d1e-a1b2c3d4e5f6"}
	assert.Equal(t, "ORD-D4E5F6", o.Number())
}

func TestTransitionOrder_TotalRoundedToCents(t *testing.T) {
	stock := model.CompostStock{Available: dec("5"), PricePerKg: dec("10.01")}
	order := model.Order{ID: "o-1", Status: model.OrderStatusPending, Quantity: dec("1.005")}

	out, err := TransitionOrder(order, model.OrderStatusConfirmed, stock, testMeta())
	require.NoError(t, err)
	assert.Equal(t, "10.06", out.Order.TotalAmount.String())
	assert.Equal(t, "3.995", out.Stock.Available.String())
}

func TestOrderTotal(t *testing.T) {
	tests := []struct {
		quantity string
		price    string
		want     string
	}{
		{"4", "15", "60"},
		{"1.005", "10.01", "10.06"},
		{"0.333", "0.01", "0"},
		{"2.125", "3.33", "7.08"},
	}

	for _, tt := range tests {
		t.Run(tt.quantity+"x"+tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderTotal(dec(tt.quantity), dec(tt.price)).String())
		})
	}
}

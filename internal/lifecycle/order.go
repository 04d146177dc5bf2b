package lifecycle

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

const (
	reasonInTransit = "Only confirmed orders can move to in-transit"
	reasonDelivered = "Order must be confirmed or in-transit before marking delivered"
)

// orderTransitions перечисляет все пары (текущий, целевой) статусов заказа.
// Переходы в pending, confirmed и rejected из статусов, отличных от pending,
// разрешены без побочных эффектов.
var orderTransitions = map[model.OrderStatus]map[model.OrderStatus]rule{
	model.OrderStatusPending: {
		model.OrderStatusPending:   allow(effectNoop),
		model.OrderStatusConfirmed: allow(effectConfirm),
		model.OrderStatusInTransit: deny(reasonInTransit),
		model.OrderStatusRejected:  allow(effectReject),
		model.OrderStatusDelivered: deny(reasonDelivered),
	},
	model.OrderStatusConfirmed: {
		model.OrderStatusPending:   allow(effectOverwrite),
		model.OrderStatusConfirmed: allow(effectNoop),
		model.OrderStatusInTransit: allow(effectOverwrite),
		model.OrderStatusRejected:  allow(effectOverwrite),
		model.OrderStatusDelivered: allow(effectOverwrite),
	},
	model.OrderStatusInTransit: {
		model.OrderStatusPending:   allow(effectOverwrite),
		model.OrderStatusConfirmed: allow(effectOverwrite),
		model.OrderStatusInTransit: allow(effectNoop),
		model.OrderStatusRejected:  allow(effectOverwrite),
		model.OrderStatusDelivered: allow(effectOverwrite),
	},
	model.OrderStatusRejected: {
		model.OrderStatusPending:   allow(effectOverwrite),
		model.OrderStatusConfirmed: allow(effectOverwrite),
		model.OrderStatusInTransit: deny(reasonInTransit),
		model.OrderStatusRejected:  allow(effectNoop),
		model.OrderStatusDelivered: deny(reasonDelivered),
	},
	model.OrderStatusDelivered: {
		model.OrderStatusPending:   allow(effectOverwrite),
		model.OrderStatusConfirmed: allow(effectOverwrite),
		model.OrderStatusInTransit: deny(reasonInTransit),
		model.OrderStatusRejected:  allow(effectOverwrite),
		model.OrderStatusDelivered: allow(effectNoop),
	},
}

// moneyScale задаёт число знаков после запятой в денежных суммах.
const moneyScale = 2

// OrderTotal возвращает стоимость заказа, округлённую до копеек.
func OrderTotal(quantity, pricePerKg decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pricePerKg).Round(moneyScale)
}

// CanTransitionOrder сообщает, разрешён ли переход заказа из from в to
// без учёта остатка компоста.
func CanTransitionOrder(from, to model.OrderStatus) bool {
	r, ok := orderTransitions[from][to]
	return ok && r.allowed
}

// OrderOutcome содержит результат применения перехода к заказу.
type OrderOutcome struct {
	Order        model.Order
	Stock        model.CompostStock
	StockChanged bool
	NoOp         bool
	Message      string
	Events       []model.StatusEvent
}

// TransitionOrder применяет к заказу целевой статус. Заказ и остаток должны быть
// прочитаны из хранилища непосредственно перед вызовом.
func TransitionOrder(order model.Order, target model.OrderStatus, stock model.CompostStock, meta Meta) (OrderOutcome, error) {
	if !target.Valid() {
		return OrderOutcome{}, ErrInvalidStatus
	}

	r, ok := orderTransitions[order.Status][target]
	if !ok {
		// Заказ с неизвестным статусом в хранилище: разрешаем только перезапись.
		r = allow(effectOverwrite)
	}

	out := OrderOutcome{Order: order, Stock: stock}

	if !r.allowed {
		return OrderOutcome{}, &TransitionError{
			Aggregate: model.AggregateOrder,
			From:      string(order.Status),
			To:        string(target),
			Reason:    r.reason,
		}
	}

	switch r.effect {
	case effectNoop:
		out.NoOp = true
		out.Message = fmt.Sprintf("Order already %s", target)
		return out, nil
	case effectConfirm:
		if !stockCovers(stock, order.Quantity) {
			return OrderOutcome{}, ErrInsufficientStock
		}
		out.Stock.Available = stock.Available.Sub(order.Quantity)
		out.StockChanged = true
		out.Order.PricePerKg = stock.PricePerKg
		out.Order.TotalAmount = OrderTotal(order.Quantity, stock.PricePerKg)
	case effectReject:
		out.Order.PricePerKg = decimal.Zero
		out.Order.TotalAmount = decimal.Zero
	}

	out.Order.Status = target
	out.Message = fmt.Sprintf("Order %s successfully", target)
	out.Events = []model.StatusEvent{
		meta.event(model.AggregateOrder, order.ID, string(order.Status), string(target)),
	}

	return out, nil
}

package lifecycle

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// PointsPerKg задаёт количество баллов за килограмм собранных отходов.
const PointsPerKg = 10

const (
	reasonAlreadyCompleted = "Pickup already completed"
	reasonReopenDisabled   = "Completed pickups cannot be reopened"
)

var pointsPerKg = decimal.NewFromInt(PointsPerKg)

// pickupTransitions перечисляет все пары (текущий, целевой) статусов заявки.
// Выполнение разрешено из любого невыполненного статуса.
var pickupTransitions = map[model.PickupStatus]map[model.PickupStatus]rule{
	model.PickupStatusPending: {
		model.PickupStatusPending:    allow(effectNoop),
		model.PickupStatusProcessing: allow(effectOverwrite),
		model.PickupStatusPicked:     allow(effectOverwrite),
		model.PickupStatusCompleted:  allow(effectComplete),
		model.PickupStatusRejected:   allow(effectOverwrite),
	},
	model.PickupStatusProcessing: {
		model.PickupStatusPending:    allow(effectOverwrite),
		model.PickupStatusProcessing: allow(effectNoop),
		model.PickupStatusPicked:     allow(effectOverwrite),
		model.PickupStatusCompleted:  allow(effectComplete),
		model.PickupStatusRejected:   allow(effectOverwrite),
	},
	model.PickupStatusPicked: {
		model.PickupStatusPending:    allow(effectOverwrite),
		model.PickupStatusProcessing: allow(effectOverwrite),
		model.PickupStatusPicked:     allow(effectNoop),
		model.PickupStatusCompleted:  allow(effectComplete),
		model.PickupStatusRejected:   allow(effectOverwrite),
	},
	model.PickupStatusCompleted: {
		model.PickupStatusPending:    allow(effectReopen),
		model.PickupStatusProcessing: allow(effectReopen),
		model.PickupStatusPicked:     allow(effectReopen),
		model.PickupStatusCompleted:  allow(effectNoop),
		model.PickupStatusRejected:   allow(effectReopen),
	},
	model.PickupStatusRejected: {
		model.PickupStatusPending:    allow(effectOverwrite),
		model.PickupStatusProcessing: allow(effectOverwrite),
		model.PickupStatusPicked:     allow(effectOverwrite),
		model.PickupStatusCompleted:  allow(effectComplete),
		model.PickupStatusRejected:   allow(effectNoop),
	},
}

// PickupPolicy настраивает спорные правила жизненного цикла заявки.
type PickupPolicy struct {
	// AllowReopenCompleted разрешает вернуть выполненную заявку в другой статус.
	// Начисленные баллы и пополнение остатка при этом не откатываются, а при
	// повторном выполнении сохранённое значение PointsAwarded начисляется снова.
	AllowReopenCompleted bool
}

// DefaultPickupPolicy повторяет наблюдаемое поведение системы.
var DefaultPickupPolicy = PickupPolicy{AllowReopenCompleted: true}

// PointsForQuantity возвращает баллы за заданное количество отходов: round(quantity * 10).
func PointsForQuantity(quantity decimal.Decimal) int64 {
	return quantity.Mul(pointsPerKg).Round(0).IntPart()
}

// PickupOutcome содержит результат применения перехода к заявке.
// Owner содержит владельца после начисления баллов и равен nil, если владелец не найден.
type PickupOutcome struct {
	Pickup         model.Pickup
	Stock          model.CompostStock
	StockChanged   bool
	Owner          *model.User
	OwnerMissing   bool
	PointsCredited int64
	Completed      bool
	NoOp           bool
	Message        string
	Events         []model.StatusEvent
}

// TransitionPickup применяет к заявке целевой статус. owner может быть nil:
// отсутствие владельца не прерывает переход, баллы в этом случае не начисляются.
func TransitionPickup(pickup model.Pickup, target model.PickupStatus, stock model.CompostStock, owner *model.User, policy PickupPolicy, meta Meta) (PickupOutcome, error) {
	if !target.Valid() {
		return PickupOutcome{}, ErrInvalidStatus
	}

	r, ok := pickupTransitions[pickup.Status][target]
	if !ok {
		r = allow(effectOverwrite)
		if target == model.PickupStatusCompleted {
			r = allow(effectComplete)
		}
	}

	if r.effect == effectReopen && !policy.AllowReopenCompleted {
		r = deny(reasonReopenDisabled)
	}

	if !r.allowed {
		return PickupOutcome{}, &TransitionError{
			Aggregate: model.AggregatePickup,
			From:      string(pickup.Status),
			To:        string(target),
			Reason:    r.reason,
		}
	}

	out := PickupOutcome{Pickup: pickup, Stock: stock}
	if owner != nil {
		u := *owner
		out.Owner = &u
	}

	switch r.effect {
	case effectNoop:
		out.NoOp = true
		out.Message = fmt.Sprintf("Pickup already %s", target)
		return out, nil
	case effectComplete:
		applyCompletion(&out, meta)
		out.Message = "Pickup marked as completed"
	case effectReopen:
		out.Pickup.CompletedDate = nil
		out.Message = fmt.Sprintf("Pickup status updated to %s", target)
	default:
		out.Message = fmt.Sprintf("Pickup status updated to %s", target)
	}

	out.Pickup.Status = target
	out.Events = []model.StatusEvent{
		meta.event(model.AggregatePickup, pickup.ID, string(pickup.Status), string(target)),
	}

	return out, nil
}

// CompletePickup выполняет заявку строго: повторное выполнение считается ошибкой.
func CompletePickup(pickup model.Pickup, stock model.CompostStock, owner *model.User, policy PickupPolicy, meta Meta) (PickupOutcome, error) {
	if pickup.Status == model.PickupStatusCompleted {
		return PickupOutcome{}, &TransitionError{
			Aggregate: model.AggregatePickup,
			From:      string(pickup.Status),
			To:        string(model.PickupStatusCompleted),
			Reason:    reasonAlreadyCompleted,
		}
	}
	return TransitionPickup(pickup, model.PickupStatusCompleted, stock, owner, policy, meta)
}

func applyCompletion(out *PickupOutcome, meta Meta) {
	p := &out.Pickup

	if p.PointsAwarded == 0 {
		p.PointsAwarded = PointsForQuantity(p.Quantity)
	}
	completed := meta.Now
	p.CompletedDate = &completed
	out.Completed = true

	if out.Owner != nil {
		out.Owner.RewardPoints += p.PointsAwarded
		out.PointsCredited = p.PointsAwarded
	} else {
		out.OwnerMissing = true
	}

	out.Stock.Available = out.Stock.Available.Add(p.Quantity)
	out.StockChanged = true
}

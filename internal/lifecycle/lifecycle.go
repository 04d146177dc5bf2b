// Package lifecycle содержит чистую логику переходов статусов заявок на вывоз
// и заказов компоста вместе с их побочными эффектами (остаток компоста, баллы).
// Пакет не обращается к хранилищу: на вход подаются текущие состояния агрегатов,
// на выходе получаются новые состояния, которые вызывающая сторона сохраняет
// одной транзакцией.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

var (
	// ErrInvalidStatus возвращается для неизвестного целевого статуса.
	ErrInvalidStatus = errors.New("invalid status value")
	// ErrInvalidTransition возвращается, если переход между статусами запрещён.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInsufficientStock возвращается, если остатка компоста не хватает для подтверждения заказа.
	ErrInsufficientStock = errors.New("not enough stock to approve order")
	// ErrInsufficientPoints возвращается, если баллов пользователя не хватает для обмена.
	ErrInsufficientPoints = errors.New("insufficient points")
)

// TransitionError описывает запрещённый переход с понятным оператору сообщением.
type TransitionError struct {
	Aggregate model.Aggregate
	From      string
	To        string
	Reason    string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

// Unwrap позволяет сравнивать ошибку с ErrInvalidTransition через errors.Is.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Meta содержит контекст применения перехода: кто и когда его выполняет.
type Meta struct {
	ActorID string
	Now     time.Time
}

func (m Meta) event(aggregate model.Aggregate, id, from, to string) model.StatusEvent {
	return model.StatusEvent{
		Aggregate:   aggregate,
		AggregateID: id,
		FromStatus:  from,
		ToStatus:    to,
		ActorID:     m.ActorID,
		CreatedAt:   m.Now,
	}
}

// effect описывает побочный эффект, связанный с ребром таблицы переходов.
type effect int

const (
	// повторное применение текущего статуса, ничего не меняется
	effectNoop effect = iota
	// статус просто перезаписывается
	effectOverwrite
	// списание остатка и расчёт стоимости заказа
	effectConfirm
	// обнуление цены и суммы заказа
	effectReject
	// начисление баллов и пополнение остатка за выполненную заявку
	effectComplete
	// возврат выполненной заявки в работу без списания баллов
	effectReopen
)

func (e effect) String() string {
	switch e {
	case effectNoop:
		return "noop"
	case effectOverwrite:
		return "overwrite"
	case effectConfirm:
		return "confirm"
	case effectReject:
		return "reject"
	case effectComplete:
		return "complete"
	case effectReopen:
		return "reopen"
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

// rule описывает ячейку таблицы переходов.
type rule struct {
	allowed bool
	effect  effect
	reason  string
}

func allow(e effect) rule {
	return rule{allowed: true, effect: e}
}

func deny(reason string) rule {
	return rule{reason: reason}
}

// stockCovers сообщает, покрывает ли остаток запрошенное количество.
func stockCovers(stock model.CompostStock, quantity decimal.Decimal) bool {
	return stock.Available.GreaterThanOrEqual(quantity)
}

// pointsCover сообщает, хватает ли баллов пользователя на списание.
func pointsCover(user model.User, points int64) bool {
	return user.RewardPoints >= points
}

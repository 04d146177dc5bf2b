// Package model содержит доменные сущности сервиса Waste2Wealth.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя. Набор ролей закрыт.
type Role string

const (
	RoleHousehold Role = "household"
	RoleFarmer    Role = "farmer"
	RoleAdmin     Role = "admin"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	switch r {
	case RoleHousehold, RoleFarmer, RoleAdmin:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash []byte
	Role         Role
	RewardPoints int64
	CreatedAt    time.Time
}

// UserSummary содержит отображаемые поля владельца заявки или заказа.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// GeoPoint описывает координаты точки.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CompostStock описывает единственную строку с остатком компоста и текущей ценой.
// Version увеличивается при каждом изменении и используется для CAS-обновлений.
type CompostStock struct {
	Available  decimal.Decimal
	PricePerKg decimal.Decimal
	Version    int64
	UpdatedAt  time.Time
}

// PickupStatus описывает статус заявки на вывоз отходов.
type PickupStatus string

const (
	PickupStatusPending    PickupStatus = "pending"
	PickupStatusProcessing PickupStatus = "processing"
	PickupStatusPicked     PickupStatus = "picked"
	PickupStatusCompleted  PickupStatus = "completed"
	PickupStatusRejected   PickupStatus = "rejected"
)

// PickupStatuses перечисляет все статусы заявки.
var PickupStatuses = []PickupStatus{
	PickupStatusPending,
	PickupStatusProcessing,
	PickupStatusPicked,
	PickupStatusCompleted,
	PickupStatusRejected,
}

// Valid сообщает, является ли статус одним из известных.
func (s PickupStatus) Valid() bool {
	for _, v := range PickupStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Pickup описывает заявку домохозяйства на вывоз органических отходов.
type Pickup struct {
	ID            string
	OwnerID       string
	Owner         *UserSummary
	Quantity      decimal.Decimal
	Address       string
	Coordinates   *GeoPoint
	WasteType     string
	Phone         string
	PickupDate    string
	PickupTime    string
	Instructions  string
	Status        PickupStatus
	PointsAwarded int64
	RequestDate   time.Time
	CompletedDate *time.Time
}

// OrderStatus описывает статус заказа компоста.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusInTransit OrderStatus = "in-transit"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatuses перечисляет все статусы заказа.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusInTransit,
	OrderStatusRejected,
	OrderStatusDelivered,
}

// Valid сообщает, является ли статус одним из известных.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order описывает заказ компоста фермером.
type Order struct {
	ID              string
	FarmerID        string
	Farmer          *UserSummary
	CompostName     string
	Quantity        decimal.Decimal
	DeliveryAddress string
	Coordinates     *GeoPoint
	Status          OrderStatus
	PricePerKg      decimal.Decimal
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
}

// Number возвращает человекочитаемый номер заказа.
func (o Order) Number() string {
	id := strings.ReplaceAll(o.ID, "-", "")
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "ORD-" + strings.ToUpper(id)
}

// Redemption описывает запись об обмене баллов на награду. Название и стоимость награды
// сохраняются на момент обмена.
type Redemption struct {
	ID          string
	UserID      string
	User        *UserSummary
	RewardID    string
	RewardTitle string
	PointsSpent int64
	RedeemedAt  time.Time
}

// InventoryItem описывает позицию каталога продукции.
type InventoryItem struct {
	ID         string
	Name       string
	Category   string
	PricePerKg decimal.Decimal
	Stock      decimal.Decimal
	Image      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reward описывает награду из каталога, доступную за баллы.
type Reward struct {
	ID          string
	Title       string
	Points      int64
	Description string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Aggregate обозначает тип агрегата в журнале переходов.
type Aggregate string

const (
	AggregateOrder  Aggregate = "order"
	AggregatePickup Aggregate = "pickup"
)

// StatusEvent описывает запись журнала применённых переходов статуса.
type StatusEvent struct {
	Aggregate   Aggregate
	AggregateID string
	FromStatus  string
	ToStatus    string
	ActorID     string
	CreatedAt   time.Time
}

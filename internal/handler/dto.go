package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// num выводит десятичное значение JSON-числом без потери точности.
func num(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type userResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         model.Role `json:"role"`
	RewardPoints int64      `json:"rewardPoints"`
	Address      string     `json:"address,omitempty"`
	Phone        string     `json:"phone,omitempty"`
}

func toUser(u *model.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		RewardPoints: u.RewardPoints,
		Address:      u.Address,
		Phone:        u.Phone,
	}
}

type pickupResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId,omitempty"`
	User          *model.UserSummary `json:"user,omitempty"`
	Quantity      json.Number        `json:"quantity"`
	Address       string             `json:"address"`
	Coordinates   *model.GeoPoint    `json:"coordinates,omitempty"`
	WasteType     string             `json:"wasteType,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	PickupDate    string             `json:"pickupDate,omitempty"`
	PickupTime    string             `json:"pickupTime,omitempty"`
	Instructions  string             `json:"instructions,omitempty"`
	Status        model.PickupStatus `json:"status"`
	PointsAwarded int64              `json:"pointsAwarded"`
	RequestDate   time.Time          `json:"requestDate"`
	CompletedDate *time.Time         `json:"completedDate,omitempty"`
}

func toPickup(p model.Pickup) pickupResponse {
	return pickupResponse{
		ID:            p.ID,
		UserID:        p.OwnerID,
		User:          p.Owner,
		Quantity:      num(p.Quantity),
		Address:       p.Address,
		Coordinates:   p.Coordinates,
		WasteType:     p.WasteType,
		Phone:         p.Phone,
		PickupDate:    p.PickupDate,
		PickupTime:    p.PickupTime,
		Instructions:  p.Instructions,
		Status:        p.Status,
		PointsAwarded: p.PointsAwarded,
		RequestDate:   p.RequestDate,
		CompletedDate: p.CompletedDate,
	}
}

func toPickups(ps []model.Pickup) []pickupResponse {
	res := make([]pickupResponse, 0, len(ps))
	for _, p := range ps {
		res = append(res, toPickup(p))
	}
	return res
}

type orderResponse struct {
	ID              string             `json:"id"`
	OrderNumber     string             `json:"orderNumber"`
	FarmerID        string             `json:"farmerId,omitempty"`
	Farmer          *model.UserSummary `json:"farmer,omitempty"`
	CompostName     string             `json:"compostName"`
	Quantity        json.Number        `json:"quantity"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Coordinates     *model.GeoPoint    `json:"coordinates,omitempty"`
	Status          model.OrderStatus  `json:"status"`
	PricePerKg      json.Number        `json:"pricePerKg"`
	TotalAmount     json.Number        `json:"totalAmount"`
	CreatedAt       time.Time          `json:"createdAt"`
}

func toOrder(o model.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.Number(),
		FarmerID:        o.FarmerID,
		Farmer:          o.Farmer,
		CompostName:     o.CompostName,
		Quantity:        num(o.Quantity),
		DeliveryAddress: o.DeliveryAddress,
		Coordinates:     o.Coordinates,
		Status:          o.Status,
		PricePerKg:      num(o.PricePerKg),
		TotalAmount:     num(o.TotalAmount),
		CreatedAt:       o.CreatedAt,
	}
}

func toOrders(orders []model.Order) []orderResponse {
	res := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrder(o))
	}
	return res
}

type stockResponse struct {
	Available  json.Number `json:"available"`
	PricePerKg json.Number `json:"pricePerKg"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func toStock(s model.CompostStock) stockResponse {
	return stockResponse{
		Available:  num(s.Available),
		PricePerKg: num(s.PricePerKg),
		UpdatedAt:  s.UpdatedAt,
	}
}

type inventoryItemResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Category   string      `json:"category,omitempty"`
	PricePerKg json.Number `json:"pricePerKg"`
	Stock      json.Number `json:"stock"`
	Image      string      `json:"image,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func toInventoryItem(it model.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:         it.ID,
		Name:       it.Name,
		Category:   it.Category,
		PricePerKg: num(it.PricePerKg),
		Stock:      num(it.Stock),
		Image:      it.Image,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

type rewardResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Points      int64     `json:"points"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toReward(rw model.Reward) rewardResponse {
	return rewardResponse{
		ID:          rw.ID,
		Title:       rw.Title,
		Points:      rw.Points,
		Description: rw.Description,
		Image:       rw.Image,
		CreatedAt:   rw.CreatedAt,
		UpdatedAt:   rw.UpdatedAt,
	}
}

type redemptionResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	User        *model.UserSummary `json:"user,omitempty"`
	RewardID    string             `json:"rewardId"`
	RewardTitle string             `json:"rewardTitle"`
	PointsSpent int64              `json:"pointsSpent"`
	RedeemedAt  time.Time          `json:"redeemedAt"`
}

func toRedemption(rd model.Redemption) redemptionResponse {
	return redemptionResponse{
		ID:          rd.ID,
		UserID:      rd.UserID,
		User:        rd.User,
		RewardID:    rd.RewardID,
		RewardTitle: rd.RewardTitle,
		PointsSpent: rd.PointsSpent,
		RedeemedAt:  rd.RedeemedAt,
	}
}

func toRedemptions(list []model.Redemption) []redemptionResponse {
	res := make([]redemptionResponse, 0, len(list))
	for _, rd := range list {
		res = append(res, toRedemption(rd))
	}
	return res
}

type eventResponse struct {
	Aggregate   model.Aggregate `json:"aggregate"`
	AggregateID string          `json:"aggregateId"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	ActorID     string          `json:"actorId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toEvents(events []model.StatusEvent) []eventResponse {
	res := make([]eventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, eventResponse{
			Aggregate:   e.Aggregate,
			AggregateID: e.AggregateID,
			From:        e.FromStatus,
			To:          e.ToStatus,
			ActorID:     e.ActorID,
			CreatedAt:   e.CreatedAt,
		})
	}
	return res
}

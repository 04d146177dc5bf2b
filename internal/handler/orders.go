package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/service"
)

type orderRequest struct {
	CompostName     string          `json:"compostName"`
	Quantity        decimal.Decimal `json:"quantity"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Lat             *float64        `json:"lat"`
	Lon             *float64        `json:"lon"`
}

type orderEnvelope struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

type backfillResponse struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
	Updated int    `json:"updated"`
}

// PlaceOrder создаёт заказ компоста от имени фермера.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.service.PlaceOrder(r.Context(), principal(r).UserID, service.OrderInput{
		CompostName:     req.CompostName,
		Quantity:        req.Quantity,
		DeliveryAddress: req.DeliveryAddress,
		Lat:             req.Lat,
		Lon:             req.Lon,
	})
	if err != nil {
		h.handleError(w, r, "place order", err)
		return
	}

	writeJSON(w, http.StatusCreated, orderEnvelope{Message: "Order placed successfully", Order: toOrder(*o)})
}

// MyOrders возвращает заказы текущего фермера.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.MyOrders(r.Context(), principal(r).UserID)
	if err != nil {
		h.handleError(w, r, "list own orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrders(orders))
}

// AllOrders возвращает все заказы с данными фермеров.
func (h *Handler) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.AllOrders(r.Context())
	if err != nil {
		h.handleError(w, r, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrders(orders))
}

// UpdateOrderStatus применяет к заказу статус из тела запроса.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.service.UpdateOrderStatus(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), model.OrderStatus(req.Status))
	if err != nil {
		h.handleError(w, r, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, orderEnvelope{Message: out.Message, Order: toOrder(out.Order)})
}

// OrderEvents возвращает журнал переходов заказа.
func (h *Handler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.OrderEvents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, "list order events", err)
		return
	}
	writeJSON(w, http.StatusOK, toEvents(events))
}

// FixOrderCoordinates проставляет координаты заказам, у которых их нет.
func (h *Handler) FixOrderCoordinates(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.BackfillOrderCoordinates(r.Context())
	if err != nil {
		h.handleError(w, r, "backfill order coordinates", err)
		return
	}

	writeJSON(w, http.StatusOK, backfillResponse{
		Message: fmt.Sprintf("Fixed coordinates for %d orders", report.Updated),
		Total:   report.Total,
		Updated: report.Updated,
	})
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/service"
)

type stockRequest struct {
	Available  *decimal.Decimal `json:"available"`
	PricePerKg *decimal.Decimal `json:"pricePerKg"`
}

type stockEnvelope struct {
	Message string        `json:"message"`
	Stock   stockResponse `json:"stock"`
}

type inventoryRequest struct {
	Name       *string          `json:"name"`
	Category   *string          `json:"category"`
	PricePerKg *decimal.Decimal `json:"pricePerKg"`
	Stock      *decimal.Decimal `json:"stock"`
	Image      *string          `json:"image"`
}

type rewardRequest struct {
	Title       *string `json:"title"`
	Points      *int64  `json:"points"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type deletedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// GetStock возвращает остаток компоста.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.service.Stock(r.Context())
	if err != nil {
		h.handleError(w, r, "get stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toStock(stock))
}

// UpdateStock задаёт остаток и/или цену компоста.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stock, err := h.service.UpdateStock(r.Context(), service.StockPatch{
		Available:  req.Available,
		PricePerKg: req.PricePerKg,
	})
	if err != nil {
		h.handleError(w, r, "update stock", err)
		return
	}

	writeJSON(w, http.StatusOK, stockEnvelope{Message: "Compost stock updated successfully", Stock: toStock(stock)})
}

// ListInventory возвращает каталог продукции.
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Inventory(r.Context())
	if err != nil {
		h.handleError(w, r, "list inventory", err)
		return
	}

	res := make([]inventoryItemResponse, 0, len(items))
	for _, it := range items {
		res = append(res, toInventoryItem(it))
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateInventoryItem добавляет позицию каталога.
func (h *Handler) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.service.CreateInventoryItem(r.Context(), service.InventoryInput{
		Name:       deref(req.Name),
		Category:   deref(req.Category),
		PricePerKg: deref(req.PricePerKg),
		Stock:      deref(req.Stock),
		Image:      deref(req.Image),
	})
	if err != nil {
		h.handleError(w, r, "create inventory item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toInventoryItem(*it))
}

// UpdateInventoryItem обновляет переданные поля позиции.
func (h *Handler) UpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.service.UpdateInventoryItem(r.Context(), chi.URLParam(r, "id"), service.InventoryPatch{
		Name:       req.Name,
		Category:   req.Category,
		PricePerKg: req.PricePerKg,
		Stock:      req.Stock,
		Image:      req.Image,
	})
	if err != nil {
		h.handleError(w, r, "update inventory item", err)
		return
	}

	writeJSON(w, http.StatusOK, toInventoryItem(*it))
}

// DeleteInventoryItem удаляет позицию каталога.
func (h *Handler) DeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteInventoryItem(r.Context(), id); err != nil {
		h.handleError(w, r, "delete inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Message: "Deleted", ID: id})
}

// ListRewards возвращает каталог наград.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.service.Rewards(r.Context())
	if err != nil {
		h.handleError(w, r, "list rewards", err)
		return
	}

	res := make([]rewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		res = append(res, toReward(rw))
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateReward добавляет награду.
func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rw, err := h.service.CreateReward(r.Context(), service.RewardInput{
		Title:       deref(req.Title),
		Points:      deref(req.Points),
		Description: deref(req.Description),
		Image:       deref(req.Image),
	})
	if err != nil {
		h.handleError(w, r, "create reward", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReward(*rw))
}

// UpdateReward обновляет переданные поля награды.
func (h *Handler) UpdateReward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rw, err := h.service.UpdateReward(r.Context(), chi.URLParam(r, "id"), service.RewardPatch{
		Title:       req.Title,
		Points:      req.Points,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		h.handleError(w, r, "update reward", err)
		return
	}

	writeJSON(w, http.StatusOK, toReward(*rw))
}

// DeleteReward удаляет награду.
func (h *Handler) DeleteReward(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteReward(r.Context(), id); err != nil {
		h.handleError(w, r, "delete reward", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Message: "Deleted", ID: id})
}

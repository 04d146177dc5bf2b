// Package handler содержит HTTP-обработчики API сервиса Waste2Wealth.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/geocode"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/metrics"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/middleware"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/repository"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/route"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/service"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

const maxBodySize = 1 << 20

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, in service.RegisterInput) (*model.User, string, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, string, error)
	Profile(ctx context.Context, userID string) (*model.User, error)

	RequestPickup(ctx context.Context, ownerID string, in service.PickupInput) (*model.Pickup, error)
	MyPickups(ctx context.Context, ownerID string) ([]model.Pickup, error)
	AllPickups(ctx context.Context) ([]model.Pickup, error)
	UpdatePickupStatus(ctx context.Context, actorID, pickupID string, target model.PickupStatus) (lifecycle.PickupOutcome, error)
	CompletePickup(ctx context.Context, actorID, pickupID string) (lifecycle.PickupOutcome, error)
	PickupEvents(ctx context.Context, pickupID string) ([]model.StatusEvent, error)
	OptimizeRoute(ctx context.Context, locations []route.Location) (route.Plan, error)
	Geocode(ctx context.Context, address string) (geocode.Result, error)

	PlaceOrder(ctx context.Context, farmerID string, in service.OrderInput) (*model.Order, error)
	MyOrders(ctx context.Context, farmerID string) ([]model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, actorID, orderID string, target model.OrderStatus) (lifecycle.OrderOutcome, error)
	OrderEvents(ctx context.Context, orderID string) ([]model.StatusEvent, error)
	BackfillOrderCoordinates(ctx context.Context) (service.BackfillReport, error)

	Stock(ctx context.Context) (model.CompostStock, error)
	UpdateStock(ctx context.Context, patch service.StockPatch) (model.CompostStock, error)

	Inventory(ctx context.Context) ([]model.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, in service.InventoryInput) (*model.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id string, patch service.InventoryPatch) (*model.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error

	Rewards(ctx context.Context) ([]model.Reward, error)
	CreateReward(ctx context.Context, in service.RewardInput) (*model.Reward, error)
	UpdateReward(ctx context.Context, id string, patch service.RewardPatch) (*model.Reward, error)
	DeleteReward(ctx context.Context, id string) error

	Redeem(ctx context.Context, userID, rewardID string) (lifecycle.RedemptionOutcome, error)
	MyRedemptions(ctx context.Context, userID string) ([]model.Redemption, error)
	AllRedemptions(ctx context.Context) ([]model.Redemption, error)
}

// Handler реализует HTTP-обработчики API сервиса Waste2Wealth.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов. m может быть nil.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, m *metrics.Metrics) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		metrics:        m,
	}
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Message: message, Error: code})
}

// decodeJSON читает тело запроса в v. При ошибке ответ уже записан.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return false
	}
	return true
}

func principal(r *http.Request) middleware.Principal {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p
}

// handleError переводит ошибку сервиса в HTTP-ответ. Неизвестные ошибки
// логируются и возвращаются как 500 без подробностей.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		ve *validation.ValidationError
		te *lifecycle.TransitionError
	)

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error(), "validation_error")
	case errors.Is(err, lifecycle.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "Invalid status value", "invalid_status")
	case errors.As(err, &te):
		writeError(w, http.StatusBadRequest, te.Reason, "invalid_transition")
	case errors.Is(err, lifecycle.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, "Not enough stock to approve order", "insufficient_stock")
	case errors.Is(err, lifecycle.ErrInsufficientPoints):
		writeError(w, http.StatusBadRequest, "Insufficient points", "insufficient_points")
	case errors.Is(err, route.ErrTooFewLocations):
		writeError(w, http.StatusBadRequest, "Please provide at least 2 locations with lat/lon coordinates", "validation_error")
	case errors.Is(err, route.ErrInvalidLocation):
		writeError(w, http.StatusBadRequest, "Each location must have name, lat, and lon", "validation_error")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials", "unauthorized")
	case errors.Is(err, repository.ErrUserExists):
		writeError(w, http.StatusConflict, "User already exists", "conflict")
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found", "not_found")
	case errors.Is(err, repository.ErrPickupNotFound):
		writeError(w, http.StatusNotFound, "Pickup not found", "not_found")
	case errors.Is(err, repository.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found", "not_found")
	case errors.Is(err, repository.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "Item not found", "not_found")
	case errors.Is(err, repository.ErrRewardNotFound):
		writeError(w, http.StatusNotFound, "Reward not found", "not_found")
	case errors.Is(err, geocode.ErrNotFound):
		writeError(w, http.StatusNotFound, "Address not found", "not_found")
	default:
		h.logger.Error(op+" error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, "Server error", "internal_error")
	}
}

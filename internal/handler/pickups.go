package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/geocode"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/route"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/service"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

type pickupRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	Address      string          `json:"address"`
	WasteType    string          `json:"wasteType"`
	Phone        string          `json:"phone"`
	PickupDate   string          `json:"pickupDate"`
	PickupTime   string          `json:"pickupTime"`
	Instructions string          `json:"instructions"`
	Lat          *float64        `json:"lat"`
	Lon          *float64        `json:"lon"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type pickupEnvelope struct {
	Message string         `json:"message"`
	Pickup  pickupResponse `json:"pickup"`
}

type locationRequest struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Address string   `json:"address"`
}

type optimizeRouteRequest struct {
	Locations []locationRequest `json:"locations"`
}

type optimizeRouteResponse struct {
	Success bool `json:"success"`
	route.Plan
}

type geocodeRequest struct {
	Address string `json:"address"`
}

type geocodeResponse struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName,omitempty"`
}

// RequestPickup создаёт заявку на вывоз от имени домохозяйства.
func (h *Handler) RequestPickup(w http.ResponseWriter, r *http.Request) {
	var req pickupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.RequestPickup(r.Context(), principal(r).UserID, service.PickupInput{
		Quantity:     req.Quantity,
		Address:      req.Address,
		WasteType:    req.WasteType,
		Phone:        req.Phone,
		PickupDate:   req.PickupDate,
		PickupTime:   req.PickupTime,
		Instructions: req.Instructions,
		Lat:          req.Lat,
		Lon:          req.Lon,
	})
	if err != nil {
		h.handleError(w, r, "request pickup", err)
		return
	}

	writeJSON(w, http.StatusCreated, pickupEnvelope{
		Message: "Pickup request submitted successfully",
		Pickup:  toPickup(*p),
	})
}

// MyPickups возвращает заявки текущего пользователя.
func (h *Handler) MyPickups(w http.ResponseWriter, r *http.Request) {
	ps, err := h.service.MyPickups(r.Context(), principal(r).UserID)
	if err != nil {
		h.handleError(w, r, "list own pickups", err)
		return
	}
	writeJSON(w, http.StatusOK, toPickups(ps))
}

// AllPickups возвращает все заявки с данными владельцев.
func (h *Handler) AllPickups(w http.ResponseWriter, r *http.Request) {
	ps, err := h.service.AllPickups(r.Context())
	if err != nil {
		h.handleError(w, r, "list pickups", err)
		return
	}
	writeJSON(w, http.StatusOK, toPickups(ps))
}

// UpdatePickupStatus применяет к заявке статус из тела запроса.
func (h *Handler) UpdatePickupStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.service.UpdatePickupStatus(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), model.PickupStatus(req.Status))
	h.writePickupOutcome(w, r, out, err)
}

// CompletePickup отмечает заявку выполненной.
func (h *Handler) CompletePickup(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.CompletePickup(r.Context(), principal(r).UserID, chi.URLParam(r, "id"))
	h.writePickupOutcome(w, r, out, err)
}

func (h *Handler) writePickupOutcome(w http.ResponseWriter, r *http.Request, out lifecycle.PickupOutcome, err error) {
	if err != nil {
		h.handleError(w, r, "update pickup status", err)
		return
	}
	writeJSON(w, http.StatusOK, pickupEnvelope{Message: out.Message, Pickup: toPickup(out.Pickup)})
}

// PickupEvents возвращает журнал переходов заявки.
func (h *Handler) PickupEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.PickupEvents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, "list pickup events", err)
		return
	}
	writeJSON(w, http.StatusOK, toEvents(events))
}

// OptimizeRoute строит маршрут объезда переданных точек.
func (h *Handler) OptimizeRoute(w http.ResponseWriter, r *http.Request) {
	var req optimizeRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	locations := make([]route.Location, 0, len(req.Locations))
	for _, loc := range req.Locations {
		if loc.Lat == nil || loc.Lon == nil {
			h.handleError(w, r, "optimize route", route.ErrInvalidLocation)
			return
		}
		locations = append(locations, route.Location{
			ID:      loc.ID,
			Name:    loc.Name,
			Lat:     *loc.Lat,
			Lon:     *loc.Lon,
			Address: loc.Address,
		})
	}

	plan, err := h.service.OptimizeRoute(r.Context(), locations)
	if err != nil {
		h.handleError(w, r, "optimize route", err)
		return
	}

	writeJSON(w, http.StatusOK, optimizeRouteResponse{Success: true, Plan: plan})
}

// Geocode возвращает координаты адреса.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	var req geocodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Geocode(r.Context(), req.Address)
	if err != nil {
		var ve *validation.ValidationError
		if errors.Is(err, geocode.ErrNotFound) || errors.As(err, &ve) {
			h.handleError(w, r, "geocode", err)
			return
		}
		h.logger.Warn("geocoding failed", zap.String("address", req.Address), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Geocoding failed", "upstream_error")
		return
	}

	writeJSON(w, http.StatusOK, geocodeResponse{
		Lat:         res.Point.Lat,
		Lon:         res.Point.Lon,
		DisplayName: res.DisplayName,
	})
}

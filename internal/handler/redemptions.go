package handler

import (
	"net/http"
)

type redeemRequest struct {
	RewardID string `json:"rewardId"`
}

type redeemResponse struct {
	Message         string             `json:"message"`
	Redemption      redemptionResponse `json:"redemption"`
	RemainingPoints int64              `json:"remainingPoints"`
}

// Redeem обменивает баллы текущего пользователя на награду.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.service.Redeem(r.Context(), principal(r).UserID, req.RewardID)
	if err != nil {
		h.handleError(w, r, "redeem reward", err)
		return
	}

	writeJSON(w, http.StatusCreated, redeemResponse{
		Message:         "Reward redeemed successfully",
		Redemption:      toRedemption(out.Redemption),
		RemainingPoints: out.User.RewardPoints,
	})
}

// MyRedemptions возвращает историю обменов текущего пользователя.
func (h *Handler) MyRedemptions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.MyRedemptions(r.Context(), principal(r).UserID)
	if err != nil {
		h.handleError(w, r, "list own redemptions", err)
		return
	}
	writeJSON(w, http.StatusOK, toRedemptions(list))
}

// AllRedemptions возвращает все обмены с данными пользователей.
func (h *Handler) AllRedemptions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AllRedemptions(r.Context())
	if err != nil {
		h.handleError(w, r, "list redemptions", err)
		return
	}
	writeJSON(w, http.StatusOK, toRedemptions(list))
}

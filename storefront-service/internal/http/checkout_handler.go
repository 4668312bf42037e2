package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/checkout"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderPlacedResponse struct {
	Message string          `json:"message"`
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

// /payment/billing_info accepts POST only; anything else goes back home.
func (h *Handler) BillingInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var shipping domain.ShippingInfo
	if err := decodeJSON(w, r, &shipping); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}

	billing, err := h.checkout.BillingInfo(ctx, req, shipping)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, billing)
	case errors.Is(err, checkout.ErrInvalidShipping):
		respondInvalid(w, err)
	default:
		h.internalError(w, r, err, "failed to capture billing info")
	}
}

// /payment/process_order accepts POST only; anything else goes back home.
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}

	res, err := h.checkout.ProcessOrder(ctx, req)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, OrderPlacedResponse{
			Message: "Order placed",
			OrderID: res.OrderID,
			Total:   res.Total,
		})
	case errors.Is(err, checkout.ErrNotSubmission):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, checkout.ErrMissingShipping):
		respondError(w, http.StatusBadRequest, "missing_shipping", "Please fill out your shipping information first")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "Your cart is empty")
	case errors.Is(err, checkout.ErrOrderSubmission):
		h.log.WithError(err).WithContext(r.Context()).Warn("order not placed")
		respondError(w, http.StatusBadGateway, "order_failed", "Your order could not be placed, please try again")
	default:
		h.internalError(w, r, err, "failed to process order")
	}
}

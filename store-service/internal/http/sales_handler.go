package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/repository"
)

// GET /ecom/totalrevenue
func (h *Handler) TotalRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	revenue, err := h.store.RevenueByProduct(ctx)
	if err != nil {
		h.internalError(w, r, err, "failed to compute revenue")
		return
	}
	respondJSON(w, http.StatusOK, revenue)
}

// GET /ecom/highest_selling
func (h *Handler) HighestSelling(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	best, err := h.store.HighestSelling(ctx)
	if errors.Is(err, repository.ErrNoSales) {
		respondError(w, http.StatusNotFound, "not_found", "No sales data available")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "failed to compute highest selling product")
		return
	}
	respondJSON(w, http.StatusOK, best)
}

// GET /sales
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.store.ListOrders(ctx)
	if err != nil {
		h.internalError(w, r, err, "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/cart"
	"github.com/shopspring/decimal"
)

const (
	minLineQty = 1
	maxLineQty = 99
)

type CartLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"product_qty"`
}

func (r CartLineRequest) Validate(needQty bool) error {
	if r.ProductID <= 0 {
		return errors.New("product_id must be positive")
	}
	if needQty && (r.Quantity < minLineQty || r.Quantity > maxLineQty) {
		return fmt.Errorf("product_qty must be between %d and %d", minLineQty, maxLineQty)
	}
	return nil
}

type CartResponse struct {
	Lines      []cart.Line     `json:"lines"`
	Quantities map[string]int  `json:"quantities"`
	Total      decimal.Decimal `json:"total"`
	Size       int             `json:"size"`
}

type CartMutationResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
	Qty       int    `json:"qty"`
}

// GET /cart
func (h *Handler) CartSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}
	c, ok := h.newCart(w, req)
	if !ok {
		return
	}

	summary, err := c.Summary(ctx)
	if err != nil {
		h.internalError(w, r, err, "failed to resolve cart products")
		return
	}

	respondJSON(w, http.StatusOK, CartResponse{
		Lines:      summary.Lines,
		Quantities: summary.Quantities,
		Total:      summary.Total,
		Size:       c.Size(),
	})
}

// POST /cart/add responds with the number of distinct lines as qty.
func (h *Handler) CartAdd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var body CartLineRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := body.Validate(true); err != nil {
		respondInvalid(w, err)
		return
	}

	products, err := h.catalog.ProductsByIDs(ctx, []int64{body.ProductID})
	if err != nil {
		h.internalError(w, r, err, "failed to look up product")
		return
	}
	if len(products) == 0 {
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}
	c, ok := h.newCart(w, req)
	if !ok {
		return
	}
	if err := c.Add(ctx, body.ProductID, body.Quantity); err != nil {
		h.internalError(w, r, err, "failed to add to cart")
		return
	}

	respondJSON(w, http.StatusOK, CartMutationResponse{
		Message:   "Product added to cart",
		ProductID: body.ProductID,
		Qty:       c.Size(),
	})
}

// POST /cart/update
func (h *Handler) CartUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var body CartLineRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := body.Validate(true); err != nil {
		respondInvalid(w, err)
		return
	}

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}
	c, ok := h.newCart(w, req)
	if !ok {
		return
	}
	if _, err := c.Update(ctx, body.ProductID, body.Quantity); err != nil {
		h.internalError(w, r, err, "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, CartMutationResponse{
		Message:   "Your cart has been updated",
		ProductID: body.ProductID,
		Qty:       body.Quantity,
	})
}

// POST /cart/delete
func (h *Handler) CartDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var body CartLineRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := body.Validate(false); err != nil {
		respondInvalid(w, err)
		return
	}

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}
	c, ok := h.newCart(w, req)
	if !ok {
		return
	}
	if err := c.Delete(ctx, body.ProductID); err != nil {
		h.internalError(w, r, err, "failed to delete from cart")
		return
	}

	respondJSON(w, http.StatusOK, CartMutationResponse{
		Message:   "Item deleted from shopping cart",
		ProductID: body.ProductID,
		Qty:       c.Size(),
	})
}

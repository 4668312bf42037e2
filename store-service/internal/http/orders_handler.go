package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/store-service/internal/repository"
	"github.com/shopspring/decimal"
)

const maxFullNameLength = 250

type OrderItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	UserID          *int64             `json:"user_id"`
	FullName        string             `json:"full_name"`
	Email           string             `json:"email"`
	ShippingAddress string             `json:"shipping_address"`
	AmountPaid      decimal.Decimal    `json:"amount_paid"`
	Items           []OrderItemRequest `json:"items"`
}

type CreateOrderResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

type UpdateOrderItemRequest struct {
	ProductID int64            `json:"product_id"`
	Quantity  *int             `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

type UpdateOrderRequest struct {
	Shipped     *bool                    `json:"shipped"`
	DateShipped *time.Time               `json:"date_shipped"`
	Items       []UpdateOrderItemRequest `json:"items"`
}

type UpdateOrderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (req *CreateOrderRequest) Validate() error {
	n := utf8.RuneCountInString(req.FullName)
	if n < 1 || n > maxFullNameLength {
		return &ValidationError{Field: "full_name", Reason: fmt.Sprintf("must be 1..%d characters", maxFullNameLength)}
	}
	if strings.TrimSpace(req.Email) == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if req.ShippingAddress == "" {
		return &ValidationError{Field: "shipping_address", Reason: "is required"}
	}
	if !req.AmountPaid.IsPositive() {
		return &ValidationError{Field: "amount_paid", Reason: "must be greater than 0"}
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Reason: "must be greater than 0"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "must be greater than 0"}
		}
		if !item.Price.IsPositive() {
			return &ValidationError{Field: fmt.Sprintf("items[%d].price", i), Reason: "must be greater than 0"}
		}
	}
	return nil
}

func (req *CreateOrderRequest) toNewOrder() *repository.NewOrder {
	lines := make([]repository.NewOrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, repository.NewOrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return &repository.NewOrder{
		UserID:          req.UserID,
		FullName:        req.FullName,
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
		AmountPaid:      req.AmountPaid,
		Lines:           lines,
	}
}

func (req *UpdateOrderRequest) toUpdate() domain.OrderUpdate {
	u := domain.OrderUpdate{
		Shipped:     req.Shipped,
		DateShipped: req.DateShipped,
	}
	for _, item := range req.Items {
		u.Lines = append(u.Lines, domain.LineOverride{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return u
}

// POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondValidation(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	id, err := h.store.CreateOrder(ctx, req.toNewOrder())
	if err != nil {
		h.internalError(w, r, err, "failed to create order")
		return
	}

	h.log.WithField("order_id", id).WithContext(r.Context()).Info("order created")
	respondJSON(w, http.StatusCreated, CreateOrderResponse{Message: "Order created", OrderID: id})
}

// PUT /orders/{order_id}
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(r, "order_id")
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}

	var req UpdateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondValidation(w, err)
		return
	}

	order, err := h.store.UpdateOrder(ctx, id, req.toUpdate())
	if errors.Is(err, repository.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, UpdateOrderResponse{Message: "Order updated", Order: order})
}

// DELETE /orders/{order_id}
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(r, "order_id")
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}

	err := h.store.DeleteOrder(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "failed to delete order")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Order deleted successfully"})
}

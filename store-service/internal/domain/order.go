package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is the historical record of one product bought in an order. Price
// is the unit price at the time the order was placed.
type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	UserID    *int64          `json:"user_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"user_id"`
	FullName        string          `json:"full_name"`
	Email           string          `json:"email"`
	ShippingAddress string          `json:"shipping_address"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	DateOrdered     time.Time       `json:"date_ordered"`
	Shipped         bool            `json:"shipped"`
	DateShipped     *time.Time      `json:"date_shipped"`
	Lines           []OrderLine     `json:"items,omitempty"`
}

// LineOverride changes quantity and/or price of the line holding ProductID.
type LineOverride struct {
	ProductID int64
	Quantity  *int
	Price     *decimal.Decimal
}

type OrderUpdate struct {
	Shipped     *bool
	DateShipped *time.Time
	Lines       []LineOverride
}

// ApplyStatus applies the shipping fields of u to o. Marking an order shipped
// without any shipped timestamp stamps now.
func (o *Order) ApplyStatus(u OrderUpdate, now time.Time) {
	if u.Shipped != nil {
		o.Shipped = *u.Shipped
	}
	if u.DateShipped != nil {
		t := *u.DateShipped
		o.DateShipped = &t
	}
	if o.Shipped && o.DateShipped == nil {
		o.DateShipped = &now
	}
}

// Package checkout turns the session cart into an order in two steps:
// shipping capture, then order placement.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/cart"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/storeclient"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ShippingKey is the session attribute holding the shipping details between
// the two steps.
const ShippingKey = "my_shipping"

var (
	ErrNotSubmission   = errors.New("not a form submission")
	ErrMissingShipping = errors.New("shipping information is missing")
	ErrInvalidShipping = errors.New("invalid shipping information")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderSubmission = errors.New("order submission failed")
)

type Request interface {
	cart.Request
	Method() string
}

type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req storeclient.OrderRequest) (int64, error)
}

type Service struct {
	orders   OrderSubmitter
	products cart.ProductLookup
	mirror   cart.Mirror
	log      logrus.FieldLogger
}

func NewService(orders OrderSubmitter, products cart.ProductLookup, mirror cart.Mirror, log logrus.FieldLogger) *Service {
	return &Service{
		orders:   orders,
		products: products,
		mirror:   mirror,
		log:      log,
	}
}

type Billing struct {
	Cart     *cart.Summary       `json:"cart"`
	Shipping domain.ShippingInfo `json:"shipping"`
}

type Result struct {
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

func ValidateShipping(s domain.ShippingInfo) error {
	required := []struct {
		field, value string
	}{
		{"shipping_full_name", s.FullName},
		{"shipping_email", s.Email},
		{"shipping_address1", s.Address1},
		{"shipping_city", s.City},
		{"shipping_country", s.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidShipping, r.field)
		}
	}
	if !strings.Contains(s.Email, "@") {
		return fmt.Errorf("%w: shipping_email is invalid", ErrInvalidShipping)
	}
	return nil
}

// BillingInfo stores the shipping details in the session and returns what
// the buyer is about to pay for.
func (s *Service) BillingInfo(ctx context.Context, req Request, shipping domain.ShippingInfo) (*Billing, error) {
	if req.Method() != http.MethodPost {
		return nil, ErrNotSubmission
	}
	if err := ValidateShipping(shipping); err != nil {
		return nil, err
	}

	c, err := cart.New(req, s.mirror, s.products)
	if err != nil {
		return nil, err
	}
	summary, err := c.Summary(ctx)
	if err != nil {
		return nil, err
	}

	if err := req.Session().Set(ShippingKey, shipping); err != nil {
		return nil, err
	}
	return &Billing{Cart: summary, Shipping: shipping}, nil
}

// ProcessOrder submits the cart as an order. The cart is cleared only after
// the store accepted the order.
func (s *Service) ProcessOrder(ctx context.Context, req Request) (*Result, error) {
	if req.Method() != http.MethodPost {
		return nil, ErrNotSubmission
	}

	c, err := cart.New(req, s.mirror, s.products)
	if err != nil {
		return nil, err
	}
	summary, err := c.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderSubmission, err)
	}

	var shipping domain.ShippingInfo
	found, err := req.Session().Get(ShippingKey, &shipping)
	if err != nil {
		s.log.WithError(err).WithContext(ctx).Warn("stored shipping info unreadable")
		return nil, ErrMissingShipping
	}
	if !found {
		return nil, ErrMissingShipping
	}

	if len(summary.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]storeclient.OrderLine, 0, len(summary.Lines))
	for _, l := range summary.Lines {
		lines = append(lines, storeclient.OrderLine{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Price:     l.Product.UnitPrice(),
		})
	}

	order := storeclient.OrderRequest{
		FullName:        shipping.FullName,
		Email:           shipping.Email,
		ShippingAddress: shipping.Address(),
		AmountPaid:      summary.Total,
		Items:           lines,
	}
	userID, authed := req.Identity()
	if authed {
		order.UserID = &userID
	}

	orderID, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.log.WithError(err).WithContext(ctx).Warn("order submission failed, cart kept")
		return nil, fmt.Errorf("%w: %w", ErrOrderSubmission, err)
	}

	c.Clear()
	if authed {
		if err := s.mirror.SaveCart(ctx, userID, ""); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Error("failed to reset saved cart after order")
		}
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"total":    summary.Total.String(),
		"lines":    len(lines),
	}).WithContext(ctx).Info("order placed")
	return &Result{OrderID: orderID, Total: summary.Total}, nil
}

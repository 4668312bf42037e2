package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Takamichi23/Nike-microservice/pkg/circuitbreaker"
	"github.com/Takamichi23/Nike-microservice/pkg/telemetry"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultTimeout = 10 * time.Second

// StatusError is returned for a non-2xx answer from the store API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("store api returned %d: %s", e.StatusCode, e.Message)
}

type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderRequest struct {
	UserID          *int64          `json:"user_id"`
	FullName        string          `json:"full_name"`
	Email           string          `json:"email"`
	ShippingAddress string          `json:"shipping_address"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Items           []OrderLine     `json:"items"`
}

type createOrderResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Client talks to the store API. Every call is bounded by the client timeout
// and goes through one circuit breaker; nothing is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	sfg        singleflight.Group
	log        logrus.FieldLogger
}

func New(baseURL string, timeout time.Duration, breaker circuitbreaker.Settings, log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if breaker.IsSuccessful == nil {
		breaker.IsSuccessful = countsAsSuccess
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: telemetry.Transport(nil),
		},
		breaker: circuitbreaker.New[[]byte](breaker, log),
		log:     log,
	}
}

// ProductsByIDs returns the listed products that exist in the catalog.
// Concurrent lookups of the same id set share one request.
func (c *Client) ProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	joined := strings.Join(parts, ",")

	v, err, _ := c.sfg.Do(joined, func() (interface{}, error) {
		body, err := c.do(ctx, http.MethodGet, "/items?ids="+url.QueryEscape(joined), nil)
		if err != nil {
			return nil, err
		}
		var products []domain.Product
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// CreateOrder submits an order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (int64, error) {
	if req.Items == nil {
		req.Items = []OrderLine{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("encode order: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return 0, err
	}

	var resp createOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode order response: %w", err)
	}
	return resp.OrderID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s %s: %w", method, path, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{StatusCode: resp.StatusCode}
			var er errorResponse
			if json.Unmarshal(data, &er) == nil {
				statusErr.Message = er.Error
			}
			c.log.WithFields(logrus.Fields{
				"method": method,
				"path":   path,
				"status": resp.StatusCode,
			}).WithContext(ctx).Warn("store api error")
			return nil, statusErr
		}
		return data, nil
	})
}

// countsAsSuccess keeps request-scoped errors out of the breaker counts: a
// rejection by the store (4xx) or a caller that went away.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

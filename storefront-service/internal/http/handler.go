package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/cart"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/checkout"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/service"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/session"
	"github.com/sirupsen/logrus"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB

	// authUserKey is the session attribute holding the signed-in user id.
	authUserKey = "_auth_user_id"
)

// Profiles keeps the saved cart of signed-in users.
type Profiles interface {
	cart.Mirror
	cart.SavedCartReader
}

type Accounts interface {
	Register(ctx context.Context, reg service.Registration) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type Checkout interface {
	BillingInfo(ctx context.Context, req checkout.Request, shipping domain.ShippingInfo) (*checkout.Billing, error)
	ProcessOrder(ctx context.Context, req checkout.Request) (*checkout.Result, error)
}

type Handler struct {
	catalog  cart.ProductLookup
	profiles Profiles
	accounts Accounts
	checkout Checkout
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewHandler(catalog cart.ProductLookup, profiles Profiles, accounts Accounts, checkout Checkout, timeout time.Duration, log logrus.FieldLogger) *Handler {
	return &Handler{
		catalog:  catalog,
		profiles: profiles,
		accounts: accounts,
		checkout: checkout,
		timeout:  timeout,
		log:      log,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// request adapts an HTTP request to what the cart and checkout need.
type request struct {
	r    *http.Request
	sess *session.Session
}

func (q *request) Session() *session.Session { return q.sess }

func (q *request) Method() string { return q.r.Method }

func (q *request) Identity() (int64, bool) {
	var id int64
	ok, err := q.sess.Get(authUserKey, &id)
	if err != nil || !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// GET /
func (h *Handler) Home(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the store"})
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) newRequest(w http.ResponseWriter, r *http.Request) (*request, bool) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		h.log.WithField("path", r.URL.Path).WithContext(r.Context()).Error("no session attached to request")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return nil, false
	}
	return &request{r: r, sess: sess}, true
}

func (h *Handler) newCart(w http.ResponseWriter, req *request) (*cart.Cart, bool) {
	c, err := cart.New(req, h.profiles, h.catalog)
	if err != nil {
		h.internalError(w, req.r, err, "failed to load cart")
		return nil, false
	}
	return c, true
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.log.WithError(err).WithContext(r.Context()).Error(msg)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondInvalid(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Code:    "invalid_argument",
		Details: err.Error(),
	})
}

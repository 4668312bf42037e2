package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Store is what the handlers need from the persistence layer.
type Store interface {
	repository.ProductRepository
	repository.OrderRepository
	repository.SalesRepository
}

type Handler struct {
	store   Store
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewHandler(store Store, timeout time.Duration, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:   store,
		timeout: timeout,
		log:     log,
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

// GET /
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Hello World"})
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.log.WithError(err).WithContext(r.Context()).Error(msg)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
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

func respondValidation(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Code:    "invalid_argument",
			Details: verr.Error(),
		})
		return
	}
	respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
}

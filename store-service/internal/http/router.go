package http

import (
	"net/http"

	"github.com/Takamichi23/Nike-microservice/pkg/logger"
	"github.com/Takamichi23/Nike-microservice/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the store API. metricsHandler may be nil.
func NewRouter(h *Handler, m *metrics.ServerMetrics, metricsHandler http.Handler, log logrus.FieldLogger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Get("/{item_id}", h.GetItem)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Put("/{order_id}", h.UpdateOrder)
		r.Delete("/{order_id}", h.DeleteOrder)
	})

	r.Route("/ecom", func(r chi.Router) {
		r.Get("/totalrevenue", h.TotalRevenue)
		r.Get("/highest_selling", h.HighestSelling)
	})
	r.Get("/sales", h.Sales)

	return r
}

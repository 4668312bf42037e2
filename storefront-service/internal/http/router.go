package http

import (
	"net/http"

	"github.com/Takamichi23/Nike-microservice/pkg/logger"
	"github.com/Takamichi23/Nike-microservice/pkg/metrics"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the storefront. Only routes that touch the cart or the
// signed-in user get a session. m and metricsHandler may be nil.
func NewRouter(h *Handler, sessions *session.Manager, m *metrics.ServerMetrics, metricsHandler http.Handler, log logrus.FieldLogger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}

	r.Get("/", h.Home)
	r.Get("/health", h.Health)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.CartSummary)
			r.Post("/add", h.CartAdd)
			r.Post("/update", h.CartUpdate)
			r.Post("/delete", h.CartDelete)
		})

		r.Route("/payment", func(r chi.Router) {
			r.HandleFunc("/billing_info", h.BillingInfo)
			r.HandleFunc("/process_order", h.ProcessOrder)
		})

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	return r
}

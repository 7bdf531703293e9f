package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/electrozone/backend/internal/auth"
	"github.com/electrozone/backend/internal/gateway"
	"github.com/electrozone/backend/internal/handler"
	"github.com/electrozone/backend/internal/order"
	"github.com/electrozone/backend/internal/product"
	"github.com/electrozone/backend/internal/user"
)

func newBaseRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func NewOrderRouter(svc order.Service) *chi.Mux {
	r := newBaseRouter()
	handler.NewOrderHandler(svc).RegisterRoutes(r)
	return r
}

func NewUserRouter(svc user.Service, tokens *auth.Manager) *chi.Mux {
	r := newBaseRouter()
	handler.NewUserHandler(svc, tokens).RegisterRoutes(r)
	return r
}

func NewProductRouter(svc product.Service) *chi.Mux {
	r := newBaseRouter()
	handler.NewProductHandler(svc).RegisterRoutes(r)
	return r
}

func NewGatewayRouter(h *gateway.Handler) *chi.Mux {
	r := newBaseRouter()
	h.RegisterRoutes(r)
	return r
}

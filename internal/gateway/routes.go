package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/electrozone/backend/internal/auth"
	"github.com/electrozone/backend/internal/checkout"
	"github.com/electrozone/backend/internal/config"
	"github.com/electrozone/backend/pkg/metrics"
)

// Handler wires the public gateway surface: pass-through proxies per
// upstream, the two response-shape rewrites the storefront depends on, and
// the checkout flow.
type Handler struct {
	orders   *Proxy
	users    *Proxy
	products *Proxy
	checkout *checkout.Orchestrator
	jwt      *auth.Manager
	validate *validator.Validate
}

func NewHandler(services config.ServicesConfig, orchestrator *checkout.Orchestrator, jwtManager *auth.Manager) *Handler {
	return &Handler{
		orders:   NewProxy("order-service", services.OrderURL),
		users:    NewProxy("user-service", services.UserURL),
		products: NewProxy("product-service", services.ProductURL),
		checkout: orchestrator,
		jwt:      jwtManager,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/{id}/pay", h.handlePayOrder)
		r.Put("/{id}/status", h.handleUpdateStatus)
		r.HandleFunc("/", h.passthrough(h.orders))
		r.HandleFunc("/*", h.passthrough(h.orders))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.HandleFunc("/", h.passthrough(h.users))
		r.HandleFunc("/*", h.passthrough(h.users))
	})

	// Legacy storefront builds still call /auth/login and /auth/register.
	r.HandleFunc("/auth/*", h.handleAuthAlias)

	r.Route("/api/products", func(r chi.Router) {
		r.HandleFunc("/", h.passthrough(h.products))
		r.HandleFunc("/*", h.passthrough(h.products))
	})
	r.Route("/api/categories", func(r chi.Router) {
		r.HandleFunc("/", h.passthrough(h.products))
		r.HandleFunc("/*", h.passthrough(h.products))
	})

	r.Group(func(r chi.Router) {
		r.Use(h.jwt.Middleware)
		r.Post("/api/checkout", h.handleCheckout)
	})
}

func (h *Handler) passthrough(p *Proxy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Forward(w, r, r.URL.Path)
	}
}

// handleAuthAlias rewrites /auth/<action> onto the user service's
// /api/users/<action> routes.
func (h *Handler) handleAuthAlias(w http.ResponseWriter, r *http.Request) {
	path := "/api/users" + strings.TrimPrefix(r.URL.Path, "/auth")
	h.users.Forward(w, r, path)
}

// handlePayOrder wraps the order service's plain-text payment secret into
// the JSON object the storefront expects. Upstream errors keep their status
// code with the body text moved under "message".
func (h *Handler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	path := "/api/orders/" + chi.URLParam(r, "id") + "/pay"

	status, body, _, err := h.orders.roundTrip(r, path, r.Body)
	if err != nil {
		h.orders.respondUnavailable(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	text := strings.TrimSpace(string(body))
	if status >= 200 && status <= 299 {
		_ = json.NewEncoder(w).Encode(map[string]string{"clientSecret": text})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"message": text})
}

// handleUpdateStatus accepts both status body shapes seen in the wild, a
// bare JSON string and a {"status": ...} object, and forwards the object
// form upstream.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	status, ok := extractStatus(raw)
	if !ok {
		respondMessage(w, http.StatusBadRequest, "invalid status payload")
		return
	}

	normalized, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "failed to encode status payload")
		return
	}

	path := "/api/orders/" + chi.URLParam(r, "id") + "/status"
	upStatus, body, contentType, err := h.orders.roundTrip(r, path, bytes.NewReader(normalized))
	if err != nil {
		h.orders.respondUnavailable(w, err)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(upStatus)
	_, _ = w.Write(body)
}

// extractStatus decodes either `"SHIPPED"` or `{"status":"SHIPPED"}`.
func extractStatus(raw []byte) (string, bool) {
	var obj struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Status != nil {
		return *obj.Status, true
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil && bare != "" {
		return bare, true
	}

	return "", false
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondMessage(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	result, err := h.checkout.Run(r.Context(), claims.UserID, req)
	if err != nil {
		metrics.CheckoutAttempts.WithLabelValues(string(checkout.StateFailed)).Inc()

		status := http.StatusBadGateway
		var apiErr *checkout.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		log.Error().Err(err).Str("userId", claims.UserID).Msg("gateway: checkout failed")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(result)
		return
	}

	metrics.CheckoutAttempts.WithLabelValues(string(checkout.StateComplete)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

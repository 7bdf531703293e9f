package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/electrozone/backend/internal/order"
	"github.com/electrozone/backend/internal/payment"
)

type CreateOrderRequest struct {
	UserID          string  `json:"userId" validate:"required"`
	ProductID       int64   `json:"productId" validate:"required,gt=0"`
	Quantity        int     `json:"quantity" validate:"required,gt=0"`
	TotalAmount     float64 `json:"totalAmount" validate:"gte=0"`
	PaymentMethod   string  `json:"paymentMethod"`
	ShippingAddress string  `json:"shippingAddress"`
	ClientOrderKey  string  `json:"clientOrderKey"`
	// Accepted for wire compatibility with the storefront payload, but the
	// server forces both to PENDING.
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

// OrderHandler exposes the order store HTTP surface.
type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.handleCreateOrder)
		r.Get("/", h.handleGetAllOrders)
		r.Get("/{id}", h.handleGetOrderByID)
		r.Get("/user/{userId}", h.handleGetOrdersByUser)
		r.Get("/status/{status}", h.handleGetOrdersByStatus)
		r.Put("/{id}/status", h.handleUpdateStatus)
		r.Put("/{id}/payment-status", h.handleUpdatePaymentStatus)
		r.Put("/{id}/cancel", h.handleCancelOrder)
		r.Delete("/{id}", h.handleDeleteOrder)
		r.Post("/{id}/pay", h.handlePayOrder)
	})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode create order request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	o := &order.Order{
		UserID:          req.UserID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		TotalAmount:     req.TotalAmount,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	}
	if req.ClientOrderKey != "" {
		o.ClientOrderKey = &req.ClientOrderKey
	}

	created, err := h.service.CreateOrder(r.Context(), o)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create order via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleGetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetAllOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	o, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, err, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleGetOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}

	orders, err := h.service.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list user orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list user orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := order.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	orders, err := h.service.GetOrdersByStatus(r.Context(), status)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders by status via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders by status")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

// handleUpdateStatus accepts {"status": "SHIPPED"}. The value must be one of
// the five known statuses, but any known value is accepted from any prior
// state.
func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	o, err := h.service.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		h.respondOrderError(w, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	o, err := h.service.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		h.respondOrderError(w, err, "Failed to update payment status")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	o, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, err, "Failed to cancel order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		h.respondOrderError(w, err, "Failed to delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handlePayOrder responds with the raw client secret as text/plain; the
// gateway is the layer that wraps it into JSON.
func (h *OrderHandler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	secret, err := h.service.PayOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("Payment failed")
		if errors.Is(err, payment.ErrPaymentDeclined) {
			http.Error(w, "Payment failed: "+err.Error(), http.StatusPaymentRequired)
			return
		}
		http.Error(w, "Payment failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(secret))
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, order.ErrOrderNotFound) {
		respondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	log.Error().Err(err).Msg(fallback)
	respondWithError(w, mapErrorToStatusCode(err), fallback)
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")

	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("order_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

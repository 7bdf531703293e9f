package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrozone/backend/internal/handler"
	"github.com/electrozone/backend/internal/order"
	"github.com/electrozone/backend/internal/payment"
)

type mockOrderService struct {
	createOrderFunc         func(ctx context.Context, o *order.Order) (*order.Order, error)
	getOrderByIDFunc        func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	getAllOrdersFunc        func(ctx context.Context) ([]order.Order, error)
	getOrdersByUserIDFunc   func(ctx context.Context, userID string) ([]order.Order, error)
	getOrdersByStatusFunc   func(ctx context.Context, status order.Status) ([]order.Order, error)
	updateOrderStatusFunc   func(ctx context.Context, id uuid.UUID, status order.Status) (*order.Order, error)
	updatePaymentStatusFunc func(ctx context.Context, id uuid.UUID, paymentStatus string) (*order.Order, error)
	cancelOrderFunc         func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	deleteOrderFunc         func(ctx context.Context, id uuid.UUID) error
	payOrderFunc            func(ctx context.Context, id uuid.UUID) (string, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	return m.createOrderFunc(ctx, o)
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getOrderByIDFunc(ctx, id)
}

func (m *mockOrderService) GetAllOrders(ctx context.Context) ([]order.Order, error) {
	return m.getAllOrdersFunc(ctx)
}

func (m *mockOrderService) GetOrdersByUserID(ctx context.Context, userID string) ([]order.Order, error) {
	return m.getOrdersByUserIDFunc(ctx, userID)
}

func (m *mockOrderService) GetOrdersByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return m.getOrdersByStatusFunc(ctx, status)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status order.Status) (*order.Order, error) {
	return m.updateOrderStatusFunc(ctx, id, status)
}

func (m *mockOrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) (*order.Order, error) {
	return m.updatePaymentStatusFunc(ctx, id, paymentStatus)
}

func (m *mockOrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.cancelOrderFunc(ctx, id)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return m.deleteOrderFunc(ctx, id)
}

func (m *mockOrderService) PayOrder(ctx context.Context, id uuid.UUID) (string, error) {
	return m.payOrderFunc(ctx, id)
}

func newOrderRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	handler.NewOrderHandler(svc).RegisterRoutes(r)
	return r
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createFunc func(ctx context.Context, o *order.Order) (*order.Order, error)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"userId":"u1","productId":7,"quantity":2,"totalAmount":20.00,"paymentMethod":"CARD","shippingAddress":"somewhere"}`,
			createFunc: func(ctx context.Context, o *order.Order) (*order.Order, error) {
				o.ID = uuid.Must(uuid.NewV4())
				o.Status = order.StatusPending
				return o, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid_json",
			body:       `{"userId":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing_user_id",
			body:       `{"productId":7,"quantity":2,"totalAmount":20.00}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero_quantity",
			body:       `{"userId":"u1","productId":7,"quantity":0,"totalAmount":20.00}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{createOrderFunc: tt.createFunc}
			router := newOrderRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				var got order.Order
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, order.StatusPending, got.Status)
				assert.Equal(t, "u1", got.UserID)
			}
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		url        string
		body       string
		wantStatus int
	}{
		{name: "shipped", url: "/api/orders/" + id.String() + "/status", body: `{"status":"SHIPPED"}`, wantStatus: http.StatusOK},
		{name: "unknown_status", url: "/api/orders/" + id.String() + "/status", body: `{"status":"SHIPPING"}`, wantStatus: http.StatusBadRequest},
		{name: "lowercase_rejected", url: "/api/orders/" + id.String() + "/status", body: `{"status":"shipped"}`, wantStatus: http.StatusBadRequest},
		{name: "bad_id", url: "/api/orders/not-a-uuid/status", body: `{"status":"SHIPPED"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				updateOrderStatusFunc: func(ctx context.Context, gotID uuid.UUID, status order.Status) (*order.Order, error) {
					return &order.Order{ID: gotID, Status: status}, nil
				},
			}
			router := newOrderRouter(svc)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestOrderHandler_GetOrdersByStatus_UnknownStatus(t *testing.T) {
	svc := &mockOrderService{
		getOrdersByStatusFunc: func(ctx context.Context, status order.Status) ([]order.Order, error) {
			return nil, nil
		},
	}
	router := newOrderRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/status/REFUNDED", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_PayOrder(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	t.Run("returns_plain_text_secret", func(t *testing.T) {
		svc := &mockOrderService{
			payOrderFunc: func(ctx context.Context, gotID uuid.UUID) (string, error) {
				assert.Equal(t, id, gotID)
				return "pi_123_secret_456", nil
			},
		}
		router := newOrderRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/"+id.String()+"/pay", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Equal(t, "pi_123_secret_456", rec.Body.String())
	})

	t.Run("provider_declined", func(t *testing.T) {
		svc := &mockOrderService{
			payOrderFunc: func(ctx context.Context, gotID uuid.UUID) (string, error) {
				return "", fmt.Errorf("service: payment failed: %w: Your card was declined.", payment.ErrPaymentDeclined)
			},
		}
		router := newOrderRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/"+id.String()+"/pay", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Contains(t, rec.Body.String(), "Payment failed")
	})

	t.Run("order_not_found", func(t *testing.T) {
		svc := &mockOrderService{
			payOrderFunc: func(ctx context.Context, gotID uuid.UUID) (string, error) {
				return "", order.ErrOrderNotFound
			},
		}
		router := newOrderRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/"+id.String()+"/pay", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	svc := &mockOrderService{
		cancelOrderFunc: func(ctx context.Context, gotID uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: gotID, Status: order.StatusCancelled}, nil
		},
	}
	router := newOrderRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+id.String()+"/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, order.StatusCancelled, got.Status)
}

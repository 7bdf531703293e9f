package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrozone/backend/internal/auth"
	"github.com/electrozone/backend/internal/checkout"
	"github.com/electrozone/backend/internal/config"
	"github.com/electrozone/backend/internal/gateway"
)

func newGateway(t *testing.T, services config.ServicesConfig) (*chi.Mux, *auth.Manager) {
	t.Helper()

	tokens := auth.NewManager("test-secret", time.Hour)
	orchestrator := checkout.NewOrchestrator(checkout.NewHTTPOrderClient(services.OrderURL))
	h := gateway.NewHandler(services, orchestrator, tokens)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, tokens
}

func TestGateway_PassthroughKeepsStatusAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"odd upstream answer"}`))
	}))
	defer upstream.Close()

	router, _ := newGateway(t, config.ServicesConfig{OrderURL: upstream.URL})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"error":"odd upstream answer"}`, rec.Body.String())
}

func TestGateway_ForwardsAuthHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	router, _ := newGateway(t, config.ServicesConfig{UserURL: upstream.URL})

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	req.Header.Set("Cookie", "session=abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateway_AuthAliasRewrite(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/login", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer upstream.Close()

	router, _ := newGateway(t, config.ServicesConfig{UserURL: upstream.URL})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateway_PayWrapsSecret(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/o-1/pay", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pi_123_secret_456"))
	}))
	defer upstream.Close()

	router, _ := newGateway(t, config.ServicesConfig{OrderURL: upstream.URL})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/pay", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"clientSecret":"pi_123_secret_456"}`, rec.Body.String())
}

func TestGateway_PayWrapsErrorText(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Order not found", http.StatusNotFound)
	}))
	defer upstream.Close()

	router, _ := newGateway(t, config.ServicesConfig{OrderURL: upstream.URL})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/pay", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rec.Body.String())
}

func TestGateway_StatusUpdateNormalizesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object_form", body: `{"status":"SHIPPED"}`},
		{name: "bare_string_form", body: `"SHIPPED"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				raw, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.JSONEq(t, `{"status":"SHIPPED"}`, string(raw))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"id":"o-1","status":"SHIPPED"}`))
			}))
			defer upstream.Close()

			router, _ := newGateway(t, config.ServicesConfig{OrderURL: upstream.URL})

			req := httptest.NewRequest(http.MethodPut, "/api/orders/o-1/status", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestGateway_StatusUpdateRejectsUnparseableBody(t *testing.T) {
	router, _ := newGateway(t, config.ServicesConfig{OrderURL: "http://localhost:1"})

	req := httptest.NewRequest(http.MethodPut, "/api/orders/o-1/status", bytes.NewBufferString(`{"state":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGateway_DeadUpstreamIs502(t *testing.T) {
	// Port 1 is never listening.
	router, _ := newGateway(t, config.ServicesConfig{OrderURL: "http://127.0.0.1:1"})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "proxy to order-service failed", body["message"])
}

func TestGateway_CheckoutRequiresToken(t *testing.T) {
	router, _ := newGateway(t, config.ServicesConfig{OrderURL: "http://127.0.0.1:1"})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateway_CheckoutHappyPath(t *testing.T) {
	var created int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders":
			created++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "order-1", "status": "PENDING"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders/order-1/pay":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("pi_secret"))
		default:
			t.Fatalf("unexpected upstream call %s %s", r.Method, r.URL.Path)
		}
	}))
	defer upstream.Close()

	router, tokens := newGateway(t, config.ServicesConfig{OrderURL: upstream.URL})

	token, err := tokens.Issue("user-1", "customer")
	require.NoError(t, err)

	body := `{
		"items": [{"productId": 1, "unitPrice": 10.00, "quantity": 2}],
		"shipping": {"fullName":"Alice","email":"alice@example.com","phone":"555-0101","street":"1 Main St","city":"Springfield","state":"IL","zip":"62701","country":"US"},
		"paymentMethod": "card"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, created)

	var result checkout.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, checkout.StateComplete, result.State)
	assert.Equal(t, "pi_secret", result.ClientSecret)
}

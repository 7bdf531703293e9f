package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CreateOrderPayload is the exact wire shape the order store accepts for
// one cart line.
type CreateOrderPayload struct {
	UserID          string  `json:"userId"`
	ProductID       int64   `json:"productId"`
	Quantity        int     `json:"quantity"`
	TotalAmount     float64 `json:"totalAmount"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"paymentStatus"`
	PaymentMethod   string  `json:"paymentMethod"`
	ShippingAddress string  `json:"shippingAddress"`
	ClientOrderKey  string  `json:"clientOrderKey,omitempty"`
}

type CreatedOrder struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	ProductID   int64   `json:"productId"`
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

// OrderAPI is the slice of the order store the checkout flow needs.
type OrderAPI interface {
	CreateOrder(ctx context.Context, payload CreateOrderPayload) (*CreatedOrder, error)
	PayOrder(ctx context.Context, orderID string) (clientSecret string, err error)
}

// APIError carries the upstream status and body text so the caller can
// surface them verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// HTTPOrderClient talks to the order service directly, bypassing the
// gateway's own normalization (it receives the raw text secret from the
// pay endpoint).
type HTTPOrderClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOrderClient(baseURL string) *HTTPOrderClient {
	return &HTTPOrderClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPOrderClient) CreateOrder(ctx context.Context, payload CreateOrderPayload) (*CreatedOrder, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout: create order request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to read create response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(resBody)}
	}

	var created CreatedOrder
	if err := json.Unmarshal(resBody, &created); err != nil {
		return nil, fmt.Errorf("checkout: failed to decode created order: %w", err)
	}

	return &created, nil
}

func (c *HTTPOrderClient) PayOrder(ctx context.Context, orderID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders/"+orderID+"/pay", nil)
	if err != nil {
		return "", fmt.Errorf("checkout: failed to build pay request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout: pay request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("checkout: failed to read pay response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &APIError{StatusCode: res.StatusCode, Body: string(resBody)}
	}

	// The order store answers with the bare secret as text/plain.
	return string(resBody), nil
}

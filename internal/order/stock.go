package order

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPStockClient calls the product service to decrease stock after an
// order is placed.
type HTTPStockClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPStockClient(baseURL string) *HTTPStockClient {
	return &HTTPStockClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPStockClient) DecreaseStock(ctx context.Context, productID int64, quantity int) error {
	url := fmt.Sprintf("%s/api/products/%d/stock/decrease?qty=%d", c.baseURL, productID, quantity)

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return fmt.Errorf("stock: failed to build request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("stock: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("stock: decrease failed for product %d (%d): %s", productID, res.StatusCode, string(body))
	}

	return nil
}

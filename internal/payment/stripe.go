package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/electrozone/backend/internal/config"
	"github.com/electrozone/backend/internal/order"
)

var ErrPaymentDeclined = errors.New("payment provider declined the request")

// StripeClient talks to the Stripe PaymentIntents REST API directly. Only
// the client secret is consumed downstream, so the response is decoded into
// the minimum shape.
type StripeClient struct {
	cfg    config.StripeConfig
	client *http.Client
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	return &StripeClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type intentResponse struct {
	ClientSecret string `json:"client_secret"`
	Error        struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *StripeClient) CreateIntent(ctx context.Context, o *order.Order) (string, error) {
	amountInCents := int64(math.Round(o.TotalAmount * 100))

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountInCents, 10))
	form.Set("currency", c.cfg.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("metadata[order_id]", o.ID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("payment: failed to build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.SecretKey, "")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment: intent request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("payment: failed to read intent response: %w", err)
	}

	var intent intentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return "", fmt.Errorf("payment: failed to decode intent response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if intent.Error.Message != "" {
			return "", fmt.Errorf("%w: %s", ErrPaymentDeclined, intent.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrPaymentDeclined, res.StatusCode)
	}

	if intent.ClientSecret == "" {
		return "", errors.New("payment: intent response missing client secret")
	}

	return intent.ClientSecret, nil
}

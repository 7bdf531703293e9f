package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// State is the observable phase of a checkout attempt.
type State string

const (
	StateCreating State = "CREATING"
	StatePaying   State = "PAYING"
	StateComplete State = "COMPLETE"
	StateFailed   State = "FAILED"
)

const (
	PaymentMethodCard   = "card"
	PaymentMethodPayPal = "paypal"
	PaymentMethodBank   = "bank"
)

type LineItem struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

type ShippingForm struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Zip      string `json:"zip" validate:"required"`
	Country  string `json:"country" validate:"required"`
}

type Request struct {
	Items         []LineItem   `json:"items" validate:"required,min=1,dive"`
	Shipping      ShippingForm `json:"shipping" validate:"required"`
	PaymentMethod string       `json:"paymentMethod" validate:"required,oneof=card paypal bank"`
	AttemptKey    string       `json:"attemptKey,omitempty"`
}

// Result describes the terminal state of one checkout attempt. On failure
// OrderIDs still lists every order created before the failing line; those
// orders are not rolled back.
type Result struct {
	State        State    `json:"state"`
	AttemptKey   string   `json:"attemptKey"`
	OrderIDs     []string `json:"orderIds"`
	FirstOrderID string   `json:"firstOrderId,omitempty"`
	ClientSecret string   `json:"clientSecret,omitempty"`
	FailedAt     int      `json:"failedAt,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

type Orchestrator struct {
	orders OrderAPI
}

func NewOrchestrator(orders OrderAPI) *Orchestrator {
	return &Orchestrator{orders: orders}
}

// Run drives a checkout attempt through CREATING -> PAYING -> COMPLETE.
// One order is created per cart line, in item order. A failure at line k
// stops the loop and leaves the k-1 already created orders in place. For
// card payments the flow requests a payment intent for the first order
// only; other methods complete without a payment step.
func (o *Orchestrator) Run(ctx context.Context, userID string, req Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("checkout: cart is empty")
	}

	attempt := req.AttemptKey
	if attempt == "" {
		key, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("checkout: failed to generate attempt key: %w", err)
		}
		attempt = key.String()
	}

	result := &Result{State: StateCreating, AttemptKey: attempt}
	shippingAddress := formatShippingAddress(req.Shipping)

	for i, item := range req.Items {
		payload := CreateOrderPayload{
			UserID:          userID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			TotalAmount:     round2(item.UnitPrice * float64(item.Quantity)),
			Status:          "PENDING",
			PaymentStatus:   "PENDING",
			PaymentMethod:   strings.ToUpper(req.PaymentMethod),
			ShippingAddress: shippingAddress,
			ClientOrderKey:  fmt.Sprintf("%s:%d", attempt, i),
		}

		created, err := o.orders.CreateOrder(ctx, payload)
		if err != nil {
			result.State = StateFailed
			result.FailedAt = i + 1
			result.Reason = failureReason(err)
			log.Error().Err(err).
				Str("attempt", attempt).
				Int("line", i+1).
				Msg("checkout: order creation failed")
			return result, err
		}

		result.OrderIDs = append(result.OrderIDs, created.ID)
	}
	result.FirstOrderID = result.OrderIDs[0]

	if req.PaymentMethod == PaymentMethodCard {
		result.State = StatePaying

		secret, err := o.orders.PayOrder(ctx, result.OrderIDs[0])
		if err != nil {
			result.State = StateFailed
			result.Reason = failureReason(err)
			log.Error().Err(err).
				Str("attempt", attempt).
				Str("orderId", result.OrderIDs[0]).
				Msg("checkout: payment initiation failed")
			return result, err
		}
		result.ClientSecret = secret
	}

	result.State = StateComplete
	return result, nil
}

// formatShippingAddress flattens the form into the single address line
// the order store persists.
func formatShippingAddress(s ShippingForm) string {
	parts := []string{
		s.FullName,
		s.Street,
		fmt.Sprintf("%s, %s %s", s.City, s.State, s.Zip),
		s.Country,
		"Phone: " + s.Phone,
	}
	return strings.Join(parts, " | ")
}

func failureReason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return err.Error()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

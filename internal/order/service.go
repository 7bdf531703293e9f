package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// PaymentProvider creates a payment intent for an order and returns the
// opaque client secret the frontend hands to the payment widget.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, o *Order) (clientSecret string, err error)
}

// StockClient decreases catalog stock after an order is persisted.
type StockClient interface {
	DecreaseStock(ctx context.Context, productID int64, quantity int) error
}

type Service interface {
	CreateOrder(ctx context.Context, o *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetAllOrders(ctx context.Context) ([]Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]Order, error)
	GetOrdersByStatus(ctx context.Context, status Status) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) (*Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	PayOrder(ctx context.Context, id uuid.UUID) (string, error)
}

type service struct {
	repo     Repository
	payments PaymentProvider
	stock    StockClient
}

func NewService(repo Repository, payments PaymentProvider, stock StockClient) Service {
	return &service{
		repo:     repo,
		payments: payments,
		stock:    stock,
	}
}

// CreateOrder persists one order per cart line. Status and payment status
// are forced to PENDING regardless of what the client sent; totalAmount is
// stored as sent (client-computed, only rounded to cents). When the order
// carries a clientOrderKey and one was already stored under that key, the
// existing record is returned instead of a duplicate.
func (s *service) CreateOrder(ctx context.Context, o *Order) (*Order, error) {
	if o.UserID == "" {
		return nil, errors.New("service: user id is required")
	}
	if o.ProductID <= 0 {
		return nil, errors.New("service: product id is required")
	}
	if o.Quantity <= 0 {
		return nil, fmt.Errorf("service: quantity must be greater than zero, got %d", o.Quantity)
	}
	if o.TotalAmount < 0 {
		return nil, fmt.Errorf("service: total amount cannot be negative, got %f", o.TotalAmount)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}

	o.ID = id
	o.Status = StatusPending
	o.PaymentStatus = string(StatusPending)
	o.TotalAmount = math.Round(o.TotalAmount*100) / 100
	o.OrderDate = time.Now().UTC()

	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicateClientKey) && o.ClientOrderKey != nil {
			existing, getErr := s.repo.GetByClientKey(ctx, *o.ClientOrderKey)
			if getErr != nil {
				return nil, fmt.Errorf("service: failed to fetch existing order for client key: %w", getErr)
			}
			log.Info().Stringer("order_id", existing.ID).Str("client_order_key", *o.ClientOrderKey).Msg("service: returning existing order for duplicate client key")
			return existing, nil
		}
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	// Mirrors the original flow: stock is decreased after the order commit
	// and a failure never fails the order.
	if s.stock != nil {
		if err := s.stock.DecreaseStock(ctx, o.ProductID, o.Quantity); err != nil {
			log.Error().Err(err).Int64("product_id", o.ProductID).Int("quantity", o.Quantity).Msg("service: failed to decrease stock")
		}
	}

	log.Info().Stringer("order_id", o.ID).Str("user_id", o.UserID).Msg("service: order created")

	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) GetAllOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch orders")
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}

	return orders, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) GetOrdersByStatus(ctx context.Context, status Status) ([]Order, error) {
	orders, err := s.repo.GetByStatus(ctx, status)
	if err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("service: failed to fetch orders by status")
		return nil, fmt.Errorf("service: failed to fetch orders by status: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus writes the new status without checking the predecessor
// state: any of the five values may follow any other, including
// DELIVERED -> PENDING. Unknown values never get here; ParseStatus rejects
// them at the handler.
func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Str("new_status", string(status)).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", id).Str("new_status", string(status)).Msg("service: order status updated")

	return s.GetOrderByID(ctx, id)
}

// UpdatePaymentStatus stores a free-form payment status. Nothing ties it to
// the order status or to the outcome of the pay step.
func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) (*Order, error) {
	if err := s.repo.UpdatePaymentStatus(ctx, id, paymentStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to update payment status")
		return nil, fmt.Errorf("service: failed to update payment status: %w", err)
	}

	return s.GetOrderByID(ctx, id)
}

func (s *service) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.UpdateOrderStatus(ctx, id, StatusCancelled)
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to delete order")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}

	return nil
}

// PayOrder creates a payment intent for the stored total and returns the raw
// client secret. The order itself is not touched: paymentStatus stays
// whatever it was, the status stays PENDING.
func (s *service) PayOrder(ctx context.Context, id uuid.UUID) (string, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return "", ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order for payment")
		return "", fmt.Errorf("service: failed to fetch order for payment: %w", err)
	}

	secret, err := s.payments.CreateIntent(ctx, o)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", id).Msg("service: payment intent creation failed")
		return "", fmt.Errorf("service: payment failed: %w", err)
	}

	log.Info().Stringer("order_id", id).Msg("service: payment intent created")

	return secret, nil
}

package order

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

var ErrUnknownStatus = errors.New("unknown order status")

// ParseStatus validates a raw status string against the five known values.
// Any transition between known values is allowed, but unknown strings are
// rejected at the API boundary so they never reach storage.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(raw), nil
	}
	return "", ErrUnknownStatus
}

// Order is a single cart line turned into a record of its own: a cart with
// N items produces N orders. UserID is a weak reference into the user
// service, ProductID into the product service; neither is enforced with a
// foreign key.
type Order struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          string    `json:"userId" db:"user_id"`
	ProductID       int64     `json:"productId" db:"product_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	TotalAmount     float64   `json:"totalAmount" db:"total_amount"`
	Status          Status    `json:"status" db:"status"`
	PaymentStatus   string    `json:"paymentStatus" db:"payment_status"`
	PaymentMethod   string    `json:"paymentMethod" db:"payment_method"`
	ShippingAddress string    `json:"shippingAddress" db:"shipping_address"`
	ClientOrderKey  *string   `json:"clientOrderKey,omitempty" db:"client_order_key"`
	OrderDate       time.Time `json:"orderDate" db:"order_date"`
}

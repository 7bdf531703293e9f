package product

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Specs holds free-form product attributes ({"RAM": "8GB", ...}) stored as
// jsonb.
type Specs map[string]string

func (s Specs) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *Specs) Scan(src any) error {
	if src == nil {
		*s = Specs{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("product: cannot scan %T into Specs", src)
	}

	return json.Unmarshal(raw, s)
}

type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type Product struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Price          float64   `json:"price" db:"price"`
	StockQuantity  int       `json:"stock_quantity" db:"stock_quantity"`
	Brand          string    `json:"brand" db:"brand"`
	CategoryID     int64     `json:"category_id" db:"category_id"`
	Specifications Specs     `json:"specifications" db:"specifications"`
	ImageURL       string    `json:"image_url" db:"image_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

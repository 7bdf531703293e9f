package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryExists    = errors.New("category with this name already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, p *Product) error
	GetProducts(ctx context.Context) ([]Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	SearchProducts(ctx context.Context, term string) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	DecreaseStock(ctx context.Context, id int64, qty int) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const uniqueViolation = "23505"

func (r *postgresRepository) CreateCategory(ctx context.Context, c *Category) error {
	query := `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrCategoryExists
		}
		return fmt.Errorf("repository: failed to insert category: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetCategories(ctx context.Context) ([]Category, error) {
	categories := make([]Category, 0)
	if err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("repository: failed to select categories: %w", err)
	}

	return categories, nil
}

func (r *postgresRepository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("repository: failed to select category %d: %w", id, err)
	}

	return &c, nil
}

func (r *postgresRepository) UpdateCategory(ctx context.Context, c *Category) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $1, description = $2 WHERE id = $3`,
		c.Name, c.Description, c.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update category %d: %w", c.ID, err)
	}

	return requireRows(res, ErrCategoryNotFound)
}

func (r *postgresRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete category %d: %w", id, err)
	}

	return requireRows(res, ErrCategoryNotFound)
}

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (name, description, price, stock_quantity, brand, category_id, specifications, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.StockQuantity, p.Brand, p.CategoryID, p.Specifications, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetProducts(ctx context.Context) ([]Product, error) {
	products := make([]Product, 0)
	if err := r.db.SelectContext(ctx, &products, `SELECT * FROM products ORDER BY id`); err != nil {
		return nil, fmt.Errorf("repository: failed to select products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %d: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) GetProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	products := make([]Product, 0)
	err := r.db.SelectContext(ctx, &products, `SELECT * FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to select products for category %d: %w", categoryID, err)
	}

	return products, nil
}

func (r *postgresRepository) SearchProducts(ctx context.Context, term string) ([]Product, error) {
	products := make([]Product, 0)
	pattern := "%" + term + "%"
	err := r.db.SelectContext(ctx, &products,
		`SELECT * FROM products WHERE name ILIKE $1 OR description ILIKE $1 OR brand ILIKE $1 ORDER BY id`, pattern)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock_quantity = $4, brand = $5,
		    category_id = $6, specifications = $7, image_url = $8, updated_at = NOW()
		WHERE id = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Description, p.Price, p.StockQuantity, p.Brand, p.CategoryID, p.Specifications, p.ImageURL, p.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %d: %w", p.ID, err)
	}

	return requireRows(res, ErrNotFound)
}

func (r *postgresRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %d: %w", id, err)
	}

	return requireRows(res, ErrNotFound)
}

// DecreaseStock refuses to go below zero: the guarded UPDATE only matches
// when enough stock remains, so a miss means either an unknown product or
// insufficient stock.
func (r *postgresRepository) DecreaseStock(ctx context.Context, id int64, qty int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2 AND stock_quantity >= $1`,
		qty, id)
	if err != nil {
		return fmt.Errorf("repository: failed to decrease stock for product %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.GetProductByID(ctx, id); err != nil {
		return err
	}

	return ErrInsufficientStock
}

func requireRows(res sql.Result, missingErr error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return missingErr
	}

	return nil
}

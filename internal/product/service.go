package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProducts(ctx context.Context) ([]Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	SearchProducts(ctx context.Context, term string) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	DecreaseStock(ctx context.Context, id int64, qty int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	if c.Name == "" {
		return nil, errors.New("service: category name is required")
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, ErrCategoryExists) {
			return nil, ErrCategoryExists
		}
		log.Error().Err(err).Msg("service: failed to create category")
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}

	return c, nil
}

func (s *service) GetCategories(ctx context.Context) ([]Category, error) {
	return s.repo.GetCategories(ctx)
}

func (s *service) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategoryByID(ctx, id)
}

func (s *service) UpdateCategory(ctx context.Context, c *Category) (*Category, error) {
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetCategoryByID(ctx, c.ID)
}

func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.Price <= 0 {
		return nil, fmt.Errorf("service: price must be greater than zero, got %f", p.Price)
	}
	if p.StockQuantity < 0 {
		return nil, fmt.Errorf("service: stock quantity cannot be negative, got %d", p.StockQuantity)
	}

	if _, err := s.repo.GetCategoryByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("service: failed to verify category: %w", err)
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	return p, nil
}

func (s *service) GetProducts(ctx context.Context) ([]Product, error) {
	return s.repo.GetProducts(ctx)
}

func (s *service) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) GetProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return s.repo.GetProductsByCategory(ctx, categoryID)
}

func (s *service) SearchProducts(ctx context.Context, term string) ([]Product, error) {
	return s.repo.SearchProducts(ctx, term)
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetProductByID(ctx, p.ID)
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *service) DecreaseStock(ctx context.Context, id int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("service: decrease quantity must be positive, got %d", qty)
	}

	if err := s.repo.DecreaseStock(ctx, id, qty); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) {
			return err
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to decrease stock")
		return fmt.Errorf("service: failed to decrease stock: %w", err)
	}

	return nil
}

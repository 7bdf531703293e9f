package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/electrozone/backend/internal/handler"
	"github.com/electrozone/backend/internal/product"
)

type mockProductService struct {
	createCategoryFunc        func(ctx context.Context, c *product.Category) (*product.Category, error)
	getCategoriesFunc         func(ctx context.Context) ([]product.Category, error)
	getCategoryByIDFunc       func(ctx context.Context, id int64) (*product.Category, error)
	updateCategoryFunc        func(ctx context.Context, c *product.Category) (*product.Category, error)
	deleteCategoryFunc        func(ctx context.Context, id int64) error
	createProductFunc         func(ctx context.Context, p *product.Product) (*product.Product, error)
	getProductsFunc           func(ctx context.Context) ([]product.Product, error)
	getProductByIDFunc        func(ctx context.Context, id int64) (*product.Product, error)
	getProductsByCategoryFunc func(ctx context.Context, categoryID int64) ([]product.Product, error)
	searchProductsFunc        func(ctx context.Context, term string) ([]product.Product, error)
	updateProductFunc         func(ctx context.Context, p *product.Product) (*product.Product, error)
	deleteProductFunc         func(ctx context.Context, id int64) error
	decreaseStockFunc         func(ctx context.Context, id int64, qty int) error
}

func (m *mockProductService) CreateCategory(ctx context.Context, c *product.Category) (*product.Category, error) {
	return m.createCategoryFunc(ctx, c)
}

func (m *mockProductService) GetCategories(ctx context.Context) ([]product.Category, error) {
	return m.getCategoriesFunc(ctx)
}

func (m *mockProductService) GetCategoryByID(ctx context.Context, id int64) (*product.Category, error) {
	return m.getCategoryByIDFunc(ctx, id)
}

func (m *mockProductService) UpdateCategory(ctx context.Context, c *product.Category) (*product.Category, error) {
	return m.updateCategoryFunc(ctx, c)
}

func (m *mockProductService) DeleteCategory(ctx context.Context, id int64) error {
	return m.deleteCategoryFunc(ctx, id)
}

func (m *mockProductService) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	return m.createProductFunc(ctx, p)
}

func (m *mockProductService) GetProducts(ctx context.Context) ([]product.Product, error) {
	return m.getProductsFunc(ctx)
}

func (m *mockProductService) GetProductByID(ctx context.Context, id int64) (*product.Product, error) {
	return m.getProductByIDFunc(ctx, id)
}

func (m *mockProductService) GetProductsByCategory(ctx context.Context, categoryID int64) ([]product.Product, error) {
	return m.getProductsByCategoryFunc(ctx, categoryID)
}

func (m *mockProductService) SearchProducts(ctx context.Context, term string) ([]product.Product, error) {
	return m.searchProductsFunc(ctx, term)
}

func (m *mockProductService) UpdateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	return m.updateProductFunc(ctx, p)
}

func (m *mockProductService) DeleteProduct(ctx context.Context, id int64) error {
	return m.deleteProductFunc(ctx, id)
}

func (m *mockProductService) DecreaseStock(ctx context.Context, id int64, qty int) error {
	return m.decreaseStockFunc(ctx, id, qty)
}

func newProductRouter(svc product.Service) *chi.Mux {
	r := chi.NewRouter()
	handler.NewProductHandler(svc).RegisterRoutes(r)
	return r
}

func TestProductHandler_GetProductByID(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{name: "numeric_id", url: "/api/products/7", wantStatus: http.StatusOK},
		{name: "non_numeric_id", url: "/api/products/abc", wantStatus: http.StatusBadRequest},
		{name: "unknown_id", url: "/api/products/99", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockProductService{
				getProductByIDFunc: func(ctx context.Context, id int64) (*product.Product, error) {
					if id == 99 {
						return nil, product.ErrNotFound
					}
					return &product.Product{ID: id, Name: "Phone", Price: 499.99}, nil
				},
			}
			router := newProductRouter(svc)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestProductHandler_GetCategoryByID_BadID(t *testing.T) {
	svc := &mockProductService{
		getCategoryByIDFunc: func(ctx context.Context, id int64) (*product.Category, error) {
			t.Fatal("service must not be called for a malformed id")
			return nil, nil
		},
	}
	router := newProductRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/categories/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandler_DecreaseStock(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		repoErr    error
		wantStatus int
	}{
		{name: "decreased", url: "/api/products/7/stock/decrease?qty=2", wantStatus: http.StatusOK},
		{name: "bad_id", url: "/api/products/abc/stock/decrease?qty=2", wantStatus: http.StatusBadRequest},
		{name: "missing_qty", url: "/api/products/7/stock/decrease", wantStatus: http.StatusBadRequest},
		{name: "insufficient", url: "/api/products/7/stock/decrease?qty=100", repoErr: product.ErrInsufficientStock, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockProductService{
				decreaseStockFunc: func(ctx context.Context, id int64, qty int) error {
					return tt.repoErr
				},
			}
			router := newProductRouter(svc)

			req := httptest.NewRequest(http.MethodPatch, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

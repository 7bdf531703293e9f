package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/electrozone/backend/internal/product"
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type ProductRequest struct {
	Name           string            `json:"name" validate:"required,max=255"`
	Description    string            `json:"description"`
	Price          float64           `json:"price" validate:"required,gt=0"`
	StockQuantity  int               `json:"stock_quantity" validate:"gte=0"`
	Brand          string            `json:"brand" validate:"max=100"`
	CategoryID     int64             `json:"category_id" validate:"required,gt=0"`
	Specifications map[string]string `json:"specifications"`
	ImageURL       string            `json:"image_url" validate:"max=500"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/categories", func(r chi.Router) {
		r.Post("/", h.handleCreateCategory)
		r.Get("/", h.handleGetCategories)
		r.Get("/{id}", h.handleGetCategoryByID)
		r.Put("/{id}", h.handleUpdateCategory)
		r.Delete("/{id}", h.handleDeleteCategory)
	})

	router.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.handleCreateProduct)
		r.Get("/", h.handleGetProducts)
		r.Get("/search", h.handleSearchProducts)
		r.Get("/{id}", h.handleGetProductByID)
		r.Get("/category/{id}", h.handleGetProductsByCategory)
		r.Put("/{id}", h.handleUpdateProduct)
		r.Delete("/{id}", h.handleDeleteProduct)
		r.Patch("/{id}/stock/decrease", h.handleDecreaseStock)
	})
}

func (h *ProductHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c, err := h.service.CreateCategory(r.Context(), &product.Category{Name: req.Name, Description: req.Description})
	if err != nil {
		if errors.Is(err, product.ErrCategoryExists) {
			respondWithError(w, http.StatusConflict, "Category already exists")
			return
		}
		log.Error().Err(err).Msg("Failed to create category via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create category")
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

func (h *ProductHandler) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCategories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list categories")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) handleGetCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetCategoryByID(r.Context(), id)
	if err != nil {
		h.respondProductError(w, err, "Failed to get category")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *ProductHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c, err := h.service.UpdateCategory(r.Context(), &product.Category{ID: id, Name: req.Name, Description: req.Description})
	if err != nil {
		h.respondProductError(w, err, "Failed to update category")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *ProductHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.respondProductError(w, err, "Failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p, err := h.service.CreateProduct(r.Context(), productFromRequest(0, req))
	if err != nil {
		if errors.Is(err, product.ErrCategoryNotFound) {
			respondWithError(w, http.StatusBadRequest, "Category does not exist")
			return
		}
		log.Error().Err(err).Msg("Failed to create product via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetProducts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	products, err := h.service.SearchProducts(r.Context(), term)
	if err != nil {
		log.Error().Err(err).Msg("Failed to search products via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to search products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.respondProductError(w, err, "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleGetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	products, err := h.service.GetProductsByCategory(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products by category via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list products by category")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p, err := h.service.UpdateProduct(r.Context(), productFromRequest(id, req))
	if err != nil {
		h.respondProductError(w, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.respondProductError(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) handleDecreaseStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNumericID(w, r)
	if !ok {
		return
	}

	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil || qty <= 0 {
		respondWithError(w, http.StatusBadRequest, "Query parameter qty must be a positive integer")
		return
	}

	if err := h.service.DecreaseStock(r.Context(), id, qty); err != nil {
		if errors.Is(err, product.ErrInsufficientStock) {
			respondWithError(w, http.StatusConflict, "Insufficient stock")
			return
		}
		h.respondProductError(w, err, "Failed to decrease stock")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Stock decreased"})
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, product.ErrCategoryNotFound):
		respondWithError(w, http.StatusNotFound, "Category not found")
	default:
		log.Error().Err(err).Msg(fallback)
		respondWithError(w, mapErrorToStatusCode(err), fallback)
	}
}

func parseNumericID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		log.Warn().Err(err).Str("id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}

	return id, true
}

func productFromRequest(id int64, req ProductRequest) *product.Product {
	return &product.Product{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		StockQuantity:  req.StockQuantity,
		Brand:          req.Brand,
		CategoryID:     req.CategoryID,
		Specifications: req.Specifications,
		ImageURL:       req.ImageURL,
	}
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		respondWithValidationErrors(w, err)
		return false
	}

	return true
}

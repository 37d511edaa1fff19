package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/entity"
	"storefront/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new instance of ProductHandler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProducts lists active products --> GET /api/products
func (h *ProductHandler) GetProducts(c echo.Context) error {
	products, err := h.productService.GetProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return list(c, products)
}

// GetProduct --> GET /api/products/:id
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productService.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "", product)
}

// CreateProduct --> POST /api/products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	in := entity.ProductInput{}
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), &in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusCreated, "Product created successfully", product)
}

// UpdateProduct --> PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	in := entity.ProductInput{}
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), c.Param("id"), &in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct --> DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.productService.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "Product deleted successfully", nil)
}

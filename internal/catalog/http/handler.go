package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"product-catalog/internal/catalog"

	"github.com/gin-gonic/gin"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id int64, input catalog.ProductInput) error
	DeleteProduct(ctx context.Context, id int64) error
}

type Handler struct {
	service ProductService
}

func NewHandler(svc ProductService) *Handler {
	return &Handler{service: svc}
}

// Every response carries the same envelope: a success flag plus data,
// count, message or error depending on the operation.
type listResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    []catalog.Product `json:"data"`
	Count   int               `json:"count" example:"3"`
}

type productResponse struct {
	Success bool            `json:"success" example:"true"`
	Data    catalog.Product `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Product updated successfully"`
}

type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Product not found"`
}

// ListProducts godoc
// @Summary      List all products, newest first
// @Tags         products
// @Produce      json
// @Success      200  {object}  listResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	items, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse{Success: true, Data: items, Count: len(items)})
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  productResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, productResponse{Success: true, Data: product})
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      catalog.ProductInput  true  "Product fields"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var input catalog.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, productResponse{Success: true, Data: product})
}

// UpdateProduct godoc
// @Summary      Replace all mutable fields of a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      int                   true  "Product ID"
// @Param        body  body      catalog.ProductInput  true  "Product fields"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var input catalog.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.UpdateProduct(c.Request.Context(), id, input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Product updated successfully"})
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Product deleted successfully"})
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid product id"})
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto the envelope: validation sentinels
// become 400s with their own message, missing ids become 404s, anything
// else is a generic 500 so storage details never leak to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case catalog.IsValidationError(err):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Product not found"})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Database error"})
	}
}

package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"inventory-service/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPage      = 1
	defaultPageSize  = 10
	maxPageSize      = 100
	defaultThreshold = inventory.DefaultLowStockLimit
)

// Validation errors name fields by their JSON key rather than the Go field.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

type InventoryService interface {
	ListProducts(ctx context.Context, page, pageSize int) ([]inventory.Product, int)
	SearchProducts(ctx context.Context, query string) []inventory.Product
	GetProduct(ctx context.Context, id string) (inventory.Product, bool)
	LowStockProducts(ctx context.Context, threshold int) []inventory.Product
	CreateProduct(ctx context.Context, in inventory.NewProduct) (inventory.Product, error)
	UpdateProduct(ctx context.Context, id string, upd inventory.ProductUpdate) (inventory.Product, bool, error)
	UpdateInventory(ctx context.Context, id string, quantity int) (inventory.Product, bool, error)
}

type Handler struct {
	service InventoryService
	logger  *slog.Logger
}

func NewHandler(svc InventoryService, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

type createProductRequest struct {
	Name        string             `json:"name" binding:"required,min=1,max=200" example:"Gaming Laptop"`
	Description *string            `json:"description" binding:"required,max=1000" example:"High-performance gaming laptop"`
	Price       float64            `json:"price" binding:"required,gt=0" example:"1899.99"`
	Quantity    *int               `json:"quantity" binding:"required,gte=0" example:"15"`
	Category    inventory.Category `json:"category" binding:"required,oneof=electronics clothing books home_garden sports other" example:"electronics"`
	SKU         *string            `json:"sku" binding:"omitempty,max=50" example:"LAPTOP-GAMING-001"`
	ImageURL    *string            `json:"image_url" example:"https://example.com/images/gaming-laptop.jpg"`
}

type updateProductRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string             `json:"description" binding:"omitempty,max=1000"`
	Price       *float64            `json:"price" binding:"omitempty,gt=0"`
	Quantity    *int                `json:"quantity" binding:"omitempty,gte=0"`
	Category    *inventory.Category `json:"category" binding:"omitempty,oneof=electronics clothing books home_garden sports other"`
	SKU         *string             `json:"sku" binding:"omitempty,max=50"`
	ImageURL    *string             `json:"image_url"`
}

type inventoryUpdateRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0" example:"42"`
}

type productResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    inventory.Product `json:"data"`
	Message string            `json:"message" example:"Product retrieved successfully"`
}

type productListResponse struct {
	Success  bool                `json:"success" example:"true"`
	Data     []inventory.Product `json:"data"`
	Total    int                 `json:"total" example:"5"`
	Page     int                 `json:"page" example:"1"`
	PageSize int                 `json:"page_size" example:"10"`
	Message  string              `json:"message" example:"Retrieved 5 products"`
}

type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"product not found"`
}

// ListProducts godoc
// @Summary      List or search products
// @Tags         inventory
// @Produce      json
// @Param        search     query     string  false  "Match against name or description"
// @Param        page       query     int     false  "Page number"     default(1)
// @Param        page_size  query     int     false  "Items per page"  default(10)
// @Success      200        {object}  productListResponse
// @Failure      422        {object}  errorResponse
// @Router       /api/inventory/ [get]
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if search := c.Query("search"); search != "" {
		items := h.service.SearchProducts(ctx, search)
		c.JSON(http.StatusOK, productListResponse{
			Success:  true,
			Data:     items,
			Total:    len(items),
			Page:     1,
			PageSize: len(items),
			Message:  fmt.Sprintf("Found %d products matching '%s'", len(items), search),
		})
		return
	}

	page, ok := queryInt(c, "page", defaultPage, 1, 0)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", defaultPageSize, 1, maxPageSize)
	if !ok {
		return
	}

	items, total := h.service.ListProducts(ctx, page, pageSize)
	c.JSON(http.StatusOK, productListResponse{
		Success:  true,
		Data:     items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Message:  fmt.Sprintf("Retrieved %d products", len(items)),
	})
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         inventory
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/inventory/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	product, ok := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if !ok {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, productResponse{Success: true, Data: product, Message: "Product retrieved successfully"})
}

// CreateProduct godoc
// @Summary      Create a new product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      createProductRequest  true  "Product data"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/inventory/ [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), inventory.NewProduct{
		Name:        req.Name,
		Description: *req.Description,
		Price:       req.Price,
		Quantity:    *req.Quantity,
		Category:    req.Category,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.fail(c, err, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, productResponse{Success: true, Data: product, Message: "Product created successfully"})
}

// UpdateProduct godoc
// @Summary      Partially update a product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Product ID"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/inventory/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if !h.bind(c, &req) {
		return
	}

	product, ok, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), inventory.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Category:    req.Category,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.fail(c, err, "failed to update product")
		return
	}
	if !ok {
		notFound(c)
		return
	}

	c.JSON(http.StatusOK, productResponse{Success: true, Data: product, Message: "Product updated successfully"})
}

// UpdateInventory godoc
// @Summary      Set the stock quantity of a product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Product ID"
// @Param        body  body      inventoryUpdateRequest  true  "New quantity"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/inventory/{id}/inventory [put]
func (h *Handler) UpdateInventory(c *gin.Context) {
	var req inventoryUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	product, ok, err := h.service.UpdateInventory(c.Request.Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		h.fail(c, err, "failed to update inventory")
		return
	}
	if !ok {
		notFound(c)
		return
	}

	c.JSON(http.StatusOK, productResponse{Success: true, Data: product, Message: "Inventory updated successfully"})
}

// LowStockProducts godoc
// @Summary      List products at or below a stock threshold
// @Tags         inventory
// @Produce      json
// @Param        threshold  query     int  false  "Low stock threshold"  default(10)
// @Success      200        {object}  productListResponse
// @Failure      422        {object}  errorResponse
// @Router       /api/inventory/alerts/low-stock [get]
func (h *Handler) LowStockProducts(c *gin.Context) {
	threshold, ok := queryInt(c, "threshold", defaultThreshold, 0, 0)
	if !ok {
		return
	}

	items := h.service.LowStockProducts(c.Request.Context(), threshold)
	c.JSON(http.StatusOK, productListResponse{
		Success:  true,
		Data:     items,
		Total:    len(items),
		Page:     1,
		PageSize: len(items),
		Message:  fmt.Sprintf("Found %d products with stock <= %d", len(items), threshold),
	})
}

// bind decodes the JSON body into req. Malformed bodies are rejected with 400
// and failed field rules with 422.
func (h *Handler) bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: validationMessage(verrs)})
		return false
	}
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	return false
}

// validationMessage lists every rejected field as "field (rule)".
func validationMessage(verrs validator.ValidationErrors) string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), rule))
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, inventory.ErrInvalidQuantity) || errors.Is(err, inventory.ErrInvalidPrice) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	h.logger.ErrorContext(c.Request.Context(), msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, errorResponse{Error: "product not found"})
}

// queryInt reads an integer query parameter bounded below by lo and, when hi
// is positive, above by hi. Out of range values are answered with 422.
func queryInt(c *gin.Context, name string, fallback, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < lo || (hi > 0 && value > hi) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: fmt.Sprintf("invalid query parameter %q", name)})
		return 0, false
	}
	return value, true
}

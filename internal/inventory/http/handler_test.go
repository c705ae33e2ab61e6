package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"inventory-service/internal/inventory"

	"github.com/gin-gonic/gin"
)

type stubService struct {
	listFn     func(ctx context.Context, page, pageSize int) ([]inventory.Product, int)
	searchFn   func(ctx context.Context, query string) []inventory.Product
	getFn      func(ctx context.Context, id string) (inventory.Product, bool)
	lowStockFn func(ctx context.Context, threshold int) []inventory.Product
	createFn   func(ctx context.Context, in inventory.NewProduct) (inventory.Product, error)
	updateFn   func(ctx context.Context, id string, upd inventory.ProductUpdate) (inventory.Product, bool, error)
	quantityFn func(ctx context.Context, id string, quantity int) (inventory.Product, bool, error)
}

func (s *stubService) ListProducts(ctx context.Context, page, pageSize int) ([]inventory.Product, int) {
	return s.listFn(ctx, page, pageSize)
}
func (s *stubService) SearchProducts(ctx context.Context, query string) []inventory.Product {
	return s.searchFn(ctx, query)
}
func (s *stubService) GetProduct(ctx context.Context, id string) (inventory.Product, bool) {
	return s.getFn(ctx, id)
}
func (s *stubService) LowStockProducts(ctx context.Context, threshold int) []inventory.Product {
	return s.lowStockFn(ctx, threshold)
}
func (s *stubService) CreateProduct(ctx context.Context, in inventory.NewProduct) (inventory.Product, error) {
	return s.createFn(ctx, in)
}
func (s *stubService) UpdateProduct(ctx context.Context, id string, upd inventory.ProductUpdate) (inventory.Product, bool, error) {
	return s.updateFn(ctx, id, upd)
}
func (s *stubService) UpdateInventory(ctx context.Context, id string, quantity int) (inventory.Product, bool, error) {
	return s.quantityFn(ctx, id, quantity)
}

type stubChecker struct{ err error }

func (c stubChecker) Health() error { return c.err }

func setupRouter(svc InventoryService) *gin.Engine {
	return setupRouterWithChecker(svc, stubChecker{})
}

func setupRouterWithChecker(svc InventoryService, checker HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	RegisterRoutes(r, NewHandler(svc, logger), checker)
	return r
}

func doRequest(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateProduct(t *testing.T) {
	valid := `{"name":"Laptop","description":"fast","price":999.5,"quantity":3,"category":"electronics","sku":"LP-1"}`

	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{
			name:       "success",
			body:       valid,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero quantity and empty description are accepted",
			body:       `{"name":"Mug","description":"","price":5,"quantity":0,"category":"home_garden"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong field type",
			body:       `{"name":"Laptop","description":"d","price":"cheap","quantity":1,"category":"books"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fields",
			body:       `{}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing quantity",
			body:       `{"name":"Laptop","description":"d","price":1,"category":"books"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "negative quantity",
			body:       `{"name":"Laptop","description":"d","price":1,"quantity":-1,"category":"books"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "zero price",
			body:       `{"name":"Laptop","description":"d","price":0,"quantity":1,"category":"books"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown category",
			body:       `{"name":"Laptop","description":"d","price":1,"quantity":1,"category":"toys"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "service validation error",
			body:       valid,
			svcErr:     inventory.ErrInvalidPrice,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "service failure",
			body:       valid,
			svcErr:     errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got inventory.NewProduct
			svc := &stubService{
				createFn: func(_ context.Context, in inventory.NewProduct) (inventory.Product, error) {
					got = in
					if tt.svcErr != nil {
						return inventory.Product{}, tt.svcErr
					}
					return inventory.Product{ID: "new-id", Name: in.Name, Quantity: in.Quantity}, nil
				},
			}

			w := doRequest(setupRouter(svc), http.MethodPost, "/api/inventory/", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Code != http.StatusCreated {
				return
			}

			var resp productResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if !resp.Success || resp.Data.ID != "new-id" || resp.Message != "Product created successfully" {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if got.Name == "" || got.Category == "" {
				t.Fatalf("service received incomplete input: %+v", got)
			}
		})
	}
}

func TestHandler_ValidationErrorsUseJSONNames(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		method  string
		body    string
		wantErr string
	}{
		{
			name:    "create with bad price and quantity",
			method:  http.MethodPost,
			url:     "/api/inventory/",
			body:    `{"name":"Laptop","description":"d","price":-1,"quantity":-2,"category":"books","image_url":null}`,
			wantErr: "validation failed: price (gt=0), quantity (gte=0)",
		},
		{
			name:    "update with long sku",
			method:  http.MethodPut,
			url:     "/api/inventory/p1",
			body:    `{"sku":"` + strings.Repeat("x", 51) + `"}`,
			wantErr: "validation failed: sku (max=50)",
		},
		{
			name:    "inventory without quantity",
			method:  http.MethodPut,
			url:     "/api/inventory/p1/inventory",
			body:    `{}`,
			wantErr: "validation failed: quantity (required)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(setupRouter(&stubService{}), tt.method, tt.url, tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("want 422, got %d, body: %s", w.Code, w.Body.String())
			}

			var resp errorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error != tt.wantErr {
				t.Fatalf("want error %q, got %q", tt.wantErr, resp.Error)
			}
		})
	}
}

func TestHandler_CreateProductHidesInternalErrors(t *testing.T) {
	svc := &stubService{
		createFn: func(context.Context, inventory.NewProduct) (inventory.Product, error) {
			return inventory.Product{}, errors.New("pq: connection refused")
		},
	}

	w := doRequest(setupRouter(svc), http.MethodPost, "/api/inventory/",
		`{"name":"Laptop","description":"d","price":1,"quantity":1,"category":"books"}`)

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Error != "failed to create product" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}

func TestHandler_GetProduct(t *testing.T) {
	svc := &stubService{
		getFn: func(_ context.Context, id string) (inventory.Product, bool) {
			if id == "product-001" {
				return inventory.Product{ID: id, Name: "Gaming Laptop"}, true
			}
			return inventory.Product{}, false
		},
	}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/inventory/product-001", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var resp productResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Name != "Gaming Laptop" {
		t.Fatalf("unexpected product: %+v", resp.Data)
	}

	w = doRequest(r, http.MethodGet, "/api/inventory/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestHandler_UpdateProduct(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		found      bool
		svcErr     error
		wantStatus int
	}{
		{
			name:       "partial update",
			body:       `{"price":12.5}`,
			found:      true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty update",
			body:       `{}`,
			found:      true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "not found",
			body:       `{"name":"New"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "empty name",
			body:       `{"name":""}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "negative quantity",
			body:       `{"quantity":-4}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "sku too long",
			body:       `{"sku":"` + string(bytes.Repeat([]byte("x"), 51)) + `"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "service failure",
			body:       `{"name":"New"}`,
			svcErr:     errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				updateFn: func(_ context.Context, id string, upd inventory.ProductUpdate) (inventory.Product, bool, error) {
					if tt.svcErr != nil {
						return inventory.Product{}, false, tt.svcErr
					}
					if !tt.found {
						return inventory.Product{}, false, nil
					}
					p := inventory.Product{ID: id, Name: "Old", Price: 1}
					upd.Apply(&p)
					return p, true, nil
				},
			}

			w := doRequest(setupRouter(svc), http.MethodPut, "/api/inventory/p1", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandler_UpdateInventory(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		found      bool
		wantStatus int
		wantQty    int
	}{
		{
			name:       "set quantity",
			body:       `{"quantity":7}`,
			found:      true,
			wantStatus: http.StatusOK,
			wantQty:    7,
		},
		{
			name:       "zero quantity",
			body:       `{"quantity":0}`,
			found:      true,
			wantStatus: http.StatusOK,
			wantQty:    0,
		},
		{
			name:       "missing quantity",
			body:       `{}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "negative quantity",
			body:       `{"quantity":-1}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "not found",
			body:       `{"quantity":1}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				quantityFn: func(_ context.Context, id string, quantity int) (inventory.Product, bool, error) {
					if !tt.found {
						return inventory.Product{}, false, nil
					}
					return inventory.Product{ID: id, Quantity: quantity}, true, nil
				},
			}

			w := doRequest(setupRouter(svc), http.MethodPut, "/api/inventory/p1/inventory", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}
			var resp productResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Data.Quantity != tt.wantQty || resp.Message != "Inventory updated successfully" {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestHandler_ListProducts(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantStatus   int
		wantPage     int
		wantPageSize int
	}{
		{
			name:         "defaults",
			url:          "/api/inventory/",
			wantStatus:   http.StatusOK,
			wantPage:     1,
			wantPageSize: 10,
		},
		{
			name:         "explicit page",
			url:          "/api/inventory/?page=2&page_size=2",
			wantStatus:   http.StatusOK,
			wantPage:     2,
			wantPageSize: 2,
		},
		{
			name:         "huge page is passed through",
			url:          "/api/inventory/?page=4611686018427387905&page_size=2",
			wantStatus:   http.StatusOK,
			wantPage:     1<<62 + 1,
			wantPageSize: 2,
		},
		{
			name:       "page below one",
			url:        "/api/inventory/?page=0",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "page size too large",
			url:        "/api/inventory/?page_size=101",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "page not a number",
			url:        "/api/inventory/?page=abc",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPage, gotSize int
			svc := &stubService{
				listFn: func(_ context.Context, page, pageSize int) ([]inventory.Product, int) {
					gotPage, gotSize = page, pageSize
					return []inventory.Product{{ID: "a"}, {ID: "b"}}, 5
				},
			}

			w := doRequest(setupRouter(svc), http.MethodGet, tt.url, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}
			if gotPage != tt.wantPage || gotSize != tt.wantPageSize {
				t.Fatalf("want page %d/%d, got %d/%d", tt.wantPage, tt.wantPageSize, gotPage, gotSize)
			}

			var resp productListResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Total != 5 || len(resp.Data) != 2 || resp.Page != tt.wantPage || resp.PageSize != tt.wantPageSize {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestHandler_SearchProducts(t *testing.T) {
	var gotQuery string
	svc := &stubService{
		searchFn: func(_ context.Context, query string) []inventory.Product {
			gotQuery = query
			return []inventory.Product{{ID: "product-002", Name: "Wireless Mouse"}}
		},
		listFn: func(context.Context, int, int) ([]inventory.Product, int) {
			t.Fatal("list must not be called when searching")
			return nil, 0
		},
	}

	w := doRequest(setupRouter(svc), http.MethodGet, "/api/inventory/?search=mouse&page=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if gotQuery != "mouse" {
		t.Fatalf("want query %q, got %q", "mouse", gotQuery)
	}

	var resp productListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Page != 1 || resp.PageSize != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Message != "Found 1 products matching 'mouse'" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestHandler_LowStockProducts(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		wantStatus    int
		wantThreshold int
	}{
		{name: "default threshold", url: "/api/inventory/alerts/low-stock", wantStatus: http.StatusOK, wantThreshold: 10},
		{name: "zero threshold", url: "/api/inventory/alerts/low-stock?threshold=0", wantStatus: http.StatusOK, wantThreshold: 0},
		{name: "custom threshold", url: "/api/inventory/alerts/low-stock?threshold=25", wantStatus: http.StatusOK, wantThreshold: 25},
		{name: "negative threshold", url: "/api/inventory/alerts/low-stock?threshold=-1", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := -1
			svc := &stubService{
				lowStockFn: func(_ context.Context, threshold int) []inventory.Product {
					got = threshold
					return []inventory.Product{}
				},
			}

			w := doRequest(setupRouter(svc), http.MethodGet, tt.url, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d", tt.wantStatus, w.Code)
			}
			if w.Code == http.StatusOK && got != tt.wantThreshold {
				t.Fatalf("want threshold %d, got %d", tt.wantThreshold, got)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/healthz", "/health"} {
		w := doRequest(setupRouter(&stubService{}), http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: want 200, got %d", path, w.Code)
		}
	}

	w := doRequest(setupRouterWithChecker(&stubService{}, stubChecker{err: errors.New("db down")}), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := doRequest(r, http.MethodGet, "/ping", "")
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc" {
		t.Fatalf("want propagated request id, got %q", got)
	}
}

func TestRoot(t *testing.T) {
	w := doRequest(setupRouter(&stubService{}), http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["service"] != serviceName || body["version"] != serviceVersion || body["success"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestProcessTimeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ProcessTimeMiddleware())
	r.GET("/json", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/empty", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/json", "/empty"} {
		w := doRequest(r, http.MethodGet, path, "")
		raw := w.Header().Get(processTimeHeader)
		if raw == "" {
			t.Fatalf("%s: missing %s header", path, processTimeHeader)
		}
		if secs, err := strconv.ParseFloat(raw, 64); err != nil || secs < 0 {
			t.Fatalf("%s: invalid process time %q", path, raw)
		}
	}
}

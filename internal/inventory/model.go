package inventory

import (
	"errors"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
)

const (
	TopicProductCreated   = "product-created"
	TopicProductUpdated   = "product-updated"
	TopicInventoryUpdated = "inventory-updated"
	TopicInventoryAlert   = "inventory-alert"
	DefaultEventsExchange = "inventory.events"
	DefaultLowStockLimit  = 10
	stateKeyPrefix        = "product-"
)

// Topics lists every topic the inventory service publishes to.
var Topics = []string{
	TopicProductCreated,
	TopicProductUpdated,
	TopicInventoryUpdated,
	TopicInventoryAlert,
}

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryHomeGarden  Category = "home_garden"
	CategorySports      Category = "sports"
	CategoryOther       Category = "other"
)

type Product struct {
	ID          string    `json:"id" example:"product-001"`
	Name        string    `json:"name" example:"Gaming Laptop"`
	Description string    `json:"description" example:"High-performance gaming laptop"`
	Price       float64   `json:"price" example:"1899.99"`
	Quantity    int       `json:"quantity" example:"15"`
	Category    Category  `json:"category" example:"electronics"`
	SKU         *string   `json:"sku" example:"LAPTOP-GAMING-001"`
	ImageURL    *string   `json:"image_url" example:"https://example.com/images/gaming-laptop.jpg"`
	CreatedAt   time.Time `json:"created_at" example:"2026-02-24T12:00:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2026-02-24T12:00:00Z"`
}

// StateKey is the key a product is persisted under in the state store.
func StateKey(id string) string {
	return stateKeyPrefix + id
}

// NewProduct is the input of a create operation; identity and timestamps are
// assigned by the service.
type NewProduct struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	Category    Category
	SKU         *string
	ImageURL    *string
}

// ProductUpdate carries a partial update. Nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
	Category    *Category
	SKU         *string
	ImageURL    *string
}

// Apply copies every set field of u onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.SKU != nil {
		sku := *u.SKU
		p.SKU = &sku
	}
	if u.ImageURL != nil {
		url := *u.ImageURL
		p.ImageURL = &url
	}
}

func (u ProductUpdate) Validate() error {
	if u.Quantity != nil && *u.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if u.Price != nil && *u.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (n NewProduct) Validate() error {
	if n.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if n.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

type InventoryAlert struct {
	ProductID       string     `json:"product_id"`
	ProductName     string     `json:"product_name"`
	CurrentQuantity int        `json:"current_quantity"`
	StockLevel      StockLevel `json:"stock_level"`
	Threshold       int        `json:"threshold"`
	Timestamp       time.Time  `json:"timestamp"`
}

type InventoryUpdated struct {
	ProductID   string  `json:"product_id"`
	OldQuantity int     `json:"old_quantity"`
	NewQuantity int     `json:"new_quantity"`
	Product     Product `json:"product"`
}

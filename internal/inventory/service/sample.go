package service

import (
	"time"

	"inventory-service/internal/inventory"
)

// SampleProducts returns the demo catalog seeded into an empty service.
func SampleProducts(now time.Time) []inventory.Product {
	now = now.UTC().Truncate(time.Microsecond)
	strPtr := func(s string) *string { return &s }

	products := []inventory.Product{
		{
			ID:          "product-001",
			Name:        "Gaming Laptop",
			Description: "High-performance gaming laptop with RTX 4080",
			Price:       1899.99,
			Quantity:    15,
			Category:    inventory.CategoryElectronics,
			SKU:         strPtr("LAPTOP-GAMING-001"),
			ImageURL:    strPtr("https://example.com/images/gaming-laptop.jpg"),
		},
		{
			ID:          "product-002",
			Name:        "Wireless Mouse",
			Description: "Ergonomic wireless mouse with RGB lighting",
			Price:       29.99,
			Quantity:    50,
			Category:    inventory.CategoryElectronics,
			SKU:         strPtr("MOUSE-WIRELESS-001"),
		},
		{
			ID:          "product-003",
			Name:        "Mechanical Keyboard",
			Description: "Cherry MX Blue mechanical keyboard",
			Price:       79.99,
			Quantity:    25,
			Category:    inventory.CategoryElectronics,
			SKU:         strPtr("KEYBOARD-MECH-001"),
		},
		{
			ID:          "product-004",
			Name:        "Running Shoes",
			Description: "Lightweight running shoes for daily training",
			Price:       129.99,
			Quantity:    8,
			Category:    inventory.CategorySports,
			SKU:         strPtr("SHOES-RUNNING-001"),
		},
		{
			ID:          "product-005",
			Name:        "Coffee Maker",
			Description: "Programmable drip coffee maker",
			Price:       89.99,
			Quantity:    0,
			Category:    inventory.CategoryHomeGarden,
			SKU:         strPtr("COFFEE-MAKER-001"),
		},
	}

	// Distinct creation times keep the seeded order stable across restarts.
	for i := range products {
		ts := now.Add(time.Duration(i) * time.Microsecond)
		products[i].CreatedAt = ts
		products[i].UpdatedAt = ts
	}
	return products
}

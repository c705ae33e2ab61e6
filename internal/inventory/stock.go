package inventory

import "fmt"

type StockLevel string

const (
	OutOfStock StockLevel = "out_of_stock"
	LowStock   StockLevel = "low_stock"
	InStock    StockLevel = "in_stock"
)

// Classify maps a quantity to its stock level. Zero is always out of stock and
// the threshold itself still counts as low stock. Negative arguments are a
// caller bug and panic.
func Classify(quantity, threshold int) StockLevel {
	if quantity < 0 || threshold < 0 {
		panic(fmt.Sprintf("inventory: classify called with quantity=%d threshold=%d", quantity, threshold))
	}

	switch {
	case quantity == 0:
		return OutOfStock
	case quantity <= threshold:
		return LowStock
	default:
		return InStock
	}
}

// NeedsAlert reports whether a product at level should raise an inventory alert.
func (l StockLevel) NeedsAlert() bool {
	return l == OutOfStock || l == LowStock
}

package models

// CartItem is a product snapshot plus the desired quantity.
// Invariants maintained by the cart store: at most one item per product id,
// Quantity >= 1.
type CartItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Stock    int    `json:"stock"`
}

// Subtotal is Price times Quantity for this line.
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CartSnapshot is the persisted form of the cart.
type CartSnapshot struct {
	Items []CartItem `json:"items"`
}

package models

// Product is a catalog entry as served by GET /products.
// Stock is seller-reported availability; it is advisory on the client and
// authoritative only at order-creation time on the server.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// InStock reports whether the add-to-cart action should be offered.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// ProductFilter narrows a catalog listing. Zero values mean "no filter".
type ProductFilter struct {
	Category string
	Search   string
}

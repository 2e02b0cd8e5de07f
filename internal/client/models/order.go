package models

// OrderStatus values are assigned by the server; the client only displays
// them and, in the admin console, requests transitions.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderLine is one position of a placed order as reported by the server.
type OrderLine struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

// Order is remote-owned; the client constructs the creation request and
// otherwise only reads.
type Order struct {
	ID            int64       `json:"id"`
	Status        OrderStatus `json:"status"`
	Total         int64       `json:"total"`
	CustomerName  string      `json:"customerName"`
	CustomerPhone string      `json:"customerPhone"`
	CustomerEmail string      `json:"customerEmail,omitempty"`
	Address       string      `json:"address"`
	Items         []OrderLine `json:"items"`
	CreatedAt     string      `json:"createdAt"`
}

// Pagination mirrors the server's page envelope on list endpoints.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

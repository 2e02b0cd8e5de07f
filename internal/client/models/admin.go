package models

// AdminStats is the dashboard summary returned by GET /admin/stats.
type AdminStats struct {
	TotalOrders   int   `json:"totalOrders"`
	TotalUsers    int   `json:"totalUsers"`
	TotalProducts int   `json:"totalProducts"`
	Revenue       int64 `json:"revenue"`
}

// PopularProduct pairs a product with its sold quantity for the dashboard.
type PopularProduct struct {
	Product
	Sold int `json:"sold"`
}

// Package api defines the interface to the remote storefront API and its
// HTTP implementation. The server owns all persistence and business rules;
// this layer only shapes requests, attaches the bearer token and maps
// response statuses onto the client's error taxonomy.
package api

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// TelegramPayload is the widget-produced authentication blob. The client
// forwards it opaquely; signature verification is entirely a server concern
// and must never be reintroduced here.
type TelegramPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

// TelegramLoginRequest is the body of POST /auth/telegram.
type TelegramLoginRequest struct {
	TelegramPayload
	ReferralCode string `json:"referralCode,omitempty"`
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// AuthResult is the success response of every auth endpoint: the identity
// plus the opaque bearer token issued for it. The two always arrive together.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// OrderLineRequest is the minimal per-item form submitted at checkout.
type OrderLineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the body of POST /orders: customer-supplied fields
// plus the cart snapshot reduced to {productId, quantity} lines.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	Address       string             `json:"address"`
	Items         []OrderLineRequest `json:"items"`
}

// ListParams narrows admin list endpoints. Zero values mean "no filter".
type ListParams struct {
	Page   int
	Status string
	Search string
}

// OrdersPage is a paginated order listing.
type OrdersPage struct {
	Orders     []models.Order     `json:"orders"`
	Pagination *models.Pagination `json:"pagination"`
}

// UsersPage is a paginated user listing.
type UsersPage struct {
	Users      []models.User      `json:"users"`
	Pagination *models.Pagination `json:"pagination"`
}

// StatsResult is the admin dashboard payload.
type StatsResult struct {
	Stats           models.AdminStats       `json:"stats"`
	RecentOrders    []models.Order          `json:"recentOrders"`
	PopularProducts []models.PopularProduct `json:"popularProducts"`
}

// Client is the remote storefront API. Implementations attach the current
// bearer token to every request and report 401 through the registered
// unauthorized hook before returning common.ErrUnauthorized.
type Client interface {
	TelegramLogin(ctx context.Context, req TelegramLoginRequest) (*AuthResult, error)
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	Me(ctx context.Context) (*models.User, error)

	Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	ProductByID(ctx context.Context, id int64) (*models.Product, error)

	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	MyOrders(ctx context.Context) ([]models.Order, error)

	ReferralStats(ctx context.Context) (*models.ReferralStats, error)
	BonusHistory(ctx context.Context) ([]models.BonusTransaction, error)

	AdminStats(ctx context.Context) (*StatsResult, error)
	AdminOrders(ctx context.Context, p ListParams) (*OrdersPage, error)
	AdminUpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	AdminUsers(ctx context.Context, p ListParams) (*UsersPage, error)
	AdminProducts(ctx context.Context) ([]models.Product, error)
	AdminCreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	AdminUpdateProduct(ctx context.Context, id int64, p models.Product) (*models.Product, error)
}

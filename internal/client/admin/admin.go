// Package admin mirrors the remote admin resources: dashboard stats, orders,
// users and products. It is a thin load/mutate layer; all rules live on the
// server, the mirror only keeps the last successfully loaded state.
package admin

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/api"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

type Store struct {
	mu  sync.Mutex
	api api.Client
	log logging.Logger

	stats           *models.AdminStats
	recentOrders    []models.Order
	popularProducts []models.PopularProduct

	orders           []models.Order
	ordersPagination *models.Pagination

	users           []models.User
	usersPagination *models.Pagination

	products []models.Product

	lastErr string
}

func NewStore(client api.Client, log logging.Logger) *Store {
	return &Store{api: client, log: log.With("store", "admin")}
}

func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// LoadStats refreshes the dashboard summary.
func (s *Store) LoadStats(ctx context.Context) error {
	res, err := s.api.AdminStats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.lastErr = ""
	s.stats = &res.Stats
	s.recentOrders = res.RecentOrders
	s.popularProducts = res.PopularProducts
	return nil
}

func (s *Store) Stats() (*models.AdminStats, []models.Order, []models.PopularProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, s.recentOrders, s.popularProducts
}

// LoadOrders refreshes the order listing for the given page/filters.
func (s *Store) LoadOrders(ctx context.Context, p api.ListParams) error {
	res, err := s.api.AdminOrders(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.lastErr = ""
	s.orders = res.Orders
	s.ordersPagination = res.Pagination
	return nil
}

func (s *Store) Orders() ([]models.Order, *models.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out, s.ordersPagination
}

// UpdateOrderStatus requests the transition and, on success, patches the
// local mirror so the listing reflects it without a reload.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if err := s.api.AdminUpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			break
		}
	}
	return nil
}

// LoadUsers refreshes the user listing.
func (s *Store) LoadUsers(ctx context.Context, p api.ListParams) error {
	res, err := s.api.AdminUsers(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.lastErr = ""
	s.users = res.Users
	s.usersPagination = res.Pagination
	return nil
}

func (s *Store) Users() ([]models.User, *models.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, s.usersPagination
}

// LoadProducts refreshes the product listing.
func (s *Store) LoadProducts(ctx context.Context) error {
	res, err := s.api.AdminProducts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.lastErr = ""
	s.products = res
	return nil
}

func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// CreateProduct creates the product remotely and prepends it to the mirror.
func (s *Store) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	created, err := s.api.AdminCreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if created != nil {
		s.products = append([]models.Product{*created}, s.products...)
	}
	return created, nil
}

// UpdateProduct updates the product remotely and replaces it in the mirror.
func (s *Store) UpdateProduct(ctx context.Context, id int64, p models.Product) (*models.Product, error) {
	updated, err := s.api.AdminUpdateProduct(ctx, id, p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if updated != nil {
		for i := range s.products {
			if s.products[i].ID == id {
				s.products[i] = *updated
				break
			}
		}
	}
	return updated, nil
}

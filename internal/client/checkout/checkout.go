// Package checkout turns the current cart into a single order-creation
// request. The cart is cleared only after the server confirms success; a
// failed submission leaves it untouched for an explicit user retry.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/client/api"
	"github.com/dmitrijs2005/shopkeeper/internal/client/cart"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// CustomerInfo is the delivery form. Name, Phone and Address are required;
// Email is optional.
type CustomerInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// Validate reports the first missing required field.
func (c CustomerInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customer name is required", common.ErrValidation)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: phone is required", common.ErrValidation)
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: address is required", common.ErrValidation)
	}
	return nil
}

// Service submits orders built from the cart snapshot.
type Service struct {
	cart *cart.Store
	api  api.Client
	log  logging.Logger
}

func NewService(cartStore *cart.Store, client api.Client, log logging.Logger) *Service {
	return &Service{cart: cartStore, api: client, log: log.With("component", "checkout")}
}

// PlaceOrder validates the form, reduces each cart item to a
// {productId, quantity} line and submits one POST /orders. No partial
// submission, no automatic retry: any failure is returned to the caller and
// the cart stays as it was.
func (s *Service) PlaceOrder(ctx context.Context, info CustomerInfo) (*models.Order, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", common.ErrValidation)
	}

	req := api.CreateOrderRequest{
		CustomerName:  strings.TrimSpace(info.Name),
		CustomerPhone: strings.TrimSpace(info.Phone),
		CustomerEmail: strings.TrimSpace(info.Email),
		Address:       strings.TrimSpace(info.Address),
		Items:         make([]api.OrderLineRequest, 0, len(items)),
	}
	for _, item := range items {
		req.Items = append(req.Items, api.OrderLineRequest{
			ProductID: item.ID,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		s.log.Warn(ctx, "order submission failed", "error", err)
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: empty order in response", common.ErrInternal)
	}

	// only a confirmed success empties the cart
	s.cart.Clear(ctx)
	s.log.Info(ctx, "order placed", "order_id", order.ID, "positions", len(items))
	return order, nil
}

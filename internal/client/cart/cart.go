// Package cart implements the client-held cart: an ordered list of product
// snapshots with quantities, persisted to the durable store after every
// mutation. The cart is advisory; stock is authoritative only at
// order-creation time on the server, so no stock check happens here.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// Store owns the cart items exclusively; callers receive copies and never
// mutate an item in place.
//
// All mutating operations are synchronous and persist the new snapshot
// before returning. Persistence is best-effort: a failed write is logged and
// the in-memory state stays authoritative for the rest of the session.
type Store struct {
	mu    sync.Mutex
	store kv.Store
	log   logging.Logger
	items []models.CartItem
}

// NewStore restores the persisted snapshot and returns a ready cart.
// A corrupt snapshot is discarded: the cart starts empty rather than failing.
func NewStore(ctx context.Context, store kv.Store, log logging.Logger) *Store {
	s := &Store{store: store, log: log.With("store", "cart")}

	data, err := store.Get(ctx, common.KeyCart)
	if err != nil {
		s.log.Warn(ctx, "failed to load cart snapshot", "error", err)
		return s
	}
	if data == nil {
		return s
	}

	var snap models.CartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn(ctx, "discarding corrupt cart snapshot", "error", err)
		return s
	}
	s.items = snap.Items
	return s
}

// AddItem merges quantity into the existing entry for the product id, or
// appends a new entry preserving insertion order. Quantities below one are
// treated as one.
func (s *Store) AddItem(ctx context.Context, p models.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i].Quantity += quantity
			s.persist(ctx)
			return
		}
	}

	s.items = append(s.items, models.CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: quantity,
		Stock:    p.Stock,
	})
	s.persist(ctx)
}

// RemoveItem deletes the entry with the given id. No-op when absent.
func (s *Store) RemoveItem(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, id)
}

// UpdateQuantity sets the quantity exactly (not additive). A quantity of
// zero or less removes the item.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(ctx, id)
		return
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the current item list in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalPrice is the sum of price times quantity over all items.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, item := range s.items {
		total += item.Subtotal()
	}
	return total
}

// TotalItems is the sum of quantities over all items.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) removeLocked(ctx context.Context, id int64) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// persist writes the snapshot under the fixed cart key. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	snap := models.CartSnapshot{Items: s.items}
	if snap.Items == nil {
		snap.Items = []models.CartItem{}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn(ctx, "failed to marshal cart snapshot", "error", err)
		return
	}
	if err := s.store.Set(ctx, common.KeyCart, data); err != nil {
		s.log.Warn(ctx, "failed to persist cart snapshot", "error", err)
	}
}

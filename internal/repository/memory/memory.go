// Package memory implements the storefront stores in process memory. It
// backs STORAGE=memory and the handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/entity"
	"storefront/internal/repository"
)

// Store holds products and orders behind one lock so that placing an order
// and adjusting stock happen together.
type Store struct {
	mu       sync.RWMutex
	products map[string]entity.Product
	orders   []entity.Order
}

func NewStore() *Store {
	return &Store{products: make(map[string]entity.Product)}
}

func (s *Store) GetProductByID(_ context.Context, id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProduct(p), nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []*entity.Product
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := s.products[id]; ok {
			products = append(products, copyProduct(p))
		}
	}
	return products, nil
}

func (s *Store) GetActiveProducts(_ context.Context) ([]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []*entity.Product
	for _, p := range s.products {
		if p.IsActive {
			products = append(products, copyProduct(p))
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID > products[j].ID
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product *entity.Product) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; ok {
		return nil, fmt.Errorf("product %s: %w", product.ID, repository.ErrDuplicateKey)
	}
	s.products[product.ID] = *copyProduct(*product)
	return product, nil
}

func (s *Store) UpdateProduct(_ context.Context, product *entity.Product) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	s.products[product.ID] = *copyProduct(*product)
	return product, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// CreateOrder stores the order and decrements stock for every line. Nothing
// changes if any ordered product is missing.
func (s *Store) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range order.Items {
		if _, ok := s.products[item.ProductID]; !ok {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, repository.ErrNotFound)
		}
	}
	for _, o := range s.orders {
		if o.OrderID == order.OrderID || o.ID == order.ID {
			return nil, fmt.Errorf("order %s: %w", order.OrderID, repository.ErrDuplicateKey)
		}
	}

	for _, item := range order.Items {
		p := s.products[item.ProductID]
		p.Stock -= item.Quantity
		p.UpdatedAt = order.CreatedAt
		s.products[item.ProductID] = p
	}
	s.orders = append(s.orders, *copyOrder(*order))
	return order, nil
}

func (s *Store) GetOrderByOrderID(_ context.Context, orderID string) (*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.OrderID == orderID {
			return copyOrder(o), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetOrdersByCustomerEmail(_ context.Context, email string) ([]*entity.Order, error) {
	return s.newestOrders(func(o entity.Order) bool { return o.CustomerInfo.Email == email }), nil
}

func (s *Store) GetOrders(_ context.Context) ([]*entity.Order, error) {
	return s.newestOrders(func(entity.Order) bool { return true }), nil
}

func (s *Store) newestOrders(match func(entity.Order) bool) []*entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []*entity.Order
	// s.orders is in insertion order; walk it backwards for newest first.
	for i := len(s.orders) - 1; i >= 0; i-- {
		if match(s.orders[i]) {
			orders = append(orders, copyOrder(s.orders[i]))
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func copyProduct(p entity.Product) *entity.Product {
	p.Tags = append([]string{}, p.Tags...)
	return &p
}

func copyOrder(o entity.Order) *entity.Order {
	o.Items = append([]entity.OrderItem{}, o.Items...)
	return &o
}

// CartStorage keeps carts in a map.
type CartStorage struct {
	mu    sync.Mutex
	carts map[string]cart.State
}

func NewCartStorage() *CartStorage {
	return &CartStorage{carts: make(map[string]cart.State)}
}

func (c *CartStorage) Load(_ context.Context, cartID string) (cart.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.carts[cartID]
	return cart.State{Items: append([]cart.Item{}, state.Items...)}, nil
}

func (c *CartStorage) Save(_ context.Context, cartID string, state cart.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.carts[cartID] = cart.State{Items: append([]cart.Item{}, state.Items...)}
	return nil
}

// IdempotencyStore remembers claimed keys for the life of the process.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]struct{})}
}

func (i *IdempotencyStore) Claim(_ context.Context, key string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.keys[key]; ok {
		return false, nil
	}
	i.keys[key] = struct{}{}
	return true, nil
}

func (i *IdempotencyStore) Release(_ context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.keys, key)
	return nil
}

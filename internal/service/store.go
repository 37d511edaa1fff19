package service

import (
	"context"

	"storefront/internal/entity"
)

// ProductStore is the catalog persistence used by the services.
type ProductStore interface {
	GetProductByID(ctx context.Context, id string) (*entity.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	GetActiveProducts(ctx context.Context) ([]*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// OrderStore persists orders. CreateOrder must store the order and apply
// the stock decrements of its items atomically.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrderByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
	GetOrdersByCustomerEmail(ctx context.Context, email string) ([]*entity.Order, error)
	GetOrders(ctx context.Context) ([]*entity.Order, error)
}

// ProductCache is a read-through cache in front of the ProductStore.
// Get returns nil, nil on a miss.
type ProductCache interface {
	Get(ctx context.Context, id string) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product) error
	Invalidate(ctx context.Context, ids ...string) error
}

// IdempotencyStore remembers request keys. Claim reports false when the key
// was already claimed.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, order *entity.Order) error
}

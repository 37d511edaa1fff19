package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/entity"
	"storefront/internal/repository/memory"
)

func seedProduct(t *testing.T, store *memory.Store, name, price string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:          primitive.NewObjectID().Hex(),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Image:       "https://img.example.com/" + name + ".png",
		Description: name + " description",
		Currency:    entity.DefaultCurrency,
		Category:    "kitchen",
		Stock:       stock,
		IsActive:    true,
		Seller: entity.Seller{
			Name:         "Acme",
			Email:        "sales@acme.example.com",
			Phone:        "555-0100",
			Address:      entity.Address{Street: "1 Main St", City: "Springfield", Country: "US"},
			BusinessName: "Acme Inc",
			BusinessType: entity.BusinessTypeCorporation,
		},
		Tags: []string{"new"},
	}
	_, err := store.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return p
}

func testCustomer() *entity.CustomerInfo {
	return &entity.CustomerInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0199",
		Address:   "12 Analytical Row",
		City:      "London",
		State:     "LDN",
		ZipCode:   "N1 9GU",
	}
}

func stockOf(t *testing.T, store *memory.Store, id string) int {
	t.Helper()
	p, err := store.GetProductByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []*entity.Order
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, order *entity.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return p.err
}

type recordingCache struct {
	mu          sync.Mutex
	products    map[string]*entity.Product
	invalidated []string
	getErr      error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{products: make(map[string]*entity.Product)}
}

func (c *recordingCache) Get(_ context.Context, id string) (*entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.products[id], nil
}

func (c *recordingCache) Set(_ context.Context, product *entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.products, id)
	}
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

// failingOrderStore wraps a store and fails CreateOrder.
type failingOrderStore struct {
	OrderStore
	err error
}

func (f failingOrderStore) CreateOrder(context.Context, *entity.Order) (*entity.Order, error) {
	return nil, f.err
}

var errStorage = errors.New("connection reset by peer")

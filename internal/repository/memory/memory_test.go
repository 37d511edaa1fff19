package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

func product(id string, stock int, createdAt time.Time) *entity.Product {
	return &entity.Product{ID: id, Name: id, Price: decimal.NewFromInt(1), Stock: stock, IsActive: true, CreatedAt: createdAt}
}

func TestStore_ProductsAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := product("a", 5, time.Now())
	p.Tags = []string{"x"}
	_, err := s.CreateProduct(ctx, p)
	require.NoError(t, err)

	p.Tags[0] = "mutated"
	got, err := s.GetProductByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)

	_, err = s.CreateProduct(ctx, p)
	require.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestStore_ActiveProductsNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new", "hidden"} {
		p := product(id, 1, base.Add(time.Duration(i)*time.Hour))
		p.IsActive = id != "hidden"
		_, err := s.CreateProduct(ctx, p)
		require.NoError(t, err)
	}

	products, err := s.GetActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "new", products[0].ID)
	assert.Equal(t, "old", products[1].ID)
}

func TestStore_CreateOrderIsAllOrNothing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.CreateProduct(ctx, product("a", 5, time.Now()))
	require.NoError(t, err)

	order := &entity.Order{
		ID:      "o1",
		OrderID: "ORD-1-AAAAAAAAA",
		Items:   []entity.OrderItem{{ProductID: "a", Quantity: 2}, {ProductID: "gone", Quantity: 1}},
	}
	_, err = s.CreateOrder(ctx, order)
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := s.GetProductByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	orders, err := s.GetOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	order.Items = order.Items[:1]
	_, err = s.CreateOrder(ctx, order)
	require.NoError(t, err)
	got, err = s.GetProductByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	_, err = s.CreateOrder(ctx, order)
	require.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestIdempotencyStore(t *testing.T) {
	s := NewIdempotencyStore()
	ctx := context.Background()

	ok, err := s.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Claim(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, s.Release(ctx, "k"))
	ok, _ = s.Claim(ctx, "k")
	assert.True(t, ok)
}

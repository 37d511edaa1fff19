package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
)

func productRow(rows *sqlmock.Rows, id, name, price string) *sqlmock.Rows {
	return rows.AddRow(id, name, price, "https://img.example.com/"+id, "", "USD", "general", 7, true,
		[]byte(sellerJSON), 4.5, 12, []byte(`["new","sale"]`), timestamp(), timestamp())
}

func TestProductRepository_GetProductByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	rows := productRow(sqlmock.NewRows(columns(productColumns)), "665f1c2ab8e4a1d2c3b4a5f6", "Kettle", "30.00")
	mock.ExpectQuery(sqlLike("FROM products WHERE id = ?")).
		WithArgs("665f1c2ab8e4a1d2c3b4a5f6").
		WillReturnRows(rows)

	product, err := repo.GetProductByID(context.Background(), "665f1c2ab8e4a1d2c3b4a5f6")
	require.NoError(t, err)
	assert.Equal(t, "Kettle", product.Name)
	assertDecimal(t, "30.00", product.Price)
	assert.Equal(t, 7, product.Stock)
	assert.True(t, product.IsActive)
	assert.Equal(t, "Acme", product.Seller.Name)
	assert.Equal(t, "US", product.Seller.Address.Country)
	assert.Equal(t, entity.Ratings{Average: 4.5, Count: 12}, product.Ratings)
	assert.Equal(t, []string{"new", "sale"}, product.Tags)
	assert.Equal(t, timestamp(), product.CreatedAt)
}

func TestProductRepository_GetProductByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(sqlLike("FROM products WHERE id = ?")).
		WithArgs("665f1c2ab8e4a1d2c3b4a5f6").
		WillReturnRows(sqlmock.NewRows(columns(productColumns)))

	_, err := repo.GetProductByID(context.Background(), "665f1c2ab8e4a1d2c3b4a5f6")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_GetProductsByIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	rows := productRow(sqlmock.NewRows(columns(productColumns)), "aaaaaaaaaaaaaaaaaaaaaaaa", "Mug", "5.00")
	mock.ExpectQuery(sqlLike("FROM products WHERE id IN (?, ?)")).
		WithArgs("aaaaaaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbbbbbb").
		WillReturnRows(rows)

	products, err := repo.GetProductsByIDs(context.Background(), []string{"aaaaaaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbbbbbb"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].Name)

	none, err := repo.GetProductsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductRepository_GetActiveProducts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	rows := sqlmock.NewRows(columns(productColumns))
	productRow(rows, "aaaaaaaaaaaaaaaaaaaaaaaa", "Mug", "5.00")
	productRow(rows, "bbbbbbbbbbbbbbbbbbbbbbbb", "Pan", "40.00")
	mock.ExpectQuery(sqlLike("WHERE is_active = TRUE ORDER BY created_at DESC")).WillReturnRows(rows)

	products, err := repo.GetActiveProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Pan", products[1].Name)
}

func TestProductRepository_CreateProduct(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	product := &entity.Product{
		ID:        "665f1c2ab8e4a1d2c3b4a5f6",
		Name:      "Kettle",
		Price:     decimal.RequireFromString("30.00"),
		Image:     "kettle.png",
		Currency:  "USD",
		Category:  "general",
		Stock:     100,
		IsActive:  true,
		Seller:    entity.Seller{Name: "Acme"},
		CreatedAt: timestamp(),
		UpdatedAt: timestamp(),
	}
	mock.ExpectExec(sqlLike("INSERT INTO products")).
		WithArgs(product.ID, "Kettle", sqlmock.AnyArg(), "kettle.png", "", "USD", "general", 100, true,
			sqlmock.AnyArg(), 0.0, 0, []byte("[]"), timestamp(), timestamp()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.CreateProduct(context.Background(), product)
	require.NoError(t, err)
	assert.Equal(t, product.ID, created.ID)
}

func TestProductRepository_UpdateAndDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(sqlLike("UPDATE products SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := repo.UpdateProduct(context.Background(), &entity.Product{ID: "665f1c2ab8e4a1d2c3b4a5f6"})
	require.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(sqlLike("DELETE FROM products WHERE id = ?")).
		WithArgs("665f1c2ab8e4a1d2c3b4a5f6").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.DeleteProduct(context.Background(), "665f1c2ab8e4a1d2c3b4a5f6")
	require.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(sqlLike("DELETE FROM products WHERE id = ?")).
		WithArgs("665f1c2ab8e4a1d2c3b4a5f6").
		WillReturnError(errors.New("lost connection"))
	err = repo.DeleteProduct(context.Background(), "665f1c2ab8e4a1d2c3b4a5f6")
	require.EqualError(t, err, "lost connection")
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/entity"
)

const productColumns = `id, name, price, image, description, currency, category, stock, is_active, seller, rating_average, rating_count, tags, created_at, updated_at`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// GetProductsByIDs resolves every id in one query. Unknown ids are simply
// absent from the result.
func (r *ProductRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryProducts(ctx, query, args...)
}

func (r *ProductRepository) GetActiveProducts(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	seller, tags, err := marshalProductJSON(product)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO products (` + productColumns + `) VALUES (` + placeholders(15) + `)`
	_, err = r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Price, product.Image, product.Description, product.Currency,
		product.Category, product.Stock, product.IsActive, seller, product.Ratings.Average,
		product.Ratings.Count, tags, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("product %s: %w", product.ID, ErrDuplicateKey)
		}
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	seller, tags, err := marshalProductJSON(product)
	if err != nil {
		return nil, err
	}

	query := `UPDATE products SET name = ?, price = ?, image = ?, description = ?, currency = ?, category = ?, stock = ?,
		is_active = ?, seller = ?, rating_average = ?, rating_count = ?, tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Price, product.Image, product.Description, product.Currency, product.Category,
		product.Stock, product.IsActive, seller, product.Ratings.Average, product.Ratings.Count, tags,
		product.UpdatedAt, product.ID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return product, nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	var seller, tags []byte
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.Currency, &p.Category, &p.Stock,
		&p.IsActive, &seller, &p.Ratings.Average, &p.Ratings.Count, &tags, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(seller, &p.Seller); err != nil {
		return nil, fmt.Errorf("decoding seller of product %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of product %s: %w", p.ID, err)
	}
	return &p, nil
}

func marshalProductJSON(product *entity.Product) (seller, tags []byte, err error) {
	seller, err = json.Marshal(product.Seller)
	if err != nil {
		return nil, nil, err
	}
	t := product.Tags
	if t == nil {
		t = []string{}
	}
	tags, err = json.Marshal(t)
	if err != nil {
		return nil, nil, err
	}
	return seller, tags, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/entity"
)

const orderColumns = `id, order_id, first_name, last_name, email, phone, address, city, state, zip_code, country,
	subtotal, tax, shipping, total, status, payment_status, order_date, estimated_delivery, created_at, updated_at`

const orderItemColumns = `order_id, position, product_id, name, price, quantity, image, currency, description, category, seller`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// CreateOrder stores the order with its line items and takes the ordered
// quantities off product stock, all in one transaction. The decrement is
// unconditional: stock may go negative.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	// Start a transaction
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Insert order
	c := order.CustomerInfo
	s := order.OrderSummary
	orderQuery := `INSERT INTO orders (` + orderColumns + `) VALUES (` + placeholders(21) + `)`
	_, err = tx.ExecContext(ctx, orderQuery,
		order.ID, order.OrderID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode, c.Country,
		s.Subtotal, s.Tax, s.Shipping, s.Total, order.Status, order.PaymentStatus,
		order.OrderDate, order.EstimatedDelivery, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		tx.Rollback()
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("order %s: %w", order.OrderID, ErrDuplicateKey)
		}
		return nil, err
	}

	// Insert line items with batch
	itemQuery := `INSERT INTO order_items (` + orderItemColumns + `) VALUES `
	var values []any
	for i, item := range order.Items {
		seller, err := json.Marshal(item.ProductDetails.Seller)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		itemQuery += "(" + placeholders(11) + "),"
		values = append(values, order.ID, i, item.ProductID, item.Name, item.Price, item.Quantity, item.Image,
			item.Currency, item.ProductDetails.Description, item.ProductDetails.Category, seller)
	}

	// Remove the trailing comma
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Adjust stock, one statement per line
	stockQuery := `UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ?`
	for _, item := range order.Items {
		res, err := tx.ExecContext(ctx, stockQuery, item.Quantity, order.CreatedAt, item.ProductID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			tx.Rollback()
			return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrNotFound)
		}
	}

	// Commit the transaction
	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) GetOrderByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := r.loadItems(ctx, []*entity.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrdersByCustomerEmail returns the customer's orders, newest first.
func (r *OrderRepository) GetOrdersByCustomerEmail(ctx context.Context, email string) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE email = ? ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, email)
}

// GetOrders returns every order, newest first.
func (r *OrderRepository) GetOrders(ctx context.Context) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems fills in the line items of all given orders with a single query.
func (r *OrderRepository) loadItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*entity.Order, len(orders))
	args := make([]any, len(orders))
	for i, order := range orders {
		byID[order.ID] = order
		order.Items = []entity.OrderItem{}
		args[i] = order.ID
	}

	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id IN (` + placeholders(len(orders)) + `) ORDER BY order_id, position`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var position int
		var seller []byte
		item := entity.OrderItem{}
		err := rows.Scan(&orderID, &position, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Image,
			&item.Currency, &item.ProductDetails.Description, &item.ProductDetails.Category, &seller)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(seller, &item.ProductDetails.Seller); err != nil {
			return fmt.Errorf("decoding seller of order %s: %w", orderID, err)
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var status, paymentStatus string
	c := &o.CustomerInfo
	s := &o.OrderSummary
	err := row.Scan(&o.ID, &o.OrderID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City, &c.State,
		&c.ZipCode, &c.Country, &s.Subtotal, &s.Tax, &s.Shipping, &s.Total, &status, &paymentStatus,
		&o.OrderDate, &o.EstimatedDelivery, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	o.PaymentStatus = entity.PaymentStatus(paymentStatus)
	o.OrderDate = o.OrderDate.UTC()
	o.EstimatedDelivery = o.EstimatedDelivery.UTC()
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

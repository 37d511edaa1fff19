package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

const productsTable = `
	CREATE TABLE IF NOT EXISTS products (
		id CHAR(24) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		image VARCHAR(1024) NOT NULL,
		description TEXT NOT NULL,
		currency VARCHAR(8) NOT NULL DEFAULT 'USD',
		category VARCHAR(128) NOT NULL DEFAULT 'general',
		stock INT NOT NULL DEFAULT 100,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		seller JSON NOT NULL,
		rating_average DOUBLE NOT NULL DEFAULT 0,
		rating_count INT NOT NULL DEFAULT 0,
		tags JSON NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_products_active (is_active)
	);
`

const ordersTable = `
	CREATE TABLE IF NOT EXISTS orders (
		id CHAR(36) PRIMARY KEY,
		order_id VARCHAR(40) NOT NULL UNIQUE,
		first_name VARCHAR(128) NOT NULL,
		last_name VARCHAR(128) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		address VARCHAR(512) NOT NULL,
		city VARCHAR(128) NOT NULL,
		state VARCHAR(128) NOT NULL,
		zip_code VARCHAR(32) NOT NULL,
		country VARCHAR(64) NOT NULL DEFAULT 'US',
		subtotal DECIMAL(12,2) NOT NULL,
		tax DECIMAL(12,2) NOT NULL,
		shipping DECIMAL(12,2) NOT NULL,
		total DECIMAL(12,2) NOT NULL,
		status VARCHAR(20) NOT NULL,
		payment_status VARCHAR(20) NOT NULL,
		order_date DATETIME(3) NOT NULL,
		estimated_delivery DATETIME(3) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_orders_email (email),
		INDEX idx_orders_created_at (created_at)
	);
`

// Line items deliberately carry no foreign key to products: they are
// snapshots and must survive product deletion.
const orderItemsTable = `
	CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id CHAR(36) NOT NULL,
		position INT NOT NULL,
		product_id CHAR(24) NOT NULL,
		name VARCHAR(255) NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		quantity INT NOT NULL,
		image VARCHAR(1024) NOT NULL,
		currency VARCHAR(8) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(128) NOT NULL,
		seller JSON NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);
`

// AutoMigrateProducts creates the products table if it does not exist.
func AutoMigrateProducts(retries int, db *sql.DB) error {
	return migrate(retries, db, productsTable)
}

// AutoMigrateOrders creates the orders table if it does not exist.
func AutoMigrateOrders(retries int, db *sql.DB) error {
	return migrate(retries, db, ordersTable)
}

// AutoMigrateOrderItems creates the order_items table if it does not exist.
func AutoMigrateOrderItems(retries int, db *sql.DB) error {
	return migrate(retries, db, orderItemsTable)
}

// AutoMigrate runs every migration in dependency order.
func AutoMigrate(retries int, db *sql.DB) error {
	for _, m := range []func(int, *sql.DB) error{AutoMigrateProducts, AutoMigrateOrders, AutoMigrateOrderItems} {
		if err := m(retries, db); err != nil {
			return err
		}
	}
	return nil
}

func migrate(retries int, db *sql.DB, query string) error {
	_, err := db.Exec(query)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	if err != nil {
		return fmt.Errorf("migration failed after %d retries: %w", retries, err)
	}
	return nil
}

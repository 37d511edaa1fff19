package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

type ProductDetails struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Seller      Seller `json:"seller"`
}

// OrderItem is a copy of the product as it was when the order was placed.
type OrderItem struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Image          string          `json:"image"`
	Currency       string          `json:"currency"`
	ProductDetails ProductDetails  `json:"productDetails"`
}

type OrderSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type Order struct {
	ID                string        `json:"_id"`
	OrderID           string        `json:"orderId"`
	CustomerInfo      CustomerInfo  `json:"customerInfo"`
	Items             []OrderItem   `json:"items"`
	OrderSummary      OrderSummary  `json:"orderSummary"`
	Status            OrderStatus   `json:"status"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	OrderDate         time.Time     `json:"orderDate"`
	EstimatedDelivery time.Time     `json:"estimatedDelivery"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// OrderRequest is the checkout payload: who is buying and what.
type OrderRequest struct {
	CustomerInfo *CustomerInfo      `json:"customerInfo"`
	Items        []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

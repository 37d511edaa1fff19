package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const deliveryWindow = 7 * 24 * time.Hour

// OrderService is a service that provides order-related operations
type OrderService struct {
	orderRepo   OrderStore
	productRepo ProductStore
	cache       ProductCache
	idempotency IdempotencyStore
	publisher   OrderPublisher
	now         func() time.Time
}

// NewOrderService creates a new instance of OrderService. cache, idempotency
// and publisher are optional and may be nil.
func NewOrderService(orderRepo OrderStore, productRepo ProductStore, cache ProductCache, idempotency IdempotencyStore, publisher OrderPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       cache,
		idempotency: idempotency,
		publisher:   publisher,
		now:         time.Now,
	}
}

// CreateOrder prices the requested items against the current catalog and
// stores the order together with the stock adjustment. idempotentKey may
// be empty.
func (s *OrderService) CreateOrder(ctx context.Context, req *entity.OrderRequest, idempotentKey string) (*entity.Order, error) {
	if req == nil || req.CustomerInfo == nil || len(req.Items) == 0 {
		return nil, validationError("Customer information and items are required")
	}
	customer, err := normalizeCustomer(req.CustomerInfo)
	if err != nil {
		return nil, err
	}

	if idempotentKey != "" && s.idempotency != nil {
		claimed, err := s.idempotency.Claim(ctx, idempotentKey)
		if err != nil {
			logger.Error().Err(err).Msgf("Error claiming idempotency key %s", idempotentKey)
			return nil, err
		}
		if !claimed {
			logger.Warn().Msgf("Idempotency key %s already used", idempotentKey)
			return nil, &Error{Kind: ErrDuplicateRequest, Message: "Idempotency key already used"}
		}
	}

	order, err := s.placeOrder(ctx, customer, req.Items)
	if err != nil {
		if idempotentKey != "" && s.idempotency != nil {
			if rerr := s.idempotency.Release(ctx, idempotentKey); rerr != nil {
				logger.Error().Err(rerr).Msgf("Error releasing idempotency key %s", idempotentKey)
			}
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) placeOrder(ctx context.Context, customer entity.CustomerInfo, items []entity.OrderItemRequest) (*entity.Order, error) {
	productIDs := distinctProductIDs(items)
	products, err := s.productRepo.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		logger.Error().Err(err).Msg("Error resolving ordered products")
		return nil, err
	}
	if len(products) != len(productIDs) {
		logger.Warn().Msgf("Resolved %d of %d ordered products", len(products), len(productIDs))
		return nil, validationError("Some products are no longer available")
	}

	byID := make(map[string]*entity.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	subtotal := decimal.Zero
	orderItems := make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[canonicalProductID(item.ProductID)]
		if !ok {
			return nil, validationError("Some products are no longer available")
		}
		subtotal = subtotal.Add(LineTotal(product.Price, item.Quantity))
		orderItems = append(orderItems, snapshotItem(product, item.Quantity))
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	order := &entity.Order{
		ID:                uuid.NewString(),
		OrderID:           newOrderID(now),
		CustomerInfo:      customer,
		Items:             orderItems,
		OrderSummary:      Summarize(subtotal),
		Status:            entity.OrderStatusConfirmed,
		PaymentStatus:     entity.PaymentStatusPaid,
		OrderDate:         now,
		EstimatedDelivery: now.Add(deliveryWindow),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	createdOrder, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Err(err).Msg("Ordered product disappeared before commit")
			return nil, validationError("Some products are no longer available")
		}
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}
	logger.Info().Msgf("Order %s confirmed, total %s", createdOrder.OrderID, createdOrder.OrderSummary.Total)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, productIDs...); err != nil {
			logger.Warn().Err(err).Msgf("Error invalidating cached products for order %s", createdOrder.OrderID)
		}
	}

	// The order is committed at this point; a lost event must not fail it.
	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, createdOrder); err != nil {
			logger.Error().Err(err).Msgf("Error publishing order %s", createdOrder.OrderID)
		}
	}

	return createdOrder, nil
}

// GetOrder returns the order with the given order identifier.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrderByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Order not found")
		}
		logger.Error().Err(err).Msgf("Error getting order %s", orderID)
		return nil, err
	}
	return order, nil
}

// GetOrders returns all orders, newest first.
func (s *OrderService) GetOrders(ctx context.Context) ([]*entity.Order, error) {
	orders, err := s.orderRepo.GetOrders(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting orders")
		return nil, err
	}
	return nonNilOrders(orders), nil
}

// GetCustomerOrders returns the orders placed with the given email, newest first.
func (s *OrderService) GetCustomerOrders(ctx context.Context, email string) ([]*entity.Order, error) {
	orders, err := s.orderRepo.GetOrdersByCustomerEmail(ctx, email)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting orders of customer %s", email)
		return nil, err
	}
	return nonNilOrders(orders), nil
}

func snapshotItem(product *entity.Product, quantity int) entity.OrderItem {
	currency := product.Currency
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	return entity.OrderItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Image:     product.Image,
		Currency:  currency,
		ProductDetails: entity.ProductDetails{
			Description: product.Description,
			Category:    product.Category,
			Seller:      product.Seller,
		},
	}
}

func distinctProductIDs(items []entity.OrderItemRequest) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		id := canonicalProductID(item.ProductID)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func normalizeCustomer(in *entity.CustomerInfo) (entity.CustomerInfo, error) {
	c := entity.CustomerInfo{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		ZipCode:   strings.TrimSpace(in.ZipCode),
		Country:   strings.TrimSpace(in.Country),
	}
	if c.Country == "" {
		c.Country = entity.DefaultCountry
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", c.FirstName}, {"lastName", c.LastName}, {"email", c.Email}, {"phone", c.Phone},
		{"address", c.Address}, {"city", c.City}, {"state", c.State}, {"zipCode", c.ZipCode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return entity.CustomerInfo{}, validationError("Customer information is incomplete: missing " + strings.Join(missing, ", "))
	}
	return c, nil
}

func nonNilOrders(orders []*entity.Order) []*entity.Order {
	if orders == nil {
		return []*entity.Order{}
	}
	return orders
}

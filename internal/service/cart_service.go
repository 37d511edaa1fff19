package service

import (
	"context"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/entity"
)

const maxCartIDLen = 64

// CartService keeps server-side carts and turns them into orders.
type CartService struct {
	carts    *cart.Store
	products *ProductService
	orders   *OrderService
}

func NewCartService(carts *cart.Store, products *ProductService, orders *OrderService) *CartService {
	return &CartService{carts: carts, products: products, orders: orders}
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (cart.State, error) {
	if err := validateCartID(cartID); err != nil {
		return cart.State{}, err
	}
	state, err := s.carts.Get(ctx, cartID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error loading cart %s", cartID)
		return cart.State{}, err
	}
	return state, nil
}

// AddItem adds one unit of the product to the cart at its current price.
func (s *CartService) AddItem(ctx context.Context, cartID, productID string) (cart.State, error) {
	if err := validateCartID(cartID); err != nil {
		return cart.State{}, err
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return cart.State{}, err
	}
	if !product.IsActive {
		return cart.State{}, validationError("Product is not available")
	}
	return s.dispatch(ctx, cartID, cart.AddItem{Item: cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Currency:  product.Currency,
	}})
}

func (s *CartService) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (cart.State, error) {
	if err := validateCartID(cartID); err != nil {
		return cart.State{}, err
	}
	return s.dispatch(ctx, cartID, cart.UpdateQuantity{ProductID: canonicalProductID(productID), Quantity: quantity})
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (cart.State, error) {
	if err := validateCartID(cartID); err != nil {
		return cart.State{}, err
	}
	return s.dispatch(ctx, cartID, cart.RemoveItem{ProductID: canonicalProductID(productID)})
}

func (s *CartService) Clear(ctx context.Context, cartID string) (cart.State, error) {
	if err := validateCartID(cartID); err != nil {
		return cart.State{}, err
	}
	return s.dispatch(ctx, cartID, cart.Clear{})
}

// Checkout places an order for the cart's lines and empties the cart. The
// clear is a separate load and save: an item added while the order is being
// placed is dropped with the rest of the cart.
func (s *CartService) Checkout(ctx context.Context, cartID string, customer *entity.CustomerInfo, idempotentKey string) (*entity.Order, error) {
	state, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(state.Items) == 0 {
		return nil, validationError("Cart is empty")
	}

	req := &entity.OrderRequest{CustomerInfo: customer}
	for _, item := range state.Items {
		req.Items = append(req.Items, entity.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.orders.CreateOrder(ctx, req, idempotentKey)
	if err != nil {
		return nil, err
	}

	if _, err := s.carts.Dispatch(ctx, cartID, cart.Clear{}); err != nil {
		logger.Error().Err(err).Msgf("Error clearing cart %s after order %s", cartID, order.OrderID)
	}
	return order, nil
}

func (s *CartService) dispatch(ctx context.Context, cartID string, action cart.Action) (cart.State, error) {
	state, err := s.carts.Dispatch(ctx, cartID, action)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating cart %s", cartID)
		return cart.State{}, err
	}
	return state, nil
}

func validateCartID(cartID string) error {
	if strings.TrimSpace(cartID) == "" || len(cartID) > maxCartIDLen {
		return invalidIDError("Invalid Cart Id")
	}
	return nil
}

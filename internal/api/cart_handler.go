package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/entity"
	"storefront/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
	placed      prometheus.Counter
}

func NewCartHandler(cartService *service.CartService, placed prometheus.Counter) *CartHandler {
	return &CartHandler{cartService: cartService, placed: placed}
}

type cartView struct {
	Items []cart.Item     `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func viewOf(state cart.State) cartView {
	items := state.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{Items: items, Total: state.Total(), Count: state.Count()}
}

// GetCart --> GET /api/carts/:cartId
func (h *CartHandler) GetCart(c echo.Context) error {
	state, err := h.cartService.GetCart(c.Request().Context(), c.Param("cartId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "", viewOf(state))
}

// AddItem --> POST /api/carts/:cartId/items
func (h *CartHandler) AddItem(c echo.Context) error {
	body := struct {
		ProductID string `json:"productId"`
	}{}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	state, err := h.cartService.AddItem(c.Request().Context(), c.Param("cartId"), body.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "Item added to cart", viewOf(state))
}

// UpdateItem --> PUT /api/carts/:cartId/items/:productId
func (h *CartHandler) UpdateItem(c echo.Context) error {
	body := struct {
		Quantity *int `json:"quantity"`
	}{}
	if err := c.Bind(&body); err != nil || body.Quantity == nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	state, err := h.cartService.UpdateQuantity(c.Request().Context(), c.Param("cartId"), c.Param("productId"), *body.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "Cart updated", viewOf(state))
}

// RemoveItem --> DELETE /api/carts/:cartId/items/:productId
func (h *CartHandler) RemoveItem(c echo.Context) error {
	state, err := h.cartService.RemoveItem(c.Request().Context(), c.Param("cartId"), c.Param("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "Item removed from cart", viewOf(state))
}

// ClearCart --> DELETE /api/carts/:cartId
func (h *CartHandler) ClearCart(c echo.Context) error {
	state, err := h.cartService.Clear(c.Request().Context(), c.Param("cartId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "Cart cleared", viewOf(state))
}

// Checkout places an order for the cart --> POST /api/carts/:cartId/checkout
func (h *CartHandler) Checkout(c echo.Context) error {
	body := struct {
		CustomerInfo *entity.CustomerInfo `json:"customerInfo"`
	}{}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	order, err := h.cartService.Checkout(c.Request().Context(), c.Param("cartId"), body.CustomerInfo, idempotencyKey(c))
	if err != nil {
		return writeError(c, err)
	}
	if h.placed != nil {
		h.placed.Inc()
	}
	return ok(c, http.StatusCreated, "Order confirmed successfully", order)
}

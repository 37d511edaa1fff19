package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"storefront/internal/entity"
	"storefront/internal/service"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerIdempotentKey  = "Idempotent-Key" // older clients
)

type OrderHandler struct {
	orderService *service.OrderService
	placed       prometheus.Counter
}

// NewOrderHandler creates a new instance of OrderHandler. placed may be nil.
func NewOrderHandler(orderService *service.OrderService, placed prometheus.Counter) *OrderHandler {
	return &OrderHandler{orderService: orderService, placed: placed}
}

// CreateOrder places an order --> POST /api/orders
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	req := entity.OrderRequest{}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), &req, idempotencyKey(c))
	if err != nil {
		return writeError(c, err)
	}
	if h.placed != nil {
		h.placed.Inc()
	}
	return ok(c, http.StatusCreated, "Order confirmed successfully", order)
}

// GetOrders lists every order --> GET /api/orders
func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.orderService.GetOrders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return list(c, orders)
}

// GetOrder gets one order by its order id --> GET /api/orders/:orderId
func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, "", order)
}

// GetCustomerOrders lists a customer's orders --> GET /api/orders/customer/:email
func (h *OrderHandler) GetCustomerOrders(c echo.Context) error {
	// echo hands out the raw path segment; clients encode the "@" and "+".
	email, err := url.PathUnescape(c.Param("email"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	orders, err := h.orderService.GetCustomerOrders(c.Request().Context(), email)
	if err != nil {
		return writeError(c, err)
	}
	return list(c, orders)
}

func idempotencyKey(c echo.Context) string {
	key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
	if key == "" {
		key = strings.TrimSpace(c.Request().Header.Get(headerIdempotentKey))
	}
	return key
}
